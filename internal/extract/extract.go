// Package extract turns C++ source files into a documentation tree: it
// parses every file, then drives the registry over the declarations of each
// file in input order.
package extract

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/xonecas/clong/internal/doctree"
	"github.com/xonecas/clong/internal/treesitter"
)

// File is an in-memory source file.
type File struct {
	Path string
	Src  []byte
}

// Options configures a run.
type Options struct {
	// Workers bounds concurrent parsing; 0 means runtime.NumCPU().
	Workers int
}

// Result is the finished documentation tree and the program it describes.
// Both are read-only.
type Result struct {
	Program  *treesitter.Program
	Registry *doctree.Registry
}

// Run parses the files at paths and builds their documentation tree.
func Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	return run(ctx, len(paths), opts, func(ctx context.Context, i int) (*treesitter.Unit, error) {
		u, err := treesitter.ParseFile(ctx, paths[i])
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", paths[i], err)
		}
		return u, nil
	})
}

// RunFiles builds the documentation tree of in-memory files.
func RunFiles(ctx context.Context, files []File, opts Options) (*Result, error) {
	return run(ctx, len(files), opts, func(ctx context.Context, i int) (*treesitter.Unit, error) {
		return treesitter.ParseSource(ctx, files[i].Path, files[i].Src)
	})
}

func run(ctx context.Context, n int, opts Options, parse func(context.Context, int) (*treesitter.Unit, error)) (*Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	units := make([]*treesitter.Unit, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u, err := parse(gctx, i)
			if err != nil {
				return err
			}
			units[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	prog := treesitter.NewProgram(units...)
	reg := doctree.New(prog)
	for i := range units {
		Traverse(prog, i, reg)
	}
	log.Debug().Int("files", n).Int("nodes", reg.Len()).Int("functions", len(reg.Functions())).Msg("documentation tree built")
	return &Result{Program: prog, Registry: reg}, nil
}

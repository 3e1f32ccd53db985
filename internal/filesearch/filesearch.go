// Package filesearch expands command-line paths into the C and C++ sources to
// document, honouring .gitignore files and configured exclusions.
package filesearch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Options configures discovery.
type Options struct {
	Extensions       []string // accepted file extensions, with leading dot
	Exclude          []string // gitignore-syntax patterns relative to each root
	RespectGitignore bool     // also apply <root>/.gitignore
	MaxFileBytes     int64    // skip larger files found by walking (0 = unlimited)
}

// Discover returns the source files named by roots. Files are kept as given
// regardless of extension or filters; directories are walked in lexical order
// and contribute files with an accepted extension that are not ignored. The
// result keeps the order of roots and contains each path once.
func Discover(ctx context.Context, roots []string, opts Options) ([]string, error) {
	exts := make(map[string]bool, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts[strings.ToLower(e)] = true
	}

	var out []string
	seen := make(map[string]bool)
	add := func(path string) {
		key := filepath.Clean(path)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, path)
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		matcher := NewMatcher(opts.Exclude...)
		if opts.RespectGitignore {
			if err := matcher.LoadGitignore(filepath.Join(root, ".gitignore")); err != nil {
				log.Warn().Err(err).Str("root", root).Msg("ignoring unreadable .gitignore")
			}
		}

		files, err := walk(ctx, root, matcher, exts, opts.MaxFileBytes)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}

func walk(ctx context.Context, root string, m *Matcher, exts map[string]bool, maxBytes int64) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			log.Warn().Err(walkErr).Str("path", path).Msg("skipping unreadable path")
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if m.Matches(rel, d.IsDir()) {
			log.Debug().Str("path", rel).Msg("ignored")
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !exts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if maxBytes > 0 {
			info, err := d.Info()
			if err != nil || info.Size() > maxBytes {
				log.Debug().Str("path", rel).Msg("skipping oversized file")
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Package cli wires the clong commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/clong/internal/config"
	"github.com/xonecas/clong/internal/constants"
	"github.com/xonecas/clong/internal/extract"
	"github.com/xonecas/clong/internal/filesearch"
	"github.com/xonecas/clong/internal/render"
	"github.com/xonecas/clong/internal/treesitter"
)

// errDiffer signals a failed check; the diff has already been printed.
var errDiffer = errors.New("documentation tree differs from expected")

type app struct {
	cfgPath  string
	logLevel string
	cfg      *config.Config
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errDiffer) {
			fmt.Fprintln(os.Stderr, "clong:", err)
		}
		return 1
	}
	return 0
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	var (
		format string
		color  string
		theme  string
		width  int
	)

	root := &cobra.Command{
		Use:   "clong [paths...]",
		Short: "Build a documentation tree from C and C++ sources",
		Long: `clong parses C and C++ sources and keeps the declarations that carry a
documentation comment, together with the undocumented scopes needed to reach
them. Directories are searched for sources; with no paths the current
directory is used.

The tree is printed one declaration per line:

  - <signature> -- <comment>`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.build(cmd.Context(), args)
			if err != nil {
				return err
			}
			root, prog := res.Registry.Root(), res.Program
			out := cmd.OutOrStdout()

			switch format {
			case "json":
				return render.JSON(out, root, prog)
			case "text":
			default:
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}

			if cmd.Flags().Changed("color") {
				a.cfg.Render.Color = color
			}
			if cmd.Flags().Changed("theme") {
				a.cfg.Render.Theme = theme
			}
			if cmd.Flags().Changed("width") {
				a.cfg.Render.Width = width
			}
			if !useColor(a.cfg.Render.Color, out) {
				return render.Tree(out, root, prog)
			}
			return render.Styled(out, root, prog, render.Style{
				Theme: a.cfg.Render.ThemeOrDefault(),
				Width: a.cfg.Render.Width,
			})
		},
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default: ./"+constants.ConfigFile+" if present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.Flags().StringVar(&format, "format", "text", "output format (text, json)")
	root.Flags().StringVar(&color, "color", constants.ColorAuto, "colour output (auto, always, never)")
	root.Flags().StringVar(&theme, "theme", constants.SyntaxTheme, "Chroma theme for coloured output")
	root.Flags().IntVar(&width, "width", 0, "truncate coloured lines to this width (0 = no limit)")

	root.AddCommand(
		newSiteCmd(a),
		newDBCmd(a),
		newQueryCmd(),
		newCheckCmd(a),
		newOutlineCmd(a),
		newVersionCmd(),
	)
	return root
}

// init loads the configuration and sets up the global logger.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := setupLogging(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func setupLogging(w io.Writer, level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	return nil
}

// build discovers the sources under paths and runs the extraction pipeline.
func (a *app) build(ctx context.Context, paths []string) (*extract.Result, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	src := a.cfg.Source
	files, err := filesearch.Discover(ctx, paths, filesearch.Options{
		Extensions:       src.Extensions,
		Exclude:          src.Exclude,
		RespectGitignore: src.RespectGitignore,
		MaxFileBytes:     src.MaxFileBytes,
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no source files found in %v", paths)
	}
	for _, f := range files {
		if !treesitter.Supported(f) {
			log.Warn().Str("path", f).Msg("unrecognised extension, parsing as C++")
		}
	}
	log.Debug().Int("files", len(files)).Msg("sources discovered")
	return extract.Run(ctx, files, extract.Options{Workers: src.Workers})
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case constants.ColorAlways:
		return true
	case constants.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

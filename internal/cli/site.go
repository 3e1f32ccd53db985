package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/clong/internal/site"
)

func newSiteCmd(a *app) *cobra.Command {
	var (
		outDir string
		opts   site.Options
	)
	cmd := &cobra.Command{
		Use:   "site [paths...]",
		Short: "Write a Jekyll just-the-docs site with one page per function",
		Long: `Write a Jekyll site using the just-the-docs theme. Every documented
function gets a page under refs/function/. The output directory is replaced on
each run; a non-empty directory is only cleared if clong created it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.build(cmd.Context(), args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("output") {
				outDir = a.cfg.OutputDir
			}
			fns := res.Registry.Functions()
			if err := site.Write(outDir, fns, res.Program, opts); err != nil {
				return err
			}
			log.Info().Str("dir", outDir).Int("pages", len(fns)).Msg("site written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "O", "", "output directory (default from config, \"_doc\")")
	cmd.Flags().StringVar(&opts.Title, "title", "", "site title")
	cmd.Flags().StringVar(&opts.Description, "description", "", "site description")
	return cmd
}

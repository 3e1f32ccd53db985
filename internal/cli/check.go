package cli

import (
	"fmt"
	"os"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/spf13/cobra"

	"github.com/xonecas/clong/internal/render"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <expected> [paths...]",
		Short: "Compare the documentation tree with a saved dump",
		Long: `Compare the plain dump of the documentation tree with the contents of
<expected>. Differences are printed as a unified diff and the command exits
with status 1.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			want, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read expected dump: %w", err)
			}
			res, err := a.build(cmd.Context(), args[1:])
			if err != nil {
				return err
			}
			got := render.TreeString(res.Registry.Root(), res.Program)

			edits := myers.ComputeEdits(span.URIFromPath(args[0]), string(want), got)
			if len(edits) == 0 {
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), gotextdiff.ToUnified(args[0], "current", string(want), edits))
			return errDiffer
		},
	}
}

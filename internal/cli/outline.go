package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xonecas/clong/internal/treesitter"
)

func newOutlineCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "outline [paths...]",
		Short: "List every parsed declaration, documented or not",
		Long: `List every declaration the parser found, per file, indented by nesting.
Documented declarations are marked with *. Useful to see why a declaration
is missing from the tree.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.build(cmd.Context(), args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), treesitter.FormatOutline(res.Program.Units()))
			return err
		},
	}
}

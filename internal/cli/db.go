package cli

import (
	"github.com/spf13/cobra"

	"github.com/xonecas/clong/internal/store"
)

func newDBCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "db [paths...]",
		Short: "Export the documentation tree to a SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.build(cmd.Context(), args)
			if err != nil {
				return err
			}
			db, err := store.Open(out)
			if err != nil {
				return err
			}
			defer db.Close()
			return db.Save(cmd.Context(), res.Registry.Root(), res.Registry.Functions(), res.Program)
		},
	}
	cmd.Flags().StringVar(&out, "out", "docs.db", "database file")
	return cmd
}

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xonecas/clong/internal/render"
	"github.com/xonecas/clong/internal/store"
)

func newQueryCmd() *cobra.Command {
	var (
		dbPath    string
		functions bool
		children  int64
	)
	cmd := &cobra.Command{
		Use:   "query [keywords...]",
		Short: "Query a database written by the db command",
		Long: `Query a documentation database without parsing sources again.

With keywords, list the nodes whose name or comment contains all of them.
--functions lists the functions index, --children lists the nodes under a
node id (0 for the top level). With neither, the whole tree is printed in the
same layout as the default dump.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(dbPath); err != nil {
				return fmt.Errorf("open %s: %w (run clong db first)", dbPath, err)
			}
			db, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, out := cmd.Context(), cmd.OutOrStdout()
			var rows []store.Row
			switch {
			case functions:
				rows, err = db.Functions(ctx)
			case cmd.Flags().Changed("children"):
				rows, err = db.Children(ctx, children)
			case len(args) > 0:
				rows, err = db.Search(ctx, strings.Join(args, " "))
			default:
				rows, err = db.Nodes(ctx)
				if err != nil {
					return err
				}
				return writeTreeRows(out, rows)
			}
			if err != nil {
				return err
			}
			return writeRows(out, rows)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "docs.db", "database file")
	cmd.Flags().BoolVar(&functions, "functions", false, "list the functions index")
	cmd.Flags().Int64Var(&children, "children", 0, "list the children of this node id")
	return cmd
}

// writeRows prints one "<id>\t<file>:<line>\t<signature> -- <comment>" line
// per row.
func writeRows(w io.Writer, rows []store.Row) error {
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%d\t%s:%d\t%s -- %s\n",
			r.ID, r.File, r.Line, r.Signature, render.EscapeComment(r.Comment)); err != nil {
			return err
		}
	}
	return nil
}

func writeTreeRows(w io.Writer, rows []store.Row) error {
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s- %s -- %s\n",
			strings.Repeat("  ", r.Depth), r.Signature, render.EscapeComment(r.Comment)); err != nil {
			return err
		}
	}
	return nil
}

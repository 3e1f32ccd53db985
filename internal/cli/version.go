package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xonecas/clong/internal/constants"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// The version needs no config or logger.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "clong %s\n", constants.Version)
			return err
		},
	}
}

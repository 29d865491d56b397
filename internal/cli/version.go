// ABOUTME: Version subcommand
// ABOUTME: Prints the build banner
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Resonate-Protocol/wavescrub/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

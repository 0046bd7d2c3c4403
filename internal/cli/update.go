package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch every module to match the manifest",
	Long:  "Synchronize the workspace: fetch every module checkout to the revision the manifest pins it to.",
	Args:  cobra.NoArgs,
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	if err := deps.EnsureRepo(); err != nil {
		return err
	}

	if err := deps.West.Sync(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Workspace is up to date\n", symSuccess())
	return nil
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zmk-tools/zmk-cli/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "zmk",
	Short: "Manage ZMK config repositories",
	Long: `zmk manages a ZMK config repository: the Zephyr modules in its west
manifest, the hardware those modules provide, and the build matrix the
firmware pipeline consumes.

Commands look for a config repo in the current directory and its parents,
falling back to the repository configured as user.home.`,
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute initializes dependencies and runs the root command.
func Execute() error {
	if err := InitDependencies(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", symError(), err)
		return err
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", symError(), err)
		return err
	}
	return nil
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("zmk %s\n", version.GetVersion()))
}

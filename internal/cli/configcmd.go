package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zmk-tools/zmk-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Read and write user settings",
	Long: `Read and write user settings, stored per user in the platform config
directory. With no arguments, lists every set key. With a key, prints its
value. With a key and a value, stores the value.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().Bool("unset", false, "Clear the given key")
	configCmd.Flags().Bool("path", false, "Print the settings file location")
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	settings := deps.Settings

	if getBoolFlag(cmd, "path") {
		fmt.Fprintln(out, settings.Path())
		return nil
	}

	switch len(args) {
	case 0:
		items := settings.Items()
		if len(items) == 0 {
			fmt.Fprintln(out, "No settings set. Available keys:")
			for _, key := range config.Keys() {
				fmt.Fprintf(out, "  %s\n", key)
			}
			return nil
		}
		for _, item := range items {
			fmt.Fprintf(out, "%s = %s\n", item[0], item[1])
		}
		return nil

	case 1:
		if getBoolFlag(cmd, "unset") {
			if err := settings.Set(args[0], ""); err != nil {
				return err
			}
			return settings.Save()
		}
		value, err := settings.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, value)
		return nil

	default:
		if err := settings.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := settings.Save(); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s = %s\n", symSuccess(), args[0], args[1])
		return nil
	}
}

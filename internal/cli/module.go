package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zmk-tools/zmk-cli/internal/manifest"
	"github.com/zmk-tools/zmk-cli/internal/revision"
)

var moduleCmd = &cobra.Command{
	Use:   "module",
	Short: "Manage the Zephyr modules in the west manifest",
}

var moduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the modules in the manifest",
	Args:  cobra.NoArgs,
	RunE:  runModuleList,
}

var moduleAddCmd = &cobra.Command{
	Use:   "add <url | owner/repo>",
	Short: "Add a module and fetch it into the workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runModuleAdd,
}

var moduleRemoveCmd = &cobra.Command{
	Use:   "remove <name | url>",
	Short: "Remove a module from the manifest and delete its checkout",
	Args:  cobra.ExactArgs(1),
	RunE:  runModuleRemove,
}

var modulePinCmd = &cobra.Command{
	Use:   "pin <name> [revision]",
	Short: "Switch a module to a different tag, branch, or commit",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runModulePin,
}

func init() {
	rootCmd.AddCommand(moduleCmd)
	moduleCmd.AddCommand(moduleListCmd, moduleAddCmd, moduleRemoveCmd, modulePinCmd)

	moduleAddCmd.Flags().StringP("revision", "r", "", "Tag, branch, or commit to track (default: the remote's default branch)")
	moduleAddCmd.Flags().String("name", "", "Override the module name derived from the URL")

	modulePinCmd.Flags().Bool("latest", false, "Pin to the newest version tag of the remote")
}

func runModuleList(cmd *cobra.Command, _ []string) error {
	if err := deps.EnsureRepo(); err != nil {
		return err
	}

	entries, err := deps.Manifest.List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No modules in the manifest.")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(out, "%-24s %-16s %s\n", e.Name, e.Revision, render(cliMuted, e.URL))
	}
	return nil
}

func runModuleAdd(cmd *cobra.Command, args []string) error {
	if err := deps.EnsureRepo(); err != nil {
		return err
	}
	ctx := cmd.Context()

	req := manifest.AddRequest{
		Location: args[0],
		Name:     getStringFlag(cmd, "name"),
	}

	// Validate an explicit revision against the remote before touching the
	// manifest.
	if rev := getStringFlag(cmd, "revision"); rev != "" {
		url, err := manifest.CanonicalURL(req.Location)
		if err != nil {
			return err
		}
		res, err := deps.Resolver.Resolve(ctx, url, rev)
		if err != nil {
			return err
		}
		req.Revision = res.Name
	}

	entry, err := deps.Manifest.Add(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Added module %s at %s\n", symSuccess(), entry.Name, entry.Revision)
	return nil
}

func runModuleRemove(cmd *cobra.Command, args []string) error {
	if err := deps.EnsureRepo(); err != nil {
		return err
	}

	entry, warnings, err := deps.Manifest.Remove(cmd.Context(), args[0], deps.Repo.WestDir())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, w := range warnings {
		fmt.Fprintf(out, "%s %s\n", symWarning(), w)
	}
	fmt.Fprintf(out, "%s Removed module %s\n", symSuccess(), entry.Name)
	return nil
}

func runModulePin(cmd *cobra.Command, args []string) error {
	if err := deps.EnsureRepo(); err != nil {
		return err
	}
	ctx := cmd.Context()
	name := args[0]

	entries, err := deps.Manifest.List()
	if err != nil {
		return err
	}
	var url string
	for _, e := range entries {
		if strings.EqualFold(e.Name, name) {
			url = e.URL
			break
		}
	}
	if url == "" {
		return fmt.Errorf("module %q is not in the manifest", name)
	}

	var res revision.Resolution
	switch {
	case getBoolFlag(cmd, "latest"):
		res, err = deps.Resolver.Latest(ctx, url)
	case len(args) == 2:
		res, err = deps.Resolver.Resolve(ctx, url, args[1])
	default:
		return fmt.Errorf("specify a revision or --latest")
	}
	if err != nil {
		return err
	}

	entry, err := deps.Manifest.Pin(ctx, name, res.Name)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Pinned %s to %s %s\n", symSuccess(), entry.Name, res.Kind, res.Name)
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zmk-tools/zmk-cli/internal/buildmatrix"
	"github.com/zmk-tools/zmk-cli/internal/hardware"
)

var keyboardCmd = &cobra.Command{
	Use:   "keyboard",
	Short: "Manage the keyboards in the build matrix",
}

var keyboardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the hardware available in the workspace",
	Args:  cobra.NoArgs,
	RunE:  runKeyboardList,
}

var keyboardAddCmd = &cobra.Command{
	Use:   "add <keyboard>",
	Short: "Add a keyboard to the build matrix",
	Long: `Add a keyboard to the build matrix. A split keyboard expands to one
entry per half. A shield that needs a controller board must be paired with
one via --controller.`,
	Args: cobra.ExactArgs(1),
	RunE: runKeyboardAdd,
}

var keyboardRemoveCmd = &cobra.Command{
	Use:   "remove <keyboard>",
	Short: "Remove a keyboard from the build matrix",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeyboardRemove,
}

func init() {
	rootCmd.AddCommand(keyboardCmd)
	keyboardCmd.AddCommand(keyboardListCmd, keyboardAddCmd, keyboardRemoveCmd, keyboardNewCmd)

	keyboardListCmd.Flags().Bool("controllers", false, "List controller boards instead of keyboards")
	keyboardListCmd.Flags().Bool("interconnects", false, "List interconnects instead of keyboards")

	keyboardAddCmd.Flags().StringP("controller", "c", "", "Controller board for a shield")
	keyboardAddCmd.Flags().String("snippet", "", "Zephyr snippet to apply to the build")
	keyboardAddCmd.Flags().String("cmake-args", "", "Extra CMake arguments for the build")
	keyboardAddCmd.Flags().String("artifact-name", "", "Override the firmware artifact file name")

	keyboardRemoveCmd.Flags().BoolP("all", "a", false, "Remove every matching entry")
	keyboardRemoveCmd.Flags().StringP("controller", "c", "", "Controller board, to disambiguate")
}

func runKeyboardList(cmd *cobra.Command, _ []string) error {
	if err := deps.EnsureRepo(); err != nil {
		return err
	}

	cat, err := deps.ScanCatalog()
	if err != nil {
		return err
	}

	var items []*hardware.Hardware
	switch {
	case getBoolFlag(cmd, "controllers"):
		items = cat.Controllers()
	case getBoolFlag(cmd, "interconnects"):
		items = cat.Interconnects()
	default:
		items = cat.Keyboards()
	}

	out := cmd.OutOrStdout()
	for _, h := range items {
		fmt.Fprintf(out, "%-24s %-32s %s\n", h.ID, h.Name, render(cliMuted, h.Module))
	}
	for _, w := range cat.Warnings {
		fmt.Fprintf(out, "%s skipped %s: %v\n", symWarning(), w.Path, w.Err)
	}
	return nil
}

func runKeyboardAdd(cmd *cobra.Command, args []string) error {
	if err := deps.EnsureRepo(); err != nil {
		return err
	}

	cat, err := deps.ScanCatalog()
	if err != nil {
		return err
	}

	req := buildmatrix.AddRequest{
		Snippet:      getStringFlag(cmd, "snippet"),
		CMakeArgs:    getStringFlag(cmd, "cmake-args"),
		ArtifactName: getStringFlag(cmd, "artifact-name"),
	}

	id := args[0]
	var kb *hardware.Hardware
	if sh, ok := cat.Shield(id); ok {
		req.Shield = id
		req.Board = getStringFlag(cmd, "controller")
		kb = sh
	} else {
		req.Board = id
		if b, ok := cat.Board(id); ok {
			kb = b
		}
	}

	added, err := deps.Matrix.AddTarget(req)
	if err != nil {
		if errors.Is(err, buildmatrix.ErrMissingControllerBoard) {
			return fmt.Errorf("%w (pick one with --controller; see zmk keyboard list --controllers)", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	for _, t := range added {
		fmt.Fprintf(out, "%s Added build: %s\n", symSuccess(), t)
	}

	if kb != nil {
		copyKeyboardFiles(out, kb, deps.Repo.ConfigPath())
	}
	return nil
}

// copyKeyboardFiles copies the keyboard's stock keymap and conf files into
// config/ so the user has something to edit. Files the user already has are
// never overwritten, and a keyboard shipping neither file is fine.
func copyKeyboardFiles(out io.Writer, kb *hardware.Hardware, configDir string) {
	for _, ext := range []string{".keymap", ".conf"} {
		name := kb.ID + ext
		data, err := os.ReadFile(filepath.Join(kb.Directory, name))
		if err != nil {
			continue
		}

		dst := filepath.Join(configDir, name)
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			fmt.Fprintf(out, "%s could not copy %s: %v\n", symWarning(), dst, err)
			continue
		}
		fmt.Fprintf(out, "%s Copied %s\n", symSuccess(), dst)
	}
}

func runKeyboardRemove(cmd *cobra.Command, args []string) error {
	if err := deps.EnsureRepo(); err != nil {
		return err
	}

	cat, err := deps.ScanCatalog()
	if err != nil {
		return err
	}

	// The identifier may name hardware no longer in any module; classify
	// against the matrix itself so stale entries stay removable.
	sel := buildmatrix.Selector{
		All: getBoolFlag(cmd, "all"),
	}
	id := args[0]
	if _, ok := cat.Shield(id); ok {
		sel.Shield = id
	} else if _, ok := cat.Board(id); ok {
		sel.Board = id
	} else if targetsHaveShield(deps.Matrix, id) {
		sel.Shield = id
	} else {
		sel.Board = id
	}
	if c := getStringFlag(cmd, "controller"); c != "" {
		sel.Board = c
	}

	removed, err := deps.Matrix.RemoveTargets(sel)
	if err != nil {
		var ambiguous *buildmatrix.AmbiguousSelectorError
		if errors.As(err, &ambiguous) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s matches several builds:\n", id)
			for _, t := range ambiguous.Candidates {
				fmt.Fprintf(out, "  %s\n", t)
			}
			return fmt.Errorf("narrow the match with --controller or remove all with --all")
		}
		return err
	}

	out := cmd.OutOrStdout()
	if len(removed) == 0 {
		fmt.Fprintf(out, "No builds match %s.\n", id)
		return nil
	}
	for _, t := range removed {
		fmt.Fprintf(out, "%s Removed build: %s\n", symSuccess(), t)
	}
	return nil
}

func targetsHaveShield(store *buildmatrix.Store, id string) bool {
	targets, err := store.Targets()
	if err != nil {
		return false
	}
	for _, t := range targets {
		if (buildmatrix.Selector{Shield: id}).Matches(t) {
			return true
		}
	}
	return false
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zmk-tools/zmk-cli/internal/scaffold"
)

var keyboardNewCmd = &cobra.Command{
	Use:   "new <id>",
	Short: "Create the file set for a new board or shield",
	Long: `Create the file set for a new board or shield under the repo's board
root. The files are rendered from a bundled template set picked by --type
and --split, previewed with --dry-run, and never overwrite existing files
without --force.`,
	Args: cobra.ExactArgs(1),
	RunE: runKeyboardNew,
}

func init() {
	keyboardNewCmd.Flags().StringP("type", "t", "shield", "Hardware type: board or shield")
	keyboardNewCmd.Flags().Bool("split", false, "Create a split keyboard (left and right halves)")
	keyboardNewCmd.Flags().String("name", "", "Keyboard display name (default: derived from the id)")
	keyboardNewCmd.Flags().String("short-name", "", fmt.Sprintf("Abbreviated display name (max %d characters)", scaffold.MaxShortNameLength))
	keyboardNewCmd.Flags().String("arch", "", "Board CPU architecture (boards only, default arm)")
	keyboardNewCmd.Flags().String("gpio", "", "GPIO node label used in the key matrix (default &gpio0)")
	keyboardNewCmd.Flags().StringP("interconnect", "i", "pro_micro", "Interconnect the shield attaches to (shields only)")
	keyboardNewCmd.Flags().Bool("dry-run", false, "Print the files without writing anything")
	keyboardNewCmd.Flags().BoolP("force", "f", false, "Overwrite existing files")
}

func runKeyboardNew(cmd *cobra.Command, args []string) error {
	if err := deps.EnsureRepo(); err != nil {
		return err
	}

	kbType := getStringFlag(cmd, "type")
	if kbType != "board" && kbType != "shield" {
		return fmt.Errorf("unknown keyboard type %q (use board or shield)", kbType)
	}

	params := scaffold.Params{
		ID:           args[0],
		Name:         getStringFlag(cmd, "name"),
		ShortName:    getStringFlag(cmd, "short-name"),
		KeyboardType: kbType,
		Arch:         getStringFlag(cmd, "arch"),
		GPIO:         getStringFlag(cmd, "gpio"),
		Interconnect: getStringFlag(cmd, "interconnect"),
	}

	layout := "unibody"
	if getBoolFlag(cmd, "split") {
		layout = "split"
	}
	setName := kbType + "/" + layout

	engine, err := scaffold.Default()
	if err != nil {
		return err
	}
	files, err := engine.Render(setName, params)
	if err != nil {
		return err
	}

	destDir := filepath.Join(boardRootFor(deps), filepath.FromSlash(scaffold.DestDir(params)))
	out := cmd.OutOrStdout()

	if getBoolFlag(cmd, "dry-run") {
		for _, f := range files {
			fmt.Fprintln(out, render(cliHeading, filepath.Join(destDir, f.Path)))
			fmt.Fprintln(out, strings.TrimRight(string(f.Content), "\n"))
			fmt.Fprintln(out)
		}
		return nil
	}

	if !getBoolFlag(cmd, "force") {
		for _, f := range files {
			path := filepath.Join(destDir, f.Path)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", destDir, err)
	}
	for _, f := range files {
		path := filepath.Join(destDir, f.Path)
		if err := os.WriteFile(path, f.Content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(out, "%s %s\n", symSuccess(), path)
	}

	fmt.Fprintf(out, "\nAdd it to the build matrix with: zmk keyboard add %s\n", params.ID)
	return nil
}

// boardRootFor returns the repo's board root, defaulting to config/boards
// for repos that do not have one yet.
func boardRootFor(d *Dependencies) string {
	if root, ok := d.Repo.BoardRoot(); ok {
		return root
	}
	return filepath.Join(d.Repo.ConfigPath(), "boards")
}

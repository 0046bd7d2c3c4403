package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zmk-tools/zmk-cli/internal/buildmatrix"
	"github.com/zmk-tools/zmk-cli/internal/config"
	"github.com/zmk-tools/zmk-cli/internal/manifest"
	"github.com/zmk-tools/zmk-cli/internal/repo"
)

type fakeSync struct {
	err error
}

func (f *fakeSync) Sync(_ context.Context, _ ...string) error {
	return f.err
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// newTestDeps builds a workspace with one module that provides a controller
// board and a split shield, wired with a synchronizer that touches nothing.
func newTestDeps(t *testing.T) *Dependencies {
	t.Helper()
	root := t.TempDir()

	write(t, filepath.Join(root, "config", "west.yml"), `manifest:
  projects:
    - name: widgets
      url: https://github.com/someone/widgets
      revision: main
      path: modules/widgets
`)

	module := filepath.Join(root, ".zmk", "modules", "widgets")
	write(t, filepath.Join(module, "zephyr", "module.yml"), "build:\n  settings:\n    board_root: .\n")
	write(t, filepath.Join(module, "boards", "nice_nano.zmk.yml"), `id: nice_nano
name: nice!nano
type: board
exposes: [pro_micro]
`)
	write(t, filepath.Join(module, "boards", "corne.zmk.yml"), `id: corne
name: Corne
type: shield
requires: [pro_micro]
features: [keys]
siblings: [corne_left, corne_right]
`)
	write(t, filepath.Join(module, "boards", "corne.keymap"), "#include <behaviors.dtsi>\n")
	write(t, filepath.Join(module, "boards", "corne.conf"), "# stock corne settings\n")

	r, err := repo.Open(root)
	if err != nil {
		t.Fatal(err)
	}

	settings, err := config.Load(filepath.Join(t.TempDir(), "zmk.toml"))
	if err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := &Dependencies{
		Settings: settings,
		Logger:   logger,
		Repo:     r,
	}
	d.Manifest = manifest.NewManager(r.ManifestPath(), &fakeSync{},
		manifest.WithLogger(logger),
		manifest.WithUsageReporter(d.exclusiveHardware))
	d.Matrix = buildmatrix.NewStore(r.BuildMatrixPath(), d.ScanCatalog)
	return d
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestModuleListCommand(t *testing.T) {
	SetDeps(newTestDeps(t))

	out, err := run(t, "module", "list")
	if err != nil {
		t.Fatalf("module list error: %v", err)
	}
	if !strings.Contains(out, "widgets") || !strings.Contains(out, "main") {
		t.Errorf("output = %q", out)
	}
}

func TestKeyboardCommands(t *testing.T) {
	d := newTestDeps(t)
	SetDeps(d)

	t.Run("list", func(t *testing.T) {
		out, err := run(t, "keyboard", "list")
		if err != nil {
			t.Fatalf("keyboard list error: %v", err)
		}
		if !strings.Contains(out, "corne") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("list_controllers", func(t *testing.T) {
		out, err := run(t, "keyboard", "list", "--controllers")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "nice_nano") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("add_split_keyboard", func(t *testing.T) {
		// A conf the user already customized must survive the add.
		write(t, filepath.Join(d.Repo.ConfigPath(), "corne.conf"), "CONFIG_ZMK_SLEEP=y\n")

		out, err := run(t, "keyboard", "add", "corne", "-c", "nice_nano")
		if err != nil {
			t.Fatalf("keyboard add error: %v\n%s", err, out)
		}

		data, err := os.ReadFile(d.Repo.BuildMatrixPath())
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"corne_left", "corne_right", "nice_nano"} {
			if !strings.Contains(string(data), want) {
				t.Errorf("build.yaml missing %q:\n%s", want, data)
			}
		}

		keymap, err := os.ReadFile(filepath.Join(d.Repo.ConfigPath(), "corne.keymap"))
		if err != nil {
			t.Fatalf("stock keymap not copied into config/: %v", err)
		}
		if !strings.Contains(string(keymap), "behaviors.dtsi") {
			t.Errorf("copied keymap = %q", keymap)
		}

		conf, err := os.ReadFile(filepath.Join(d.Repo.ConfigPath(), "corne.conf"))
		if err != nil {
			t.Fatal(err)
		}
		if string(conf) != "CONFIG_ZMK_SLEEP=y\n" {
			t.Errorf("user conf overwritten: %q", conf)
		}
	})

	t.Run("add_shield_without_controller", func(t *testing.T) {
		_, err := run(t, "keyboard", "add", "corne", "-c", "")
		if err == nil {
			t.Fatal("expected error for shield with no controller")
		}
		if !strings.Contains(err.Error(), "--controller") {
			t.Errorf("error does not point at --controller: %v", err)
		}
	})

	t.Run("remove_is_ambiguous_without_all", func(t *testing.T) {
		if _, err := run(t, "keyboard", "remove", "corne"); err == nil {
			t.Fatal("expected ambiguity error")
		}
	})

	t.Run("remove_all", func(t *testing.T) {
		out, err := run(t, "keyboard", "remove", "corne", "--all")
		if err != nil {
			t.Fatalf("keyboard remove error: %v\n%s", err, out)
		}

		targets, err := d.Matrix.Targets()
		if err != nil {
			t.Fatal(err)
		}
		if len(targets) != 0 {
			t.Errorf("targets = %v", targets)
		}
	})
}

func TestConfigCommand(t *testing.T) {
	SetDeps(newTestDeps(t))

	if _, err := run(t, "config", "core.editor", "vim"); err != nil {
		t.Fatalf("config set error: %v", err)
	}

	out, err := run(t, "config", "core.editor")
	if err != nil {
		t.Fatalf("config get error: %v", err)
	}
	if !strings.Contains(out, "vim") {
		t.Errorf("output = %q", out)
	}

	if _, err := run(t, "config", "no.such.key"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestKeyboardNewCommand(t *testing.T) {
	d := newTestDeps(t)
	SetDeps(d)

	out, err := run(t, "keyboard", "new", "my_board", "--type", "shield", "--dry-run")
	if err != nil {
		t.Fatalf("keyboard new error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "my_board.zmk.yml") {
		t.Errorf("dry run output = %q", out)
	}

	out, err = run(t, "keyboard", "new", "my_board", "--type", "shield", "--dry-run=false")
	if err != nil {
		t.Fatalf("keyboard new error: %v\n%s", err, out)
	}

	dest := filepath.Join(d.Repo.ConfigPath(), "boards", "shields", "my_board")
	if _, err := os.Stat(filepath.Join(dest, "my_board.keymap")); err != nil {
		t.Errorf("keymap not written: %v", err)
	}

	// Refuses to clobber what it just created.
	if _, err := run(t, "keyboard", "new", "my_board", "--type", "shield", "--dry-run=false"); err == nil {
		t.Fatal("expected overwrite refusal")
	}
}

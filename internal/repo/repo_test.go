package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func makeRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "config", "west.yml"), []byte("manifest:\n  projects: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestOpen(t *testing.T) {
	t.Run("valid_repo", func(t *testing.T) {
		root := makeRepo(t)

		r, err := Open(root)
		if err != nil {
			t.Fatalf("Open error: %v", err)
		}
		if r.ManifestPath() != filepath.Join(root, "config", "west.yml") {
			t.Errorf("ManifestPath = %q", r.ManifestPath())
		}
		if r.BuildMatrixPath() != filepath.Join(root, "build.yaml") {
			t.Errorf("BuildMatrixPath = %q", r.BuildMatrixPath())
		}
	})

	t.Run("not_a_repo", func(t *testing.T) {
		_, err := Open(t.TempDir())
		if !errors.Is(err, ErrNoRepo) {
			t.Fatalf("err = %v, want ErrNoRepo", err)
		}
	})
}

func TestFind(t *testing.T) {
	t.Run("walks_upward", func(t *testing.T) {
		root := makeRepo(t)
		nested := filepath.Join(root, "config", "boards", "shields", "corne")
		if err := os.MkdirAll(nested, 0o755); err != nil {
			t.Fatal(err)
		}

		r, err := Find(nested)
		if err != nil {
			t.Fatalf("Find error: %v", err)
		}
		if r.Root != root {
			t.Errorf("Root = %q, want %q", r.Root, root)
		}
	})

	t.Run("no_repo_above", func(t *testing.T) {
		_, err := Find(t.TempDir())
		if !errors.Is(err, ErrNoRepo) {
			t.Fatalf("err = %v, want ErrNoRepo", err)
		}
	})
}

func TestWestReady(t *testing.T) {
	root := makeRepo(t)
	r, err := Open(root)
	if err != nil {
		t.Fatal(err)
	}

	if r.WestReady() {
		t.Error("WestReady() = true before init")
	}

	westCfg := filepath.Join(r.WestDir(), ".west")
	if err := os.MkdirAll(westCfg, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(westCfg, "config"), []byte("[manifest]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !r.WestReady() {
		t.Error("WestReady() = false after init")
	}
}

func TestModuleBoardRoot(t *testing.T) {
	t.Run("from_module_manifest", func(t *testing.T) {
		root := t.TempDir()
		if err := os.MkdirAll(filepath.Join(root, "zephyr"), 0o755); err != nil {
			t.Fatal(err)
		}
		manifest := "build:\n  settings:\n    board_root: hw\n"
		if err := os.WriteFile(filepath.Join(root, "zephyr", "module.yml"), []byte(manifest), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.MkdirAll(filepath.Join(root, "hw", "boards"), 0o755); err != nil {
			t.Fatal(err)
		}

		m := &Module{Name: "widgets", Root: root}
		got, ok := m.BoardRoot()
		if !ok {
			t.Fatal("BoardRoot not found")
		}
		if got != filepath.Join(root, "hw", "boards") {
			t.Errorf("BoardRoot = %q", got)
		}
	})

	t.Run("app_boards_fallback", func(t *testing.T) {
		root := t.TempDir()
		if err := os.MkdirAll(filepath.Join(root, "app", "boards"), 0o755); err != nil {
			t.Fatal(err)
		}

		m := &Module{Name: "zmk", Root: root}
		got, ok := m.BoardRoot()
		if !ok {
			t.Fatal("BoardRoot not found")
		}
		if got != filepath.Join(root, "app", "boards") {
			t.Errorf("BoardRoot = %q", got)
		}
	})

	t.Run("none", func(t *testing.T) {
		m := &Module{Name: "bare", Root: t.TempDir()}
		if _, ok := m.BoardRoot(); ok {
			t.Error("BoardRoot found in an empty module")
		}
	})
}

func TestRepoBoardRoot(t *testing.T) {
	root := makeRepo(t)
	r, err := Open(root)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := r.BoardRoot(); ok {
		t.Error("BoardRoot found before config/boards exists")
	}

	if err := os.MkdirAll(filepath.Join(root, "config", "boards"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok := r.BoardRoot()
	if !ok {
		t.Fatal("BoardRoot not found")
	}
	if got != filepath.Join(root, "config", "boards") {
		t.Errorf("BoardRoot = %q", got)
	}
}

func TestModuleAt(t *testing.T) {
	root := makeRepo(t)
	r, err := Open(root)
	if err != nil {
		t.Fatal(err)
	}

	m := r.ModuleAt("widgets", "modules/widgets")
	if m.Root != filepath.Join(root, ".zmk", "modules", "widgets") {
		t.Errorf("Root = %q", m.Root)
	}

	// Path defaults to the module name, matching west behavior.
	m = r.ModuleAt("widgets", "")
	if m.Root != filepath.Join(root, ".zmk", "widgets") {
		t.Errorf("Root = %q", m.Root)
	}
}

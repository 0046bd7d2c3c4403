// Package repo models a ZMK config repository and the Zephyr modules checked
// out into its west staging directory. It only answers path questions; the
// manifest, build matrix, and hardware catalog each have their own package.
package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zmk-tools/zmk-cli/internal/defs"
)

// Module is a single Zephyr module checked out on disk. The config repo
// itself is also a Module (its boards live under config/boards).
type Module struct {
	// Name is the module's manifest name. Empty for anonymous modules.
	Name string

	// Root is the absolute path to the module's top-level directory.
	Root string
}

// ManifestPath returns the path to the module's zephyr/module.yml file.
func (m *Module) ManifestPath() string {
	return filepath.Join(m.Root, filepath.FromSlash(defs.ModuleManifest))
}

// moduleManifest is the subset of zephyr/module.yml the CLI cares about.
type moduleManifest struct {
	Build struct {
		Settings struct {
			BoardRoot string `yaml:"board_root"`
		} `yaml:"settings"`
	} `yaml:"build"`
}

// BoardRoot returns the directory containing this module's hardware
// definitions, or ok=false if the module contributes none.
//
// The board root is resolved from build.settings.board_root in the module
// manifest, falling back to app/boards for Zephyr-application style modules
// (the ZMK firmware module itself).
func (m *Module) BoardRoot() (string, bool) {
	if data, err := os.ReadFile(m.ManifestPath()); err == nil {
		var mm moduleManifest
		if err := yaml.Unmarshal(data, &mm); err == nil && mm.Build.Settings.BoardRoot != "" {
			root := filepath.Join(m.Root, filepath.FromSlash(mm.Build.Settings.BoardRoot), "boards")
			if isDir(root) {
				return root, true
			}
		}
	}

	root := filepath.Join(m.Root, "app", "boards")
	if isDir(root) {
		return root, true
	}
	return "", false
}

// Repo is a ZMK config repository: a directory containing config/west.yml.
type Repo struct {
	Module
}

// Open returns the repo rooted at path, or ErrNoRepo if path is not a config
// repo.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve repo path: %w", err)
	}
	if !isFile(filepath.Join(abs, filepath.FromSlash(defs.ProjectManifest))) {
		return nil, &NoRepoError{Path: abs}
	}
	return &Repo{Module: Module{Root: abs}}, nil
}

// Find locates the config repo containing startDir by walking upward until a
// directory with a config/west.yml is found. Returns ErrNoRepo if the search
// reaches the filesystem root.
func Find(startDir string) (*Repo, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolve search path: %w", err)
	}

	for {
		if r, err := Open(dir); err == nil {
			return r, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, &NoRepoError{Path: startDir}
		}
		dir = parent
	}
}

// ManifestPath returns the path to the west manifest (config/west.yml).
func (r *Repo) ManifestPath() string {
	return filepath.Join(r.Root, filepath.FromSlash(defs.ProjectManifest))
}

// BuildMatrixPath returns the path to build.yaml.
func (r *Repo) BuildMatrixPath() string {
	return filepath.Join(r.Root, defs.BuildMatrix)
}

// ConfigPath returns the path to the config directory.
func (r *Repo) ConfigPath() string {
	return filepath.Join(r.Root, defs.ConfigDir)
}

// WestDir returns the west staging directory (.zmk).
func (r *Repo) WestDir() string {
	return filepath.Join(r.Root, defs.WestStagingDir)
}

// WestReady reports whether the west application has been initialized.
func (r *Repo) WestReady() bool {
	return isFile(filepath.Join(r.WestDir(), filepath.FromSlash(defs.WestConfig)))
}

// ModuleAt returns the module checked out at the given manifest path
// (relative to the west staging dir). The module need not exist on disk yet.
func (r *Repo) ModuleAt(name, manifestPath string) *Module {
	if manifestPath == "" {
		manifestPath = name
	}
	return &Module{
		Name: name,
		Root: filepath.Join(r.WestDir(), filepath.FromSlash(manifestPath)),
	}
}

// BoardRoot returns the repo's own hardware definition directory, preferring
// the module-manifest board root and falling back to config/boards for
// old-style repos.
func (r *Repo) BoardRoot() (string, bool) {
	if root, ok := r.Module.BoardRoot(); ok {
		return root, true
	}

	root := filepath.Join(r.ConfigPath(), "boards")
	if isDir(root) {
		return root, true
	}
	return "", false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

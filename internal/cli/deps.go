// Package cli provides the Cobra command tree and dependency wiring for the
// zmk CLI. This file is the composition root: the only place concrete types
// are instantiated and connected.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/zmk-tools/zmk-cli/internal/buildmatrix"
	"github.com/zmk-tools/zmk-cli/internal/config"
	"github.com/zmk-tools/zmk-cli/internal/hardware"
	"github.com/zmk-tools/zmk-cli/internal/manifest"
	"github.com/zmk-tools/zmk-cli/internal/repo"
	"github.com/zmk-tools/zmk-cli/internal/revision"
	"github.com/zmk-tools/zmk-cli/internal/west"
)

// Dependencies holds the services CLI commands operate through. Repo-scoped
// services are initialized lazily by EnsureRepo, since commands like config
// run outside any repository.
type Dependencies struct {
	Settings *config.Store
	Remote   *revision.GitRemote
	Resolver *revision.Resolver
	Logger   *slog.Logger

	Repo     *repo.Repo
	West     *west.Runner
	Manifest *manifest.Manager
	Matrix   *buildmatrix.Store
}

// deps is the global dependencies instance, initialized by InitDependencies.
var deps *Dependencies

// InitDependencies creates the repo-independent services. Called once by
// Execute before any command runs.
func InitDependencies() error {
	level := slog.LevelWarn
	if os.Getenv("ZMK_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	path, err := config.DefaultPath()
	if err != nil {
		return err
	}
	settings, err := config.Load(path)
	if err != nil {
		return err
	}

	remote := revision.NewGitRemote(logger)
	deps = &Dependencies{
		Settings: settings,
		Remote:   remote,
		Resolver: revision.NewResolver(remote),
		Logger:   logger,
	}
	return nil
}

// SetDeps replaces the global dependencies (used for testing).
func SetDeps(d *Dependencies) {
	deps = d
}

// EnsureRepo locates the config repository and wires the repo-scoped
// services. Subsequent calls are no-ops.
func (d *Dependencies) EnsureRepo() error {
	if d.Repo != nil {
		return nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	r, err := d.Settings.LocateRepo(cwd)
	if err != nil {
		return err
	}

	d.Repo = r
	d.West = west.NewRunner(r.WestDir(), r.ConfigPath(), west.WithRunnerLogger(d.Logger))
	d.Manifest = manifest.NewManager(r.ManifestPath(), d.West,
		manifest.WithLogger(d.Logger),
		manifest.WithDefaultBranch(d.Remote.DefaultBranch),
		manifest.WithUsageReporter(d.exclusiveHardware),
		manifest.WithProtected("zmk"),
	)
	d.Matrix = buildmatrix.NewStore(r.BuildMatrixPath(), d.ScanCatalog)
	return nil
}

// ScanCatalog builds a fresh hardware catalog over the repo and every module
// in the manifest.
func (d *Dependencies) ScanCatalog() (*hardware.Catalog, error) {
	entries, err := d.Manifest.List()
	if err != nil {
		return nil, err
	}
	return hardware.ScanWorkspace(d.Repo, entries), nil
}

// exclusiveHardware lists hardware identifiers only the given module
// provides, by comparing a full workspace scan against one without the
// module. Feeds the warnings module remove prints.
func (d *Dependencies) exclusiveHardware(e manifest.Entry) []string {
	entries, err := d.Manifest.List()
	if err != nil {
		return nil
	}

	full := hardware.ScanWorkspace(d.Repo, entries)

	rest := make([]manifest.Entry, 0, len(entries))
	for _, o := range entries {
		if !strings.EqualFold(o.Name, e.Name) {
			rest = append(rest, o)
		}
	}
	without := hardware.ScanWorkspace(d.Repo, rest)

	var ids []string
	for _, h := range full.ByModule(e.Name) {
		if _, ok := without.Lookup(h.Kind, h.ID); !ok {
			ids = append(ids, h.ID)
		}
	}
	return ids
}

// Package west drives the west meta-tool as a subprocess to materialize the
// module checkouts the manifest describes. The staging directory is a west
// topdir owned entirely by this tool; users never run west in it themselves.
package west

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/zmk-tools/zmk-cli/internal/defs"
	"github.com/zmk-tools/zmk-cli/internal/manifest"
)

// DefaultTimeout bounds a single west invocation. Updates clone full module
// repositories, so the bound is generous.
const DefaultTimeout = 10 * time.Minute

// Runner invokes west inside a staging directory whose manifest is the
// repo's config/west.yml.
type Runner struct {
	// topdir is the west topdir (the repo's staging directory).
	topdir string

	// manifestDir is the absolute path of the directory holding west.yml.
	manifestDir string

	timeout time.Duration
	log     *slog.Logger
}

var _ manifest.Synchronizer = (*Runner)(nil)

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTimeout replaces the per-invocation timeout.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) { r.timeout = d }
}

// WithRunnerLogger replaces the runner's logger.
func WithRunnerLogger(log *slog.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// NewRunner creates a west runner for the given staging topdir and manifest
// directory.
func NewRunner(topdir, manifestDir string, opts ...RunnerOption) *Runner {
	r := &Runner{
		topdir:      topdir,
		manifestDir: manifestDir,
		timeout:     DefaultTimeout,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init prepares the staging directory as a west topdir pointing at the
// repo's manifest. Writing .west/config directly is equivalent to west init
// and avoids cloning anything before the first update. Init is idempotent.
func (r *Runner) Init(ctx context.Context) error {
	cfgPath := filepath.Join(r.topdir, filepath.FromSlash(defs.WestConfig))
	if _, err := os.Stat(cfgPath); err == nil {
		return nil
	}

	rel, err := filepath.Rel(r.topdir, r.manifestDir)
	if err != nil {
		return fmt.Errorf("resolve manifest path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return fmt.Errorf("create west config dir: %w", err)
	}

	cfg := fmt.Sprintf("[manifest]\npath = %s\nfile = west.yml\n", filepath.ToSlash(rel))
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		return fmt.Errorf("write west config: %w", err)
	}

	r.log.Debug("initialized west staging dir", "topdir", r.topdir, "manifest", rel)
	return nil
}

// Sync runs west update for the named modules, or for the whole workspace
// when no names are given. The staging dir is initialized on first use.
func (r *Runner) Sync(ctx context.Context, modules ...string) error {
	if err := r.Init(ctx); err != nil {
		return err
	}

	args := append([]string{"update"}, modules...)
	return r.run(ctx, args...)
}

func (r *Runner) run(ctx context.Context, args ...string) error {
	bin, err := exec.LookPath("west")
	if err != nil {
		return fmt.Errorf("%w (install it with: pip install west)", ErrWestNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.log.Debug("running west", "args", strings.Join(args, " "), "dir", r.topdir)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = r.topdir
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &SyncError{
			Args:   args,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return nil
}

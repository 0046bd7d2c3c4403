package revision

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// HistoryProvider answers ref questions about a remote Git repository.
// Everything works against the remote directly; no local clone is required.
type HistoryProvider interface {
	// Tags lists the remote's tag names, unordered.
	Tags(ctx context.Context, url string) ([]string, error)

	// Branches lists the remote's branch names, unordered.
	Branches(ctx context.Context, url string) ([]string, error)

	// DefaultBranch returns the branch the remote's HEAD points at.
	DefaultBranch(ctx context.Context, url string) (string, error)
}

// remoteTimeout bounds one ls-remote round trip.
const remoteTimeout = 30 * time.Second

// GitRemote queries remotes with git ls-remote.
type GitRemote struct {
	log *slog.Logger
}

var _ HistoryProvider = (*GitRemote)(nil)

// NewGitRemote creates a remote ref provider backed by the git CLI.
func NewGitRemote(log *slog.Logger) *GitRemote {
	if log == nil {
		log = slog.Default()
	}
	return &GitRemote{log: log}
}

// Tags implements HistoryProvider. Peeled annotated-tag entries (^{}) are
// dropped so each tag appears once.
func (g *GitRemote) Tags(ctx context.Context, url string) ([]string, error) {
	refs, err := g.lsRemote(ctx, url, "--tags")
	if err != nil {
		return nil, err
	}

	var tags []string
	for _, ref := range refs {
		name, ok := strings.CutPrefix(ref, "refs/tags/")
		if !ok || strings.HasSuffix(name, "^{}") {
			continue
		}
		tags = append(tags, name)
	}
	return tags, nil
}

// Branches implements HistoryProvider.
func (g *GitRemote) Branches(ctx context.Context, url string) ([]string, error) {
	refs, err := g.lsRemote(ctx, url, "--heads")
	if err != nil {
		return nil, err
	}

	var branches []string
	for _, ref := range refs {
		if name, ok := strings.CutPrefix(ref, "refs/heads/"); ok {
			branches = append(branches, name)
		}
	}
	return branches, nil
}

// DefaultBranch implements HistoryProvider using the remote's symbolic HEAD.
func (g *GitRemote) DefaultBranch(ctx context.Context, url string) (string, error) {
	out, err := g.runGit(ctx, url, "ls-remote", "--symref", url, "HEAD")
	if err != nil {
		return "", err
	}

	// First line: "ref: refs/heads/<branch>\tHEAD"
	for _, line := range strings.Split(out, "\n") {
		rest, ok := strings.CutPrefix(line, "ref: refs/heads/")
		if !ok {
			continue
		}
		if name, _, found := strings.Cut(rest, "\t"); found {
			return name, nil
		}
	}
	return "", fmt.Errorf("revision: no symbolic HEAD for %s", url)
}

// lsRemote returns the ref names (second column) of a git ls-remote call.
func (g *GitRemote) lsRemote(ctx context.Context, url string, filter string) ([]string, error) {
	out, err := g.runGit(ctx, url, "ls-remote", filter, url)
	if err != nil {
		return nil, err
	}

	var refs []string
	for _, line := range strings.Split(out, "\n") {
		if _, ref, found := strings.Cut(line, "\t"); found {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

func (g *GitRemote) runGit(ctx context.Context, url string, args ...string) (string, error) {
	bin, err := exec.LookPath("git")
	if err != nil {
		return "", ErrGitNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	g.log.Debug("running git", "args", strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Never block on a credential prompt for a bad URL.
	cmd.Env = append(cmd.Environ(), "GIT_TERMINAL_PROMPT=0")

	if err := cmd.Run(); err != nil {
		return "", &RemoteError{
			URL:    url,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.String(), nil
}

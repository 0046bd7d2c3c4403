// Package revision resolves user-supplied revision specs (tags, branches,
// commit hashes) against a module's remote so the manifest is only ever
// pinned to something that exists.
package revision

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// Kind classifies what a revision spec resolved to.
type Kind string

// Revision kinds, in resolution precedence order.
const (
	KindTag    Kind = "tag"
	KindBranch Kind = "branch"
	KindCommit Kind = "commit"
)

// Resolution is a successfully resolved revision.
type Resolution struct {
	Kind Kind

	// Name is the revision as it should appear in the manifest.
	Name string
}

// commitPattern matches abbreviated or full commit hashes.
var commitPattern = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// Resolver validates revision specs against a remote.
type Resolver struct {
	provider HistoryProvider
}

// NewResolver creates a resolver over the given ref provider.
func NewResolver(p HistoryProvider) *Resolver {
	return &Resolver{provider: p}
}

// Resolve classifies rev against the remote at url. A name that is both a
// tag and a branch resolves as the tag; anything that matches neither but
// looks like a commit hash is accepted as a commit, since remotes do not
// enumerate reachable commits.
func (r *Resolver) Resolve(ctx context.Context, url, rev string) (Resolution, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" {
		return Resolution{}, &UnknownRevisionError{Revision: rev, URL: url}
	}

	tags, err := r.provider.Tags(ctx, url)
	if err != nil {
		return Resolution{}, err
	}
	for _, tag := range tags {
		if tag == rev {
			return Resolution{Kind: KindTag, Name: tag}, nil
		}
	}

	branches, err := r.provider.Branches(ctx, url)
	if err != nil {
		return Resolution{}, err
	}
	for _, branch := range branches {
		if branch == rev {
			return Resolution{Kind: KindBranch, Name: branch}, nil
		}
	}

	if commitPattern.MatchString(strings.ToLower(rev)) {
		return Resolution{Kind: KindCommit, Name: strings.ToLower(rev)}, nil
	}

	return Resolution{}, &UnknownRevisionError{Revision: rev, URL: url}
}

// Latest returns the remote's highest version tag.
func (r *Resolver) Latest(ctx context.Context, url string) (Resolution, error) {
	tags, err := r.provider.Tags(ctx, url)
	if err != nil {
		return Resolution{}, err
	}
	if len(tags) == 0 {
		return Resolution{}, ErrNoTags
	}

	sorted := SortTags(tags)
	return Resolution{Kind: KindTag, Name: sorted[0]}, nil
}

// SortTags orders tags newest-first: semver-comparable tags first in
// descending version order, everything else after in descending lexical
// order. The input is not modified.
func SortTags(tags []string) []string {
	sorted := append([]string(nil), tags...)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, oki := canonicalVersion(sorted[i])
		vj, okj := canonicalVersion(sorted[j])
		switch {
		case oki && okj:
			return semver.Compare(vi, vj) > 0
		case oki:
			return true
		case okj:
			return false
		default:
			return sorted[i] > sorted[j]
		}
	})
	return sorted
}

// canonicalVersion maps a tag like "v0.3" or "0.3.1" onto a canonical semver
// string, reporting whether the tag is version-like. Only a leading "v" (or
// none) counts: vendor tags like "zephyr-v3.5" are not versions of the module
// itself and must never outrank its real releases.
func canonicalVersion(tag string) (string, bool) {
	s := strings.TrimPrefix(tag, "v")
	if s == "" || s[0] < '0' || s[0] > '9' {
		return "", false
	}
	v := semver.Canonical("v" + s)
	if v == "" {
		return "", false
	}
	return v, true
}

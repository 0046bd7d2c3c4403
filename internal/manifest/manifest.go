package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zmk-tools/zmk-cli/internal/yamldoc"
)

// Entry is one project in the west manifest. Fields we do not model (remote
// shorthands, import filters, groups) stay on the node tree and are written
// back unchanged.
type Entry struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url,omitempty"`
	Remote   string `yaml:"remote,omitempty"`
	Revision string `yaml:"revision,omitempty"`
	Path     string `yaml:"path,omitempty"`
}

// CheckoutPath returns the entry's path relative to the west staging dir.
// West defaults a project's path to its name.
func (e *Entry) CheckoutPath() string {
	if e.Path != "" {
		return e.Path
	}
	return e.Name
}

// Synchronizer materializes on-disk module trees to match the manifest.
// Sync with no module names updates the whole workspace.
type Synchronizer interface {
	Sync(ctx context.Context, modules ...string) error
}

// UsageFunc reports hardware identifiers that would become unavailable if
// the given module were removed. Wired by the caller so this package does
// not depend on the catalog scanner.
type UsageFunc func(e Entry) []string

// DefaultBranchFunc returns the default branch of a remote repository.
type DefaultBranchFunc func(ctx context.Context, url string) (string, error)

// Manager reads and edits the west manifest.
type Manager struct {
	path          string
	sync          Synchronizer
	usage         UsageFunc
	defaultBranch DefaultBranchFunc
	protected     []string
	log           *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithUsageReporter wires the hardware-usage check performed before Remove.
func WithUsageReporter(f UsageFunc) Option {
	return func(m *Manager) { m.usage = f }
}

// WithDefaultBranch wires remote default-branch discovery used by Add when
// no revision is given.
func WithDefaultBranch(f DefaultBranchFunc) Option {
	return func(m *Manager) { m.defaultBranch = f }
}

// WithProtected names modules Remove must refuse to touch, such as the
// firmware repository every build depends on.
func WithProtected(names ...string) Option {
	return func(m *Manager) { m.protected = append(m.protected, names...) }
}

// WithLogger replaces the manager's logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a manifest manager for the given west.yml path.
func NewManager(path string, sync Synchronizer, opts ...Option) *Manager {
	m := &Manager{path: path, sync: sync, log: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Path returns the manifest file path.
func (m *Manager) Path() string {
	return m.path
}

// List returns all manifest entries in file order.
func (m *Manager) List() ([]Entry, error) {
	doc, err := yamldoc.Load(m.path)
	if err != nil {
		return nil, err
	}
	return decodeEntries(doc)
}

// AddRequest describes a module to add.
type AddRequest struct {
	// Location is a Git URL or a GitHub "owner/repo" shorthand.
	Location string

	// Revision is the branch, tag, or commit to track. When empty the
	// remote's default branch is used if discoverable, else "main".
	Revision string

	// Name overrides the name derived from the URL's last path segment.
	Name string
}

// Add appends a module to the manifest, persists it, and synchronizes the
// workspace. If synchronization fails the manifest file is restored
// byte-identical to its pre-call state, so the manifest never references a
// module that was not materialized.
func (m *Manager) Add(ctx context.Context, req AddRequest) (*Entry, error) {
	fetchURL, err := CanonicalURL(req.Location)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = NameFromURL(fetchURL)
	}

	doc, err := yamldoc.Load(m.path)
	if err != nil {
		return nil, err
	}
	entries, err := decodeEntries(doc)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name, name) {
			return nil, &DuplicateModuleError{Field: "name", Value: name}
		}
		if e.URL != "" && canonicalEqual(e.URL, fetchURL) {
			return nil, &DuplicateModuleError{Field: "url", Value: fetchURL}
		}
	}

	revision := req.Revision
	if revision == "" {
		revision = m.discoverDefaultBranch(ctx, fetchURL)
	}

	entry := Entry{
		Name:     name,
		URL:      fetchURL,
		Revision: revision,
		Path:     "modules/" + name,
	}

	snapshot := doc.Raw()
	existed := doc.Existed()
	if err := appendEntry(doc, entry); err != nil {
		return nil, err
	}
	if err := doc.Save(); err != nil {
		return nil, err
	}

	if err := m.sync.Sync(ctx, name); err != nil {
		m.rollback(snapshot, existed)
		return nil, fmt.Errorf("synchronize module %q: %w", name, err)
	}

	return &entry, nil
}

// Remove deletes the entry matching identifier (name or URL), persists the
// manifest, re-synchronizes, and deletes the module's checkout directory.
// The returned warnings name hardware that only this module provided; they
// never block the removal.
//
// modulesDir is the west staging directory; pass "" to skip checkout cleanup.
func (m *Manager) Remove(ctx context.Context, identifier, modulesDir string) (*Entry, []string, error) {
	doc, err := yamldoc.Load(m.path)
	if err != nil {
		return nil, nil, err
	}
	entries, err := decodeEntries(doc)
	if err != nil {
		return nil, nil, err
	}

	idx := -1
	for i, e := range entries {
		if strings.EqualFold(e.Name, identifier) || (e.URL != "" && canonicalEqual(e.URL, identifier)) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, &NotFoundError{Identifier: identifier}
	}
	entry := entries[idx]

	for _, name := range m.protected {
		if strings.EqualFold(entry.Name, name) {
			return nil, nil, &ProtectedModuleError{Name: entry.Name}
		}
	}

	// Read-before-write: the usage check scans the catalog while the module
	// is still on disk and in the manifest.
	var warnings []string
	if m.usage != nil {
		for _, id := range m.usage(entry) {
			warnings = append(warnings, fmt.Sprintf("hardware %q is only provided by module %q", id, entry.Name))
		}
	}

	projects := projectsSeq(doc)
	yamldoc.RemoveSeqIndex(projects, idx)
	if err := doc.Save(); err != nil {
		return nil, nil, err
	}

	if err := m.sync.Sync(ctx); err != nil {
		return nil, nil, fmt.Errorf("synchronize after removing %q: %w", entry.Name, err)
	}

	if modulesDir != "" {
		checkout := filepath.Join(modulesDir, filepath.FromSlash(entry.CheckoutPath()))
		if err := os.RemoveAll(checkout); err != nil {
			m.log.Warn("could not delete module checkout", "path", checkout, "error", err)
		}
	}

	return &entry, warnings, nil
}

// Pin rewrites the named module's revision in place and re-synchronizes.
// On sync failure the manifest is restored byte-identical, making the switch
// all-or-nothing for the caller.
func (m *Manager) Pin(ctx context.Context, name, revision string) (*Entry, error) {
	doc, err := yamldoc.Load(m.path)
	if err != nil {
		return nil, err
	}
	entries, err := decodeEntries(doc)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, e := range entries {
		if strings.EqualFold(e.Name, name) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &NotFoundError{Identifier: name}
	}

	projects := projectsSeq(doc)
	item := projects.Content[idx]
	snapshot := doc.Raw()

	yamldoc.SetMapScalar(item, "revision", revision)
	if err := doc.Save(); err != nil {
		return nil, err
	}

	if err := m.sync.Sync(ctx, entries[idx].Name); err != nil {
		m.rollback(snapshot, true)
		return nil, fmt.Errorf("synchronize module %q: %w", name, err)
	}

	entry := entries[idx]
	entry.Revision = revision
	return &entry, nil
}

// rollback restores the manifest to its pre-edit state. A manifest that did
// not exist before the edit is deleted, not rewritten as an empty file.
func (m *Manager) rollback(snapshot []byte, existed bool) {
	var err error
	if existed {
		err = yamldoc.AtomicWrite(m.path, snapshot)
	} else {
		err = os.Remove(m.path)
	}
	if err != nil {
		m.log.Error("manifest rollback failed", "path", m.path, "error", err)
	}
}

func (m *Manager) discoverDefaultBranch(ctx context.Context, fetchURL string) string {
	if m.defaultBranch != nil {
		if branch, err := m.defaultBranch(ctx, fetchURL); err == nil && branch != "" {
			return branch
		}
	}
	return "main"
}

// shorthandPattern matches GitHub "owner/repo" module locations.
var shorthandPattern = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)

// CanonicalURL normalizes a module location into a fetch URL. A bare
// "owner/repo" becomes a GitHub HTTPS URL; anything else must already parse
// as a URL with a scheme or an scp-style Git address.
func CanonicalURL(location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", fmt.Errorf("%w: empty location", ErrBadLocation)
	}

	if shorthandPattern.MatchString(location) {
		return "https://github.com/" + location, nil
	}

	// scp-style: git@host:owner/repo.git
	if strings.Contains(location, "@") && strings.Contains(location, ":") && !strings.Contains(location, "://") {
		return location, nil
	}

	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrBadLocation, location)
	}
	return strings.TrimSuffix(u.String(), "/"), nil
}

// NameFromURL derives a module name from the last path segment of its URL.
func NameFromURL(fetchURL string) string {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(fetchURL, "/"), ".git")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

func canonicalEqual(a, b string) bool {
	norm := func(s string) string {
		return strings.ToLower(strings.TrimSuffix(strings.TrimSuffix(s, "/"), ".git"))
	}
	return norm(a) == norm(b)
}

// projectsSeq returns the manifest.projects sequence node, creating the
// surrounding structure if needed.
func projectsSeq(doc *yamldoc.Doc) *yaml.Node {
	root := doc.Root()
	man := yamldoc.EnsureMap(root, "manifest")
	return yamldoc.EnsureSeq(man, "projects")
}

func decodeEntries(doc *yamldoc.Doc) ([]Entry, error) {
	if !doc.Existed() {
		return nil, nil
	}
	seq := yamldoc.MapEntry(yamldoc.MapEntry(doc.Root(), "manifest"), "projects")
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil, nil
	}

	entries := make([]Entry, 0, len(seq.Content))
	for _, item := range seq.Content {
		var e Entry
		if err := item.Decode(&e); err != nil {
			return nil, fmt.Errorf("parse manifest project: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func appendEntry(doc *yamldoc.Doc, e Entry) error {
	var node yaml.Node
	if err := node.Encode(e); err != nil {
		return fmt.Errorf("encode manifest project: %w", err)
	}
	projects := projectsSeq(doc)
	projects.Content = append(projects.Content, &node)
	return nil
}

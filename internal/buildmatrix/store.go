package buildmatrix

import (
	"strings"

	"github.com/zmk-tools/zmk-cli/internal/hardware"
)

// CatalogFunc produces a fresh hardware catalog. The store re-scans for
// every validation instead of caching, so edits to the module workspace
// between commands are always observed.
type CatalogFunc func() (*hardware.Catalog, error)

// SplitPolicy controls validation of split keyboards, which the build
// pipeline expects as one matrix entry per half. The exact rule is owned by
// the external build consumer, so it is policy rather than hard-coded.
type SplitPolicy struct {
	// RequireAllParts rejects adds that would leave some halves of a split
	// keyboard out of the matrix.
	RequireAllParts bool
}

// DefaultSplitPolicy requires every half of a split keyboard.
func DefaultSplitPolicy() SplitPolicy {
	return SplitPolicy{RequireAllParts: true}
}

// Store reads and edits the build matrix with referential validation
// against the hardware catalog. The file is loaded fully on every call; it
// is small by construction.
type Store struct {
	path    string
	catalog CatalogFunc
	policy  SplitPolicy
}

// NewStore creates a build matrix store for the given build.yaml path.
func NewStore(path string, catalog CatalogFunc) *Store {
	return &Store{path: path, catalog: catalog, policy: DefaultSplitPolicy()}
}

// SetSplitPolicy replaces the split keyboard validation policy.
func (s *Store) SetSplitPolicy(p SplitPolicy) {
	s.policy = p
}

// Path returns the build matrix file path.
func (s *Store) Path() string {
	return s.path
}

// Targets returns the build matrix in file order, which is the build order
// the external pipeline consumes.
func (s *Store) Targets() ([]Target, error) {
	f, err := loadMatrix(s.path)
	if err != nil {
		return nil, err
	}
	return f.targets()
}

// AddRequest describes hardware to add to the matrix. Either Board or
// Shield may be empty, but not both.
type AddRequest struct {
	Board        string
	Shield       string
	Snippet      string
	CMakeArgs    string
	ArtifactName string
}

// AddTarget validates the request against a fresh catalog scan and appends
// the resulting entries. A split keyboard expands to one entry per half.
// Validation runs entirely before the file is touched, so a failed add
// never partially mutates build.yaml.
//
// Returns the entries actually appended.
func (s *Store) AddTarget(req AddRequest) ([]Target, error) {
	if req.Board == "" && req.Shield == "" {
		return nil, ErrEmptyTarget
	}

	f, err := loadMatrix(s.path)
	if err != nil {
		return nil, err
	}
	existing, err := f.targets()
	if err != nil {
		return nil, err
	}

	cat, err := s.catalog()
	if err != nil {
		return nil, err
	}

	candidates, err := s.expand(req, cat)
	if err != nil {
		return nil, err
	}

	added := make([]Target, 0, len(candidates))
	for _, t := range candidates {
		if containsTarget(existing, t) || containsTarget(added, t) {
			continue
		}
		added = append(added, t)
	}
	if len(added) == 0 {
		return nil, ErrDuplicateTarget
	}

	if s.policy.RequireAllParts {
		if err := checkSplitComplete(req.Shield, cat, append(existing, added...)); err != nil {
			return nil, err
		}
	}

	if err := f.append(added); err != nil {
		return nil, err
	}
	if err := f.save(); err != nil {
		return nil, err
	}
	return added, nil
}

// expand resolves the request against the catalog and produces the concrete
// target tuples: the cross product of board siblings and shield siblings,
// mirroring how split hardware is declared.
func (s *Store) expand(req AddRequest, cat *hardware.Catalog) ([]Target, error) {
	var board, shield *hardware.Hardware

	if req.Board != "" {
		b, ok := cat.Board(req.Board)
		if !ok {
			return nil, &UnknownHardwareError{Kind: "board", ID: req.Board}
		}
		board = b
	}
	if req.Shield != "" {
		sh, ok := cat.Shield(req.Shield)
		if !ok {
			return nil, &UnknownHardwareError{Kind: "shield", ID: req.Shield}
		}
		shield = sh
	}

	if shield != nil && shield.RequiresController() {
		if board == nil {
			return nil, ErrMissingControllerBoard
		}
		if !hardware.Compatible(shield, board) {
			return nil, ErrMissingControllerBoard
		}
	}

	boards := []string{""}
	if board != nil {
		boards = expandSiblings(board, req.Board)
	}
	shields := []string{""}
	if shield != nil {
		shields = expandSiblings(shield, req.Shield)
	}

	var targets []Target
	for _, b := range boards {
		for _, sh := range shields {
			targets = append(targets, Target{
				Board:        b,
				Shield:       sh,
				Snippet:      req.Snippet,
				CMakeArgs:    req.CMakeArgs,
				ArtifactName: req.ArtifactName,
			})
		}
	}
	return targets, nil
}

// expandSiblings returns the IDs a request resolves to. Asking for the
// parent of a split set yields every sibling; asking for a specific half
// yields just that half.
func expandSiblings(h *hardware.Hardware, requested string) []string {
	if len(h.Siblings) == 0 {
		return []string{h.ID}
	}
	if !strings.EqualFold(requested, h.ID) {
		for _, sib := range h.Siblings {
			if strings.EqualFold(sib, requested) {
				return []string{sib}
			}
		}
	}
	return append([]string(nil), h.Siblings...)
}

// checkSplitComplete verifies that, after the add, every half of the
// requested shield's sibling group appears in the matrix.
func checkSplitComplete(requestedShield string, cat *hardware.Catalog, all []Target) error {
	if requestedShield == "" {
		return nil
	}
	shield, ok := cat.Shield(requestedShield)
	if !ok || len(shield.Siblings) == 0 {
		return nil
	}

	var missing []string
	for _, sib := range shield.Siblings {
		found := false
		for _, t := range all {
			if strings.EqualFold(t.Shield, sib) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, sib)
		}
	}
	if len(missing) > 0 {
		return &SplitPairError{Shield: shield.ID, Missing: missing}
	}
	return nil
}

// Selector matches build matrix entries for removal. Empty fields match
// anything; at least one of Board/Shield must be set.
type Selector struct {
	Board  string
	Shield string

	// All permits removing every match. Without it a multi-target match is
	// reported as ambiguous and nothing is removed.
	All bool
}

// Matches reports whether the selector matches the given target.
func (sel Selector) Matches(t Target) bool {
	if sel.Board != "" && !strings.EqualFold(sel.Board, t.Board) {
		return false
	}
	if sel.Shield != "" && !shieldMatches(sel.Shield, t.Shield) {
		return false
	}
	return true
}

// shieldMatches treats a split half like corne_left as matched by "corne".
func shieldMatches(want, have string) bool {
	if strings.EqualFold(want, have) {
		return true
	}
	return strings.HasPrefix(strings.ToLower(have), strings.ToLower(want)+"_")
}

// RemoveTargets removes the entries matched by the selector, preserving the
// order of everything else. If the selector matches more than one entry and
// All is not set, nothing is removed and an *AmbiguousSelectorError carries
// the candidates back to the caller for disambiguation.
//
// Returns the removed entries; an empty result with nil error means nothing
// matched.
func (s *Store) RemoveTargets(sel Selector) ([]Target, error) {
	if sel.Board == "" && sel.Shield == "" {
		return nil, ErrEmptyTarget
	}

	f, err := loadMatrix(s.path)
	if err != nil {
		return nil, err
	}
	targets, err := f.targets()
	if err != nil {
		return nil, err
	}

	var indexes []int
	var matched []Target
	for i, t := range targets {
		if sel.Matches(t) {
			indexes = append(indexes, i)
			matched = append(matched, t)
		}
	}

	if len(matched) == 0 {
		return nil, nil
	}
	if len(matched) > 1 && !sel.All {
		return nil, &AmbiguousSelectorError{Selector: sel, Candidates: matched}
	}

	f.removeIndexes(indexes)
	if err := f.save(); err != nil {
		return nil, err
	}
	return matched, nil
}

func containsTarget(targets []Target, t Target) bool {
	for _, have := range targets {
		if have.Equal(t) {
			return true
		}
	}
	return false
}

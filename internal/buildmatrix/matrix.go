package buildmatrix

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/zmk-tools/zmk-cli/internal/yamldoc"
)

// Target is one entry in the build matrix. Keys use the hyphenated spelling
// the build pipeline expects.
type Target struct {
	Board        string `yaml:"board,omitempty"`
	Shield       string `yaml:"shield,omitempty"`
	Snippet      string `yaml:"snippet,omitempty"`
	CMakeArgs    string `yaml:"cmake-args,omitempty"`
	ArtifactName string `yaml:"artifact-name,omitempty"`
}

// Equal reports whether two targets are the same exact tuple.
func (t Target) Equal(other Target) bool {
	return t == other
}

// String renders the target for error messages and logs.
func (t Target) String() string {
	s := t.Board
	if t.Shield != "" {
		s += " + " + t.Shield
	}
	if t.Snippet != "" {
		s += " (snippet: " + t.Snippet + ")"
	}
	return s
}

// matrixFile is the node-tree view of build.yaml. Decoding targets reads
// only the fields we model; the nodes themselves keep everything else.
type matrixFile struct {
	doc *yamldoc.Doc
}

func loadMatrix(path string) (*matrixFile, error) {
	doc, err := yamldoc.Load(path)
	if err != nil {
		return nil, err
	}
	return &matrixFile{doc: doc}, nil
}

// includeSeq returns the include sequence node, or nil if absent.
func (f *matrixFile) includeSeq() *yaml.Node {
	if !f.doc.Existed() {
		return nil
	}
	seq := yamldoc.MapEntry(f.doc.Root(), "include")
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	return seq
}

func (f *matrixFile) targets() ([]Target, error) {
	seq := f.includeSeq()
	if seq == nil {
		return nil, nil
	}

	targets := make([]Target, 0, len(seq.Content))
	for _, item := range seq.Content {
		var t Target
		if err := item.Decode(&t); err != nil {
			return nil, fmt.Errorf("parse build matrix entry: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func (f *matrixFile) append(targets []Target) error {
	seq := yamldoc.EnsureSeq(f.doc.Root(), "include")
	for _, t := range targets {
		var node yaml.Node
		if err := node.Encode(t); err != nil {
			return fmt.Errorf("encode build matrix entry: %w", err)
		}
		seq.Content = append(seq.Content, &node)
	}
	return nil
}

// removeIndexes deletes the given entry indexes. Indexes must be sorted
// ascending; removal walks backward so earlier indexes stay valid.
func (f *matrixFile) removeIndexes(indexes []int) {
	seq := f.includeSeq()
	for i := len(indexes) - 1; i >= 0; i-- {
		yamldoc.RemoveSeqIndex(seq, indexes[i])
	}
}

func (f *matrixFile) save() error {
	return f.doc.Save()
}

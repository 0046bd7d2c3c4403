// Package yamldoc provides node-tree editing for the YAML files the CLI
// persists. Files are loaded as yaml.Node trees and mutated in place, so
// comments and any fields this tool does not understand survive a rewrite
// verbatim. The external build pipeline owns these schemas; we only edit the
// parts we know about.
package yamldoc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Doc is a YAML document bound to a file path.
type Doc struct {
	path    string
	root    *yaml.Node // document node, nil for a missing/empty file
	existed bool
	raw     []byte
}

// Load reads the file at path into a node tree. A missing file yields an
// empty document that Save will create.
func Load(path string) (*Doc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Doc{path: path}, nil
		}
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	d := &Doc{path: path, existed: true, raw: data}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if root.Kind != 0 {
		d.root = &root
	}
	return d, nil
}

// Path returns the file path the document is bound to.
func (d *Doc) Path() string {
	return d.path
}

// Existed reports whether the file was present when the document was loaded.
func (d *Doc) Existed() bool {
	return d.existed
}

// Raw returns the file contents as loaded, for byte-exact rollback.
func (d *Doc) Raw() []byte {
	return d.raw
}

// Root returns the document's top-level mapping node, creating an empty one
// for a new document.
func (d *Doc) Root() *yaml.Node {
	if d.root == nil {
		d.root = &yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	if len(d.root.Content) == 0 {
		d.root.Content = append(d.root.Content, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"})
	}
	return d.root.Content[0]
}

// Bytes marshals the document with 2-space indentation.
func (d *Doc) Bytes() ([]byte, error) {
	if d.root == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", filepath.Base(d.path), err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal %s: %w", filepath.Base(d.path), err)
	}
	return buf.Bytes(), nil
}

// Save writes the document back to its file atomically.
func (d *Doc) Save() error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	return AtomicWrite(d.path, data)
}

// MapEntry returns the value node for key in mapping node m, or nil.
func MapEntry(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// EnsureSeq returns the sequence node for key in mapping node m, adding an
// empty sequence if the key is absent.
func EnsureSeq(m *yaml.Node, key string) *yaml.Node {
	if v := MapEntry(m, key); v != nil {
		return v
	}
	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	v := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	m.Content = append(m.Content, k, v)
	return v
}

// EnsureMap returns the mapping node for key in mapping node m, adding an
// empty mapping if the key is absent.
func EnsureMap(m *yaml.Node, key string) *yaml.Node {
	if v := MapEntry(m, key); v != nil {
		return v
	}
	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	v := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	m.Content = append(m.Content, k, v)
	return v
}

// RemoveSeqIndex removes the i-th element from sequence node seq.
func RemoveSeqIndex(seq *yaml.Node, i int) {
	if seq == nil || seq.Kind != yaml.SequenceNode || i < 0 || i >= len(seq.Content) {
		return
	}
	seq.Content = append(seq.Content[:i], seq.Content[i+1:]...)
}

// SetMapScalar sets key to a string scalar in mapping node m, replacing an
// existing value node or appending a new pair.
func SetMapScalar(m *yaml.Node, key, value string) {
	scalar := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = scalar
			return
		}
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		scalar)
}

// AtomicWrite writes data to path using a temp file + rename so an
// interrupted write never leaves a partially written file behind.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".zmk-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() // cleanup on error path

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	return os.Rename(tmpName, path)
}

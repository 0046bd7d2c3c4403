package yamldoc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestLoad(t *testing.T) {
	t.Run("missing_file_yields_empty_doc", func(t *testing.T) {
		doc, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if doc.Existed() {
			t.Error("Existed() = true for missing file")
		}
		if doc.Raw() != nil {
			t.Errorf("Raw() = %q, want nil", doc.Raw())
		}
	})

	t.Run("invalid_yaml_fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yml")
		if err := os.WriteFile(path, []byte("a: [unclosed"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestSavePreservesUnknownContent(t *testing.T) {
	const src = `# top comment
manifest:
  defaults:
    remote: zmkfirmware
  projects:
    - name: zmk
      remote: zmkfirmware
      import: app/west.yml
      groups:
        - core
  self:
    path: config
`
	path := filepath.Join(t.TempDir(), "west.yml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	// Append a projects entry, touching nothing else.
	man := MapEntry(doc.Root(), "manifest")
	projects := MapEntry(man, "projects")
	var node yaml.Node
	if err := node.Encode(map[string]string{"name": "extra"}); err != nil {
		t.Fatal(err)
	}
	projects.Content = append(projects.Content, &node)

	if err := doc.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"# top comment",
		"remote: zmkfirmware",
		"import: app/west.yml",
		"- core",
		"path: config",
		"name: extra",
	} {
		if !strings.Contains(string(out), want) {
			t.Errorf("saved file missing %q:\n%s", want, out)
		}
	}
}

func TestRootCreatesMapping(t *testing.T) {
	doc, err := Load(filepath.Join(t.TempDir(), "new.yml"))
	if err != nil {
		t.Fatal(err)
	}

	root := doc.Root()
	if root.Kind != yaml.MappingNode {
		t.Fatalf("Root() kind = %v, want mapping", root.Kind)
	}

	seq := EnsureSeq(root, "include")
	if seq.Kind != yaml.SequenceNode {
		t.Fatalf("EnsureSeq kind = %v, want sequence", seq.Kind)
	}
	if again := EnsureSeq(root, "include"); again != seq {
		t.Error("EnsureSeq created a second node for the same key")
	}
}

func TestSetMapScalar(t *testing.T) {
	doc, err := Load(filepath.Join(t.TempDir(), "new.yml"))
	if err != nil {
		t.Fatal(err)
	}
	root := doc.Root()

	SetMapScalar(root, "revision", "main")
	SetMapScalar(root, "revision", "v1.2")

	v := MapEntry(root, "revision")
	if v == nil || v.Value != "v1.2" {
		t.Fatalf("revision = %v, want v1.2", v)
	}
	if len(root.Content) != 2 {
		t.Errorf("mapping has %d nodes, want 2 (one key/value pair)", len(root.Content))
	}
}

func TestRemoveSeqIndex(t *testing.T) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, v := range []string{"a", "b", "c"} {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: v})
	}

	RemoveSeqIndex(seq, 1)
	if len(seq.Content) != 2 || seq.Content[0].Value != "a" || seq.Content[1].Value != "c" {
		t.Errorf("after remove: %v", seq.Content)
	}

	// Out-of-range indexes are ignored.
	RemoveSeqIndex(seq, 5)
	RemoveSeqIndex(nil, 0)
	if len(seq.Content) != 2 {
		t.Errorf("out-of-range remove changed the sequence")
	}
}

func TestAtomicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yml")

	if err := AtomicWrite(path, []byte("first\n")); err != nil {
		t.Fatalf("AtomicWrite error: %v", err)
	}
	if err := AtomicWrite(path, []byte("second\n")); err != nil {
		t.Fatalf("AtomicWrite overwrite error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second\n" {
		t.Errorf("content = %q, want %q", data, "second\n")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

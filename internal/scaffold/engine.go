package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates
var templatesFS embed.FS

// File is one rendered output file, with a path relative to the hardware
// definition directory.
type File struct {
	Path    string
	Content []byte
}

// fileSpec declares one output file of a set: a path template and the
// ordered blocks concatenated into it.
type fileSpec struct {
	Path   string   `yaml:"path"`
	Blocks []string `yaml:"blocks"`
}

// set is one template set as declared in a set.yaml file.
type set struct {
	Name    string            `yaml:"name"`
	Extends string            `yaml:"extends"`
	Files   []fileSpec        `yaml:"files"`
	Blocks  map[string]string `yaml:"blocks"`

	// Abstract sets exist only to be extended and are hidden from Sets().
	Abstract bool `yaml:"abstract"`
}

// Engine renders hardware definitions from a read-only arena of template
// sets linked by explicit extends edges.
type Engine struct {
	sets map[string]*set
}

// NewEngine loads every set.yaml under the given filesystem.
func NewEngine(fsys fs.FS) (*Engine, error) {
	e := &Engine{sets: make(map[string]*set)}

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != "set.yaml" {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read template set %s: %w", path, err)
		}
		var s set
		if err := yaml.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("parse template set %s: %w", path, err)
		}
		if s.Name == "" {
			return fmt.Errorf("template set %s: missing name", path)
		}
		e.sets[s.Name] = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Default returns the engine over the template sets bundled with the tool.
func Default() (*Engine, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	return NewEngine(sub)
}

// Sets returns the names of all renderable (non-abstract) sets, sorted.
func (e *Engine) Sets() []string {
	var names []string
	for name, s := range e.sets {
		if s.Abstract {
			continue
		}
		if chain, err := e.chain(name); err == nil && len(files(chain)) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// chain resolves the inheritance chain child-first, failing on unknown
// parents and on cycles. Cycle detection runs before any rendering so a
// cyclic set never produces partial output.
func (e *Engine) chain(setName string) ([]*set, error) {
	var chain []*set
	seen := make(map[string]bool)

	for name := setName; name != ""; {
		if seen[name] {
			names := make([]string, 0, len(chain)+1)
			for _, s := range chain {
				names = append(names, s.Name)
			}
			return nil, &CycleError{Chain: append(names, name)}
		}
		seen[name] = true

		s, ok := e.sets[name]
		if !ok {
			if len(chain) == 0 {
				return nil, fmt.Errorf("%w: %q", ErrSetNotFound, name)
			}
			return nil, fmt.Errorf("%w: %q (parent of %q)", ErrSetNotFound, name, chain[len(chain)-1].Name)
		}
		chain = append(chain, s)
		name = s.Extends
	}
	return chain, nil
}

// lookupBlock finds the nearest definition of a block along the chain:
// a child's definition overrides its ancestors'.
func lookupBlock(chain []*set, name string) (string, bool) {
	for _, s := range chain {
		if body, ok := s.Blocks[name]; ok {
			return body, true
		}
	}
	return "", false
}

// files returns the effective file list: the nearest set in the chain that
// declares files.
func files(chain []*set) []fileSpec {
	for _, s := range chain {
		if len(s.Files) > 0 {
			return s.Files
		}
	}
	return nil
}

// Render materializes the named set with the given parameters. It resolves
// the inheritance chain, substitutes parameters into every referenced block,
// and concatenates blocks in declared order into each output file. Nothing
// is written to disk.
func (e *Engine) Render(setName string, p Params) ([]File, error) {
	p, err := p.normalized()
	if err != nil {
		return nil, err
	}

	chain, err := e.chain(setName)
	if err != nil {
		return nil, err
	}

	specs := files(chain)
	if len(specs) == 0 {
		return nil, fmt.Errorf("template set %q declares no files", setName)
	}

	data := p.data()
	out := make([]File, 0, len(specs))
	for _, spec := range specs {
		path, err := render(spec.Path, data)
		if err != nil {
			return nil, fmt.Errorf("file name %q: %w", spec.Path, err)
		}

		var parts []string
		for _, blockName := range spec.Blocks {
			body, ok := lookupBlock(chain, blockName)
			if !ok {
				return nil, fmt.Errorf("%w: %q (file %q of set %q)", ErrMissingBlock, blockName, spec.Path, setName)
			}
			rendered, err := render(body, data)
			if err != nil {
				return nil, fmt.Errorf("block %q: %w", blockName, err)
			}
			parts = append(parts, rendered)
		}

		content := strings.TrimSpace(strings.Join(parts, "\n")) + "\n"
		out = append(out, File{Path: path, Content: []byte(content)})
	}

	return out, nil
}

// render executes one fragment in strict mode: a reference to a parameter
// that is absent from data fails with ErrMissingParameter.
func render(text string, data map[string]string) (string, error) {
	tmpl, err := template.New("block").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingParameter, err)
	}
	return buf.String(), nil
}

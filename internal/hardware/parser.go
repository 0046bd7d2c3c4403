package hardware

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zmk-tools/zmk-cli/internal/defs"
)

// metadataParser parses one dialect of hardware metadata file. Parsers are
// selected by file name, not by sniffing content.
type metadataParser interface {
	// Matches reports whether this parser handles the named file.
	Matches(name string) bool

	// Parse decodes the file contents into a Hardware definition.
	Parse(path string, data []byte) (*Hardware, error)
}

// parsers is the dispatch table, tried in order. Currently the only dialect
// is the *.zmk.yml metadata file.
var parsers = []metadataParser{
	zmkYAMLParser{},
}

// parserFor returns the parser handling the named file, if any.
func parserFor(name string) (metadataParser, bool) {
	for _, p := range parsers {
		if p.Matches(name) {
			return p, true
		}
	}
	return nil, false
}

// zmkYAMLParser parses *.zmk.yml metadata files.
type zmkYAMLParser struct{}

func (zmkYAMLParser) Matches(name string) bool {
	return strings.HasSuffix(name, defs.HardwareMetaSuffix)
}

func (zmkYAMLParser) Parse(path string, data []byte) (*Hardware, error) {
	var h Hardware
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parse hardware metadata: %w", err)
	}

	switch h.Kind {
	case KindBoard, KindShield, KindInterconnect:
	case "":
		return nil, fmt.Errorf("hardware metadata %s: missing type", path)
	default:
		return nil, fmt.Errorf("hardware metadata %s: unknown type %q", path, h.Kind)
	}
	if h.ID == "" {
		return nil, fmt.Errorf("hardware metadata %s: missing id", path)
	}
	return &h, nil
}

package scaffold

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxShortNameLength is the longest display name the firmware will show on
// small screens.
const MaxShortNameLength = 16

// idPattern matches devicetree-safe hardware identifiers.
var idPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Params are the values substituted into template blocks.
type Params struct {
	// ID is the board/shield identifier. Lowercase letters, digits, and
	// underscores; must not start with a digit.
	ID string

	// Name is the human-readable keyboard name. Defaults from ID.
	Name string

	// ShortName is an abbreviated name (<= MaxShortNameLength characters).
	// Defaults from Name.
	ShortName string

	// KeyboardType is "board" or "shield".
	KeyboardType string

	// Arch is the board architecture, e.g. "arm". Boards only.
	Arch string

	// GPIO is the default GPIO node label, e.g. "&gpio0".
	GPIO string

	// Interconnect is the interconnect ID a shield attaches to.
	Interconnect string
}

var titleCaser = cases.Title(language.English)

// normalized fills defaults and validates the identifier.
func (p Params) normalized() (Params, error) {
	if !idPattern.MatchString(p.ID) {
		return p, fmt.Errorf("%w: %q (use lowercase letters, digits, and underscores; must not start with a digit)", ErrInvalidID, p.ID)
	}

	if p.Name == "" {
		p.Name = titleCaser.String(strings.ReplaceAll(p.ID, "_", " "))
	}
	if p.ShortName == "" {
		p.ShortName = p.Name
	}
	if len(p.ShortName) > MaxShortNameLength {
		p.ShortName = p.ShortName[:MaxShortNameLength]
	}
	if p.GPIO == "" {
		p.GPIO = "&gpio0"
	}
	return p, nil
}

// data produces the template substitution map. Derived values such as the
// companion pinctrl file name are computed here so blocks can cross-reference
// sibling files.
func (p Params) data() map[string]string {
	return map[string]string{
		"ID":           p.ID,
		"IDUpper":      strings.ToUpper(p.ID),
		"Name":         p.Name,
		"ShortName":    p.ShortName,
		"KeyboardType": p.KeyboardType,
		"Arch":         p.Arch,
		"GPIO":         p.GPIO,
		"Interconnect": p.Interconnect,
		"PinctrlFile":  p.ID + "-pinctrl.dtsi",
	}
}

// DestDir returns the conventional destination for the rendered files,
// relative to the repo's board root.
func DestDir(p Params) string {
	if p.KeyboardType == "shield" {
		return "shields/" + p.ID
	}
	arch := p.Arch
	if arch == "" {
		arch = "arm"
	}
	return arch + "/" + p.ID
}

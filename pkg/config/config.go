// Package config describes how records are presented and laid out.
//
// A [Template] names the data properties that carry the key and the parent
// reference, the attributes bound to each part of a node card, the order in
// which the side panel lists fields, and the tree layout parameters. It is
// loaded from a TOML file:
//
//	parent_property = "boss"
//	flag_url = "https://www.nwoods.com/images/emojiflags/{nation}.png"
//	inspector = ["name", "title", "nation", "headOf"]
//
//	[layout]
//	angle = 90
//	layer_spacing = 80
//	last_parents = true
//
// Keys absent from the file keep their [Default] values.
package config

import (
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/orgchart/pkg/errors"
)

// DefaultFileName is the configuration file looked up in the working
// directory when no path is given.
const DefaultFileName = "orgchart.toml"

// nationPlaceholder is replaced by the nation attribute in FlagURL.
const nationPlaceholder = "{nation}"

// Bindings maps node card parts to record attributes.
type Bindings struct {
	Name   string `toml:"name"`    // card heading
	Title  string `toml:"title"`   // second line, hidden when absent
	HeadOf string `toml:"head_of"` // "Head of: X" line in the info panel
	Nation string `toml:"nation"`  // flag picture
}

// Layout holds tree layout parameters. Angles are in degrees: 90 grows the
// tree downwards, 0 to the right.
type Layout struct {
	Angle        int     `toml:"angle"`
	LayerSpacing float64 `toml:"layer_spacing"`
	NodeSpacing  float64 `toml:"node_spacing"`

	// LastParents lays out the children of parents whose children are all
	// leaves using the alternate parameters below.
	LastParents           bool    `toml:"last_parents"`
	AlternateAngle        int     `toml:"alternate_angle"`
	AlternateLayerSpacing float64 `toml:"alternate_layer_spacing"`
	AlternateNodeSpacing  float64 `toml:"alternate_node_spacing"`
}

// Template is the presentation configuration shared by the rendering surface
// and the side panel.
type Template struct {
	KeyProperty    string   `toml:"key_property"`
	ParentProperty string   `toml:"parent_property"`
	FlagURL        string   `toml:"flag_url"`
	Inspector      []string `toml:"inspector"`
	Bindings       Bindings `toml:"bindings"`
	Layout         Layout   `toml:"layout"`
}

// Default returns the template of the classic org chart: parents referenced
// through "boss", a top-down tree whose last parents list their reports
// vertically, and emoji flags for nations.
func Default() *Template {
	return &Template{
		KeyProperty:    "key",
		ParentProperty: "boss",
		FlagURL:        "https://www.nwoods.com/images/emojiflags/" + nationPlaceholder + ".png",
		Inspector:      []string{"name", "title", "nation", "headOf"},
		Bindings: Bindings{
			Name:   "name",
			Title:  "title",
			HeadOf: "headOf",
			Nation: "nation",
		},
		Layout: Layout{
			Angle:                 90,
			LayerSpacing:          80,
			NodeSpacing:           20,
			LastParents:           true,
			AlternateAngle:        0,
			AlternateLayerSpacing: 40,
			AlternateNodeSpacing:  15,
		},
	}
}

// Load reads a TOML template from path on top of [Default]. Unknown keys are
// rejected so that typos do not pass silently.
func Load(path string) (*Template, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	t, err := Parse(string(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return t, nil
}

// LoadOrDefault loads path if it is non-empty. With an empty path it loads
// DefaultFileName when that file exists and returns [Default] otherwise.
func LoadOrDefault(path string) (*Template, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFileName); err == nil {
		return Load(DefaultFileName)
	}
	return Default(), nil
}

// Parse decodes a TOML document on top of [Default] and validates the result.
func Parse(doc string) (*Template, error) {
	t := Default()
	md, err := toml.Decode(doc, t)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks property names, layout angles, and spacings.
func (t *Template) Validate() error {
	for _, p := range []string{t.KeyProperty, t.ParentProperty} {
		if err := errors.ValidateFieldName(p); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "property name")
		}
	}
	if t.KeyProperty == t.ParentProperty {
		return errors.New(errors.ErrCodeInvalidConfig, "key and parent property are both %q", t.KeyProperty)
	}
	for _, f := range t.Inspector {
		if err := errors.ValidateFieldName(f); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "inspector field")
		}
	}
	if t.FlagURL != "" {
		if !strings.Contains(t.FlagURL, nationPlaceholder) {
			return errors.New(errors.ErrCodeInvalidConfig, "flag_url must contain %s", nationPlaceholder)
		}
		if err := errors.ValidateURL(strings.ReplaceAll(t.FlagURL, nationPlaceholder, "x")); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "flag_url")
		}
	}

	l := t.Layout
	for _, a := range []int{l.Angle, l.AlternateAngle} {
		if a != 0 && a != 90 && a != 180 && a != 270 {
			return errors.New(errors.ErrCodeInvalidConfig, "layout angle %d must be 0, 90, 180 or 270", a)
		}
	}
	for _, s := range []float64{l.LayerSpacing, l.NodeSpacing, l.AlternateLayerSpacing, l.AlternateNodeSpacing} {
		if s < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "layout spacing %g is negative", s)
		}
	}
	return nil
}

// Reserved returns the property names that carry structure rather than
// attributes. The side panel may not edit them.
func (t *Template) Reserved() []string {
	return []string{t.KeyProperty, t.ParentProperty}
}

// Fields returns the side-panel field order: the configured inspector fields
// first, followed by any other attribute in extra that is neither listed nor
// reserved, in the order given.
func (t *Template) Fields(extra []string) []string {
	out := slices.Clone(t.Inspector)
	for _, f := range extra {
		if !slices.Contains(out, f) && !slices.Contains(t.Reserved(), f) {
			out = append(out, f)
		}
	}
	return out
}

// FlagURLFor returns the flag picture for nation, or "" when nation is empty
// or flags are disabled.
func (t *Template) FlagURLFor(nation string) string {
	if nation == "" || t.FlagURL == "" {
		return ""
	}
	return strings.ReplaceAll(t.FlagURL, nationPlaceholder, nation)
}

// Encode writes t as TOML.
func (t *Template) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(t)
}

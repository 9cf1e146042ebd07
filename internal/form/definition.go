// internal/form/definition.go
//
// Enquiry form: section and label catalogue.
//
// Context
//   The enquiry form is declared once in YAML (catalogue.yaml, embedded at
//   build time).  The catalogue names the three sections, the fields each
//   section owns, and a label per locale for every field.  The validator
//   summary, the section controller, and the CLI all read from it, so a
//   label change never needs a code change.
//
// Workflow
//   •  LoadCatalogue parses raw YAML and checks structural rules: unique
//      section IDs, known field paths, no duplicates, and an English label
//      for every field.
//   •  DefaultCatalogue returns the embedded catalogue, parsed once.
//   •  Label resolves a path to a human-readable label for a locale, falling
//      back to English and then to the last path segment.
//
//------------------------------------------------------------------------------

package form

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yanizio/groupenquiry/internal/booking"
)

// FallbackLocale is used whenever a label is missing for the requested locale.
const FallbackLocale = "en"

//go:embed catalogue.yaml
var catalogueYAML []byte

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// Text is a string keyed by locale, e.g. {"en": "Rooms", "de": "Zimmer"}.
type Text map[string]string

// In returns the text for locale, the English text, or "" when neither exists.
func (t Text) In(locale string) string {
	if s, ok := t[locale]; ok && s != "" {
		return s
	}
	return t[FallbackLocale]
}

// Catalogue is the parsed form declaration.
type Catalogue struct {
	ID       string       `yaml:"id"`
	Title    Text         `yaml:"title"`
	Sections []SectionDef `yaml:"sections"`

	byPath map[booking.Path]fieldRef
}

// SectionDef groups the fields rendered in one accordion panel.
type SectionDef struct {
	ID     string     `yaml:"id"`
	Title  Text       `yaml:"title"`
	Fields []FieldDef `yaml:"fields"`
}

// FieldDef labels one field or group path.
type FieldDef struct {
	Path  booking.Path `yaml:"path"`
	Label Text         `yaml:"label"`
}

type fieldRef struct {
	section int
	field   int
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

var (
	defaultOnce sync.Once
	defaultCat  *Catalogue
)

// DefaultCatalogue returns the embedded catalogue.  It panics if the embedded
// YAML is malformed, which a unit test guards against.
func DefaultCatalogue() *Catalogue {
	defaultOnce.Do(func() {
		c, err := LoadCatalogue(catalogueYAML)
		if err != nil {
			panic("form: embedded catalogue: " + err.Error())
		}
		defaultCat = c
	})
	return defaultCat
}

// LoadCatalogue parses raw YAML and validates its structure.
func LoadCatalogue(raw []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

// index validates c and builds the path lookup.
func (c *Catalogue) index() error {
	if c.ID == "" {
		return errors.New("catalogue: missing required 'id'")
	}
	if len(c.Sections) != len(sectionIDs) {
		return fmt.Errorf("catalogue %s: want %d sections, got %d", c.ID, len(sectionIDs), len(c.Sections))
	}

	c.byPath = make(map[booking.Path]fieldRef)
	for si, s := range c.Sections {
		if s.ID != sectionIDs[si] {
			return fmt.Errorf("catalogue %s: section %d must be %q, got %q", c.ID, si, sectionIDs[si], s.ID)
		}
		for fi, f := range s.Fields {
			if !f.Path.Known() {
				return fmt.Errorf("catalogue %s: unknown field path %q", c.ID, f.Path)
			}
			if f.Label.In(FallbackLocale) == "" {
				return fmt.Errorf("catalogue %s: field %q missing %s label", c.ID, f.Path, FallbackLocale)
			}
			if _, dup := c.byPath[f.Path]; dup {
				return fmt.Errorf("catalogue %s: duplicate field path %q", c.ID, f.Path)
			}
			c.byPath[f.Path] = fieldRef{section: si, field: fi}
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Lookups
// -----------------------------------------------------------------------------

// Label returns the human-readable label for p.  Unlabelled paths fall back to
// their last segment, so server errors on unexpected keys still read sensibly.
func (c *Catalogue) Label(p booking.Path, locale string) string {
	if ref, ok := c.byPath[p]; ok {
		return c.Sections[ref.section].Fields[ref.field].Label.In(locale)
	}
	return p.Leaf()
}

// SectionOf returns the section whose panel holds p, or None when p is not
// catalogued.  Unlisted descendants inherit from their nearest listed parent.
func (c *Catalogue) SectionOf(p booking.Path) Section {
	for q := p; q != ""; q = q.Parent() {
		if ref, ok := c.byPath[q]; ok {
			return Section(ref.section)
		}
	}
	return None
}

// SectionTitle returns the localized title of s.
func (c *Catalogue) SectionTitle(s Section, locale string) string {
	if !s.valid() {
		return ""
	}
	return c.Sections[s].Title.In(locale)
}

// Fields returns the field paths of s in display order.
func (c *Catalogue) Fields(s Section) []booking.Path {
	if !s.valid() {
		return nil
	}
	out := make([]booking.Path, 0, len(c.Sections[s].Fields))
	for _, f := range c.Sections[s].Fields {
		out = append(out, f.Path)
	}
	return out
}

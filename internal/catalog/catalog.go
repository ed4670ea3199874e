// Package catalog holds the declarative eligibility rule set: the processing
// scale, banned substances, and per-category rules. A Catalog is immutable once
// loaded and safe for concurrent use.
package catalog

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultYAML []byte

// Verdict is the outcome a processing level maps to.
type Verdict string

const (
	Eligible   Verdict = "eligible"
	Clarify    Verdict = "clarify"
	Ineligible Verdict = "ineligible"
)

type Level struct {
	Level   int     `yaml:"level" json:"level"`
	Label   string  `yaml:"label" json:"label"`
	Verdict Verdict `yaml:"verdict" json:"verdict"`
}

// Clarification bounds the single clarification round.
type Clarification struct {
	MaxQuestions int      `yaml:"max_questions" json:"max_questions"`
	Topics       []string `yaml:"topics" json:"topics"`
}

type Processing struct {
	Scale         string        `yaml:"scale" json:"scale"`
	Levels        []Level       `yaml:"levels" json:"levels"`
	Clarification Clarification `yaml:"clarification" json:"clarification"`
}

// Substance is a named group of terms. Override substances reject in every
// category and take precedence over all other rules.
type Substance struct {
	ID          string   `yaml:"id" json:"id"`
	Description string   `yaml:"description" json:"description"`
	Override    bool     `yaml:"override,omitempty" json:"override,omitempty"`
	Terms       []string `yaml:"terms" json:"terms"`
	Exempt      []string `yaml:"exempt,omitempty" json:"exempt,omitempty"`
}

type CertificationRule struct {
	AnyOf []string `yaml:"any_of" json:"any_of"`
}

// Rules are the category-specific rules layered on top of the override substances.
type Rules struct {
	Processing     bool               `yaml:"processing,omitempty" json:"processing,omitempty"`
	Banned         []string           `yaml:"banned,omitempty" json:"banned,omitempty"`
	Excluded       []Substance        `yaml:"excluded,omitempty" json:"excluded,omitempty"`
	Certifications *CertificationRule `yaml:"certifications,omitempty" json:"certifications,omitempty"`
}

// Catalog is a versioned eligibility rule set.
type Catalog struct {
	Version    string             `yaml:"version" json:"version"`
	Processing Processing         `yaml:"processing" json:"processing"`
	Substances []Substance        `yaml:"substances" json:"substances"`
	Categories map[Category]Rules `yaml:"categories" json:"categories"`

	hash string
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Parse(defaultYAML)
})

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads and validates a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog. The hash is computed over the raw bytes.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	c.hash = "sha256:" + hex.EncodeToString(sum[:])
	return &c, nil
}

// Hash identifies the exact catalog source the rules were loaded from.
func (c *Catalog) Hash() string {
	return c.hash
}

// Rules returns the rules for category.
func (c *Catalog) Rules(category Category) (Rules, bool) {
	r, ok := c.Categories[category]
	return r, ok
}

// MaxQuestions is the upper bound on questions in the clarification round.
func (c *Catalog) MaxQuestions() int {
	return c.Processing.Clarification.MaxQuestions
}

// Overrides returns the substances that reject in every category.
func (c *Catalog) Overrides() []Substance {
	var out []Substance
	for _, s := range c.Substances {
		if s.Override {
			out = append(out, s)
		}
	}
	return out
}

// Banned returns the substances that reject a product in category: the
// overrides followed by the category's own bans.
func (c *Catalog) Banned(category Category) []Substance {
	out := c.Overrides()
	rules, ok := c.Categories[category]
	if !ok {
		return out
	}
	for _, id := range rules.Banned {
		if s, ok := c.substance(id); ok && !s.Override {
			out = append(out, s)
		}
	}
	return out
}

func (c *Catalog) substance(id string) (Substance, bool) {
	i := slices.IndexFunc(c.Substances, func(s Substance) bool { return s.ID == id })
	if i < 0 {
		return Substance{}, false
	}
	return c.Substances[i], true
}

func (c *Catalog) validate() error {
	if c.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidCatalog)
	}

	cl := c.Processing.Clarification
	if cl.MaxQuestions < 1 || cl.MaxQuestions > 3 {
		return fmt.Errorf("%w: max_questions must be between 1 and 3, got %d", ErrInvalidCatalog, cl.MaxQuestions)
	}
	if len(cl.Topics) == 0 || len(cl.Topics) > cl.MaxQuestions {
		return fmt.Errorf("%w: clarification needs 1..%d topics, got %d", ErrInvalidCatalog, cl.MaxQuestions, len(cl.Topics))
	}

	seen := make(map[int]bool)
	for _, l := range c.Processing.Levels {
		switch l.Verdict {
		case Eligible, Clarify, Ineligible:
		default:
			return fmt.Errorf("%w: level %d has unknown verdict %q", ErrInvalidCatalog, l.Level, l.Verdict)
		}
		if seen[l.Level] {
			return fmt.Errorf("%w: duplicate processing level %d", ErrInvalidCatalog, l.Level)
		}
		seen[l.Level] = true
	}

	ids := make(map[string]bool)
	for _, s := range c.Substances {
		if s.ID == "" || len(s.Terms) == 0 {
			return fmt.Errorf("%w: substance %q needs an id and terms", ErrInvalidCatalog, s.ID)
		}
		if ids[s.ID] {
			return fmt.Errorf("%w: duplicate substance %q", ErrInvalidCatalog, s.ID)
		}
		ids[s.ID] = true
	}

	for _, cat := range categories {
		rules, ok := c.Categories[cat]
		if !ok {
			return fmt.Errorf("%w: category %s is not defined", ErrInvalidCatalog, cat)
		}
		if rules.Processing && len(c.Processing.Levels) == 0 {
			return fmt.Errorf("%w: category %s uses the processing scale but no levels are defined", ErrInvalidCatalog, cat)
		}
		for _, id := range rules.Banned {
			if !ids[id] {
				return fmt.Errorf("%w: category %s bans unknown substance %q", ErrInvalidCatalog, cat, id)
			}
		}
		if rules.Certifications != nil && len(rules.Certifications.AnyOf) == 0 {
			return fmt.Errorf("%w: category %s requires certifications but lists none", ErrInvalidCatalog, cat)
		}
	}

	for cat := range c.Categories {
		if !cat.Valid() {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidCatalog, cat)
		}
	}

	return nil
}

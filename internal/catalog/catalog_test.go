package catalog_test

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/vetter/internal/catalog"
)

const minimal = `
version: "test-1"
processing:
  scale: NOVA
  levels:
    - {level: 1, label: raw, verdict: eligible}
    - {level: 4, label: ultra, verdict: ineligible}
  clarification:
    max_questions: 2
    topics: [additives, steps]
substances:
  - id: alcohol
    description: alcohol
    override: true
    terms: [alcohol]
categories:
  agriculture: {processing: true}
  processed_foods: {processing: true}
  meat_poultry: {certifications: {any_of: [Halal]}}
  seafood: {}
  other: {}
`

func TestDefaultCatalog(t *testing.T) {
	c := catalog.Default()

	require.NotEmpty(t, c.Version)
	assert.True(t, strings.HasPrefix(c.Hash(), "sha256:"))
	assert.Equal(t, 3, c.MaxQuestions())
	assert.Len(t, c.Processing.Clarification.Topics, 3)

	for _, cat := range catalog.Categories() {
		_, ok := c.Rules(cat)
		assert.True(t, ok, "category %s missing", cat)
	}

	ids := func(subs []catalog.Substance) []string {
		out := make([]string, len(subs))
		for i, s := range subs {
			out[i] = s.ID
		}
		return out
	}
	assert.Equal(t, []string{"alcohol", "tobacco"}, ids(c.Overrides()))
	assert.Equal(t, []string{"alcohol", "tobacco"}, ids(c.Banned(catalog.Seafood)))
	assert.Equal(t,
		[]string{"alcohol", "tobacco", "artificial_colors", "artificial_preservatives"},
		ids(c.Banned(catalog.ProcessedFoods)))

	meat, _ := c.Rules(catalog.MeatPoultry)
	require.NotNil(t, meat.Certifications)
	assert.ElementsMatch(t, []string{"Halal", "Kosher"}, meat.Certifications.AnyOf)
	require.Len(t, meat.Excluded, 1)
	assert.Equal(t, "pork", meat.Excluded[0].ID)
}

func TestParseComputesHashFromBytes(t *testing.T) {
	c, err := catalog.Parse([]byte(minimal))
	require.NoError(t, err)

	sum := sha256.Sum256([]byte(minimal))
	assert.Equal(t, "sha256:"+hex.EncodeToString(sum[:]), c.Hash())
	assert.Equal(t, "test-1", c.Version)
	assert.Equal(t, 2, c.MaxQuestions())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o644))

	c, err := catalog.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-1", c.Version)

	_, err = catalog.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCatalogVersionsCoexist(t *testing.T) {
	a := catalog.Default()
	b, err := catalog.Parse([]byte(minimal))
	require.NoError(t, err)

	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.MaxQuestions(), b.MaxQuestions())
	assert.Contains(t, b.Render(), "Rule catalog version test-1")
	assert.Contains(t, a.Render(), "Rule catalog version "+a.Version)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{"missing version", func(s string) string { return strings.Replace(s, `version: "test-1"`, "", 1) }, "version is required"},
		{"too many questions", func(s string) string { return strings.Replace(s, "max_questions: 2", "max_questions: 4", 1) }, "max_questions"},
		{"bad verdict", func(s string) string { return strings.Replace(s, "verdict: eligible", "verdict: maybe", 1) }, "unknown verdict"},
		{"missing category", func(s string) string { return strings.Replace(s, "  other: {}\n", "", 1) }, "category other is not defined"},
		{"unknown category", func(s string) string { return s + "  dairy: {}\n" }, "unknown category"},
		{"unknown banned substance", func(s string) string {
			return strings.Replace(s, "processed_foods: {processing: true}", "processed_foods: {processing: true, banned: [msg]}", 1)
		}, "unknown substance"},
		{"malformed yaml", func(s string) string { return s + "\n  - : [" }, "invalid catalog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(tt.mutate(minimal)))
			require.Error(t, err)
			assert.True(t, errors.Is(err, catalog.ErrInvalidCatalog))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseCategory(t *testing.T) {
	got, err := catalog.ParseCategory("  Meat_Poultry ")
	require.NoError(t, err)
	assert.Equal(t, catalog.MeatPoultry, got)

	_, err = catalog.ParseCategory("dairy")
	assert.ErrorIs(t, err, catalog.ErrInvalidCategory)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "jamon iberico cured", catalog.Normalize("Jamón Ibérico (Cured)"))
	assert.Equal(t, "red 40", catalog.Normalize("  RED-40 "))
	assert.Equal(t, "", catalog.Normalize("  --  "))
}

func TestSubstanceMatch(t *testing.T) {
	alcohol := catalog.Default().Overrides()[0]
	require.Equal(t, "alcohol", alcohol.ID)

	tests := []struct {
		name  string
		texts []string
		want  bool
	}{
		{"whole word", []string{"Red Wine Reduction"}, true},
		{"later text", []string{"Sauces", "bourbon vanilla with rum"}, true},
		{"word boundary", []string{"Ginger snaps"}, false},
		{"exempt phrase", []string{"Craft Root Beer"}, false},
		{"exempt does not hide other terms", []string{"root beer float with vodka"}, true},
		{"non alcoholic", []string{"Non-Alcoholic Sparkling Wine"}, true},
		{"clean", []string{"Wild Alaskan Salmon"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := alcohol.Match(tt.texts...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCertificationRuleHolds(t *testing.T) {
	rule := catalog.CertificationRule{AnyOf: []string{"Halal", "Kosher"}}

	assert.True(t, rule.Holds([]string{"organic", "halal"}))
	assert.True(t, rule.Holds([]string{" KOSHER "}))
	assert.True(t, rule.Holds([]string{"Halal Certified"}))
	assert.True(t, rule.Holds([]string{"Certified Kosher"}))
	assert.True(t, rule.Holds([]string{"HMC Halal"}))
	assert.False(t, rule.Holds([]string{"Non-Halal"}))
	assert.False(t, rule.Holds([]string{"Halalish"}))
	assert.False(t, rule.Holds(nil))
	assert.False(t, rule.Holds([]string{"Organic"}))
}

func TestRenderIsDeterministic(t *testing.T) {
	c := catalog.Default()
	first := c.Render()

	for range 5 {
		assert.Equal(t, first, c.Render())
	}
	for _, cat := range catalog.Categories() {
		assert.Contains(t, first, "Category "+string(cat)+":")
	}
	assert.Contains(t, first, "Halal, Kosher")
	assert.Contains(t, first, "ingredient complexity")
}

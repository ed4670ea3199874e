package catalog

import (
	"fmt"
	"strings"
)

// Render writes the catalog as plain-text rules for the classifier prompt.
// Output depends only on catalog content, so equal catalogs render identically.
func (c *Catalog) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Rule catalog version %s\n\n", c.Version)

	fmt.Fprintf(&b, "Processing scale (%s):\n", c.Processing.Scale)
	for _, l := range c.Processing.Levels {
		fmt.Fprintf(&b, "- Level %d, %s: %s\n", l.Level, l.Label, describeVerdict(l.Verdict))
	}
	cl := c.Processing.Clarification
	fmt.Fprintf(&b, "When the level is ambiguous between 3 and 4, ask at most %d questions covering: %s.\n\n",
		cl.MaxQuestions, strings.Join(cl.Topics, "; "))

	overrides := c.Overrides()
	if len(overrides) > 0 {
		b.WriteString("Banned in every category (overrides all other rules, reject):\n")
		for _, s := range overrides {
			fmt.Fprintf(&b, "- %s: %s\n", s.Description, strings.Join(s.Terms, ", "))
		}
		b.WriteString("\n")
	}

	for _, cat := range categories {
		rules := c.Categories[cat]
		fmt.Fprintf(&b, "Category %s:\n", cat)

		if rules.Processing {
			b.WriteString("- Classify the processing level first and apply the processing scale.\n")
		}
		for _, id := range rules.Banned {
			if s, ok := c.substance(id); ok {
				fmt.Fprintf(&b, "- Reject if it contains %s: %s\n", s.Description, strings.Join(s.Terms, ", "))
			}
		}
		for _, s := range rules.Excluded {
			fmt.Fprintf(&b, "- Reject unconditionally if the product is %s.\n", s.Description)
		}
		if rules.Certifications != nil {
			fmt.Fprintf(&b, "- Requires one of these certifications: %s. Reject when none is declared.\n",
				strings.Join(rules.Certifications.AnyOf, ", "))
		}
		if !rules.Processing && len(rules.Banned) == 0 && len(rules.Excluded) == 0 && rules.Certifications == nil {
			b.WriteString("- Accept unless a banned substance is present.\n")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func describeVerdict(v Verdict) string {
	switch v {
	case Eligible:
		return "eligible, subject to banned substances"
	case Ineligible:
		return "ineligible, reject without questions"
	case Clarify:
		return "ambiguous, ask clarification questions"
	}
	return string(v)
}

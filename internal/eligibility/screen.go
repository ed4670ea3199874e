package eligibility

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/vetter/internal/catalog"
)

// Screen applies the catalog rules that can be decided from the declared
// fields alone. It returns a Rejected decision and true when the submission
// fails one of them, so no classifier call is needed.
//
// Checks run in precedence order: override substances, the category's own
// banned substances, excluded products, then required certifications.
func Screen(c *catalog.Catalog, cat catalog.Category, sub Submission) (Decision, bool) {
	texts := append([]string{sub.ProductName}, sub.SubCategories...)

	for _, s := range c.Banned(cat) {
		if term, ok := s.Match(texts...); ok {
			return Rejected{Reason: fmt.Sprintf("Contains %s (%q), which is not eligible.", s.Description, term)}, true
		}
	}

	rules, _ := c.Rules(cat)

	for _, s := range rules.Excluded {
		if term, ok := s.Match(texts...); ok {
			return Rejected{Reason: fmt.Sprintf("%s products are not eligible: %s (%q).", cat, s.Description, term)}, true
		}
	}

	if rules.Certifications != nil && !rules.Certifications.Holds(sub.Certifications) {
		return Rejected{Reason: fmt.Sprintf("%s products require one of these certifications: %s.", cat, strings.Join(rules.Certifications.AnyOf, ", "))}, true
	}

	return nil, false
}

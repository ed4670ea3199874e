package eligibility

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/vetter/internal/catalog"
)

// Submission is a product description offered for eligibility review.
type Submission struct {
	Category       string   `json:"category"`
	SubCategories  []string `json:"subCategory"`
	ProductName    string   `json:"productName"`
	CompanyName    string   `json:"companyName"`
	Location       string   `json:"location"`
	Certifications []string `json:"certifications"`
}

// Normalize returns a copy with whitespace trimmed, the category lowercased,
// blank sub-categories dropped, and certifications de-duplicated
// case-insensitively. Order is otherwise preserved.
func (s Submission) Normalize() Submission {
	out := Submission{
		Category:    strings.ToLower(strings.TrimSpace(s.Category)),
		ProductName: strings.TrimSpace(s.ProductName),
		CompanyName: strings.TrimSpace(s.CompanyName),
		Location:    strings.TrimSpace(s.Location),
	}

	out.SubCategories = make([]string, 0, len(s.SubCategories))
	for _, sc := range s.SubCategories {
		if sc = strings.TrimSpace(sc); sc != "" {
			out.SubCategories = append(out.SubCategories, sc)
		}
	}

	seen := make(map[string]bool)
	out.Certifications = make([]string, 0, len(s.Certifications))
	for _, c := range s.Certifications {
		c = strings.TrimSpace(c)
		key := catalog.Normalize(c)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out.Certifications = append(out.Certifications, c)
	}

	return out
}

// Validate checks a normalized submission.
func (s Submission) Validate() (catalog.Category, error) {
	cat, err := catalog.ParseCategory(s.Category)
	if err != nil {
		return "", err
	}
	if len(s.SubCategories) == 0 {
		return "", fmt.Errorf("%w: at least one sub-category is required", ErrInvalidSubmission)
	}
	if s.ProductName == "" {
		return "", fmt.Errorf("%w: product name is required", ErrInvalidSubmission)
	}
	return cat, nil
}

// Fingerprint identifies the normalized submission. Two submissions that
// normalize identically share a fingerprint.
func (s Submission) Fingerprint() string {
	n := s.Normalize()
	data, _ := json.Marshal(n)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

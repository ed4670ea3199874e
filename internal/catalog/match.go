package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds case, strips diacritics, and collapses s to space-separated
// alphanumeric tokens. "Jamón Ibérico (Cured)" becomes "jamon iberico cured".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	fields := strings.FieldsFunc(cases.Fold().String(stripped), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}

// Match reports the first term of s found in any of texts as a whole word or
// phrase. Exempt phrases are removed before matching.
func (s Substance) Match(texts ...string) (string, bool) {
	for _, text := range texts {
		padded := " " + Normalize(text) + " "
		for _, ex := range s.Exempt {
			padded = strings.ReplaceAll(padded, " "+Normalize(ex)+" ", " ")
		}
		for _, term := range s.Terms {
			if strings.Contains(padded, " "+Normalize(term)+" ") {
				return term, true
			}
		}
	}
	return "", false
}

// Holds reports whether any declared certification names one of the
// required ones as a whole word or phrase, so "Halal Certified" satisfies
// Halal. Negated forms such as "Non-Halal" do not.
func (r CertificationRule) Holds(certs []string) bool {
	required := Substance{Terms: r.AnyOf}
	for _, want := range r.AnyOf {
		required.Exempt = append(required.Exempt, "non "+want, "not "+want)
	}
	_, ok := required.Match(certs...)
	return ok
}

package catalog

import (
	"fmt"
	"strings"
)

// Category is the product category a submission is evaluated under.
type Category string

const (
	Agriculture    Category = "agriculture"
	ProcessedFoods Category = "processed_foods"
	MeatPoultry    Category = "meat_poultry"
	Seafood        Category = "seafood"
	Other          Category = "other"
)

var categories = []Category{Agriculture, ProcessedFoods, MeatPoultry, Seafood, Other}

// Categories returns every known category in canonical order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory parses s, ignoring case and surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

package catalog

import "errors"

var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidCatalog  = errors.New("invalid catalog")
)

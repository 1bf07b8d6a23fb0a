package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

var (
	ErrNotFound    = errors.New("product not found")
	ErrValidation  = errors.New("validation failed")
	ErrDuplicateID = errors.New("duplicate product id")
	ErrInvalidID   = errors.New("invalid product id")
)

// ValidationError lists the rule each rejected field failed, keyed by its JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DefaultSeed is the collection every fresh process starts with.
func DefaultSeed() []Product {
	return []Product{
		{ID: 1, Name: "Guitar"},
		{ID: 2, Name: "Banjo"},
	}
}

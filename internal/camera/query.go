package camera

import (
	"errors"
	"strings"
)

// ErrInvalidQuery is returned when a query names neither a model and
// manufacturer pair nor an alias.
var ErrInvalidQuery = errors.New("camera: model_name and manufacturer, or alias, are required")

// ErrNotFound is matched by errors.Is on every store miss.
var ErrNotFound = errors.New("camera: record not found")

// Query identifies the camera a caller is asking about.
type Query struct {
	ModelName    string `json:"model_name"`
	Manufacturer string `json:"manufacturer"`
	Alias        string `json:"alias,omitempty"`
}

// Normalize trims every field and collapses internal runs of whitespace.
func (q Query) Normalize() Query {
	return Query{
		ModelName:    collapseSpaces(q.ModelName),
		Manufacturer: collapseSpaces(q.Manufacturer),
		Alias:        collapseSpaces(q.Alias),
	}
}

// Validate reports ErrInvalidQuery when the query cannot be resolved.
func (q Query) Validate() error {
	q = q.Normalize()
	if q.ModelName != "" && q.Manufacturer != "" {
		return nil
	}
	if q.Alias != "" {
		return nil
	}
	return ErrInvalidQuery
}

// ByAlias reports whether the query can only be resolved through its alias.
func (q Query) ByAlias() bool {
	q = q.Normalize()
	return (q.ModelName == "" || q.Manufacturer == "") && q.Alias != ""
}

// Key is the case-insensitive cache key of the query.
func (q Query) Key() string {
	q = q.Normalize()
	return strings.ToLower(q.Manufacturer + "|" + q.ModelName + "|" + q.Alias)
}

// String renders the query the way it is sent to the model:
// "<manufacturer> <model>" with the alias in parentheses when present.
func (q Query) String() string {
	q = q.Normalize()
	name := strings.TrimSpace(q.Manufacturer + " " + q.ModelName)
	switch {
	case q.Alias == "":
		return name
	case name == "":
		return q.Alias
	default:
		return name + " (" + q.Alias + ")"
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

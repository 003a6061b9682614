package camera

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/leofalp/mirror/core/parse"
)

// Spec is a camera record as stored. Scalar identity fields are typed;
// every other top-level field is kept as a JSON document in Sections.
type Spec struct {
	ModelName    string   `json:"model_name"`
	Manufacturer string   `json:"manufacturer"`
	Aliases      []string `json:"aliases"`
	ReleaseYear  *int     `json:"release_year"`
	CameraType   *string  `json:"camera_type"`
	UserLevel    *string  `json:"user_level"`

	// Sections maps a field name from SectionNames to its JSON value.
	Sections map[string]json.RawMessage `json:"-"`

	// NeedsReview marks records rebuilt by salvage.
	NeedsReview bool `json:"-"`
	// RawJSON is the model output the record was extracted from.
	RawJSON   string    `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// FromRecord converts a record produced by the extraction pipeline with
// Schema into a Spec.
func FromRecord(record *parse.Object) (*Spec, error) {
	if record == nil {
		return nil, fmt.Errorf("camera: nil record")
	}
	var spec Spec
	if err := record.Decode(&spec); err != nil {
		return nil, fmt.Errorf("camera: decode record: %w", err)
	}
	spec.Sections = make(map[string]json.RawMessage)
	for _, name := range SectionNames() {
		value, _ := record.Get(name)
		data, err := marshal(value)
		if err != nil {
			return nil, fmt.Errorf("camera: encode section %s: %w", name, err)
		}
		spec.Sections[name] = data
	}
	if spec.Aliases == nil {
		spec.Aliases = []string{}
	}
	return &spec, nil
}

// FromOutcome builds a Spec from a Success or PartialSuccess. The raw text
// is kept and a PartialSuccess is flagged for review. A Failure returns
// the failure itself as the error.
func FromOutcome(outcome parse.Outcome) (*Spec, error) {
	var (
		spec *Spec
		err  error
	)
	switch o := outcome.(type) {
	case *parse.Success:
		spec, err = FromRecord(o.Record)
	case *parse.PartialSuccess:
		spec, err = FromRecord(o.Record)
		if spec != nil {
			spec.NeedsReview = true
		}
	case *parse.Failure:
		return nil, o
	default:
		return nil, fmt.Errorf("camera: unexpected outcome %T", outcome)
	}
	if err != nil {
		return nil, err
	}
	spec.RawJSON = outcome.RawText()
	return spec, nil
}

// AddAlias records alias unless it is empty or already known, comparing
// case-insensitively. It never adds the model name itself.
func (s *Spec) AddAlias(alias string) {
	alias = collapseSpaces(alias)
	if alias == "" || strings.EqualFold(alias, s.ModelName) {
		return
	}
	for _, known := range s.Aliases {
		if strings.EqualFold(known, alias) {
			return
		}
	}
	s.Aliases = append(s.Aliases, alias)
}

// Record rebuilds the record in schema order.
func (s *Spec) Record() (*parse.Object, error) {
	record := parse.NewObject()
	for _, f := range Schema.Fields {
		switch f.Name {
		case "model_name":
			record.Set(f.Name, s.ModelName)
		case "manufacturer":
			record.Set(f.Name, s.Manufacturer)
		case "aliases":
			aliases := make([]any, len(s.Aliases))
			for i, a := range s.Aliases {
				aliases[i] = a
			}
			record.Set(f.Name, aliases)
		case "release_year":
			if s.ReleaseYear != nil {
				record.Set(f.Name, json.Number(fmt.Sprint(*s.ReleaseYear)))
			} else {
				record.Set(f.Name, nil)
			}
		case "camera_type":
			record.Set(f.Name, optional(s.CameraType))
		case "user_level":
			record.Set(f.Name, optional(s.UserLevel))
		default:
			data, ok := s.Sections[f.Name]
			if !ok || len(data) == 0 {
				record.Set(f.Name, nil)
				continue
			}
			value, err := parse.ParseStrict(string(data))
			if err != nil {
				return nil, fmt.Errorf("camera: section %s: %w", f.Name, err)
			}
			record.Set(f.Name, value)
		}
	}
	return record, nil
}

// MarshalJSON encodes the full record followed by needs_review and, when
// known, updated_at.
func (s *Spec) MarshalJSON() ([]byte, error) {
	record, err := s.Record()
	if err != nil {
		return nil, err
	}
	record.Set("needs_review", s.NeedsReview)
	if !s.UpdatedAt.IsZero() {
		record.Set("updated_at", s.UpdatedAt.UTC().Format(time.RFC3339))
	}
	return record.MarshalJSON()
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func marshal(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

package parse

import (
	"fmt"
	"strings"
)

// Status discriminates the three outcome variants on the wire.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialSuccess Status = "partial_success"
	StatusFailure        Status = "failure"
)

// Kind classifies a Failure.
type Kind string

const (
	// KindMalformedInput means the text could not be parsed and salvage
	// found nothing.
	KindMalformedInput Kind = "malformed_input"
	// KindUpstreamDeclaredError means the model explicitly reported that it
	// had no answer.
	KindUpstreamDeclaredError Kind = "upstream_declared_error"
	// KindMissingRequiredField means a mandatory field was absent or empty.
	KindMissingRequiredField Kind = "missing_required_field"
)

// Warning tags a PartialSuccess.
type Warning string

// WarningPartialParse marks a record rebuilt by salvage after strict
// parsing failed.
const WarningPartialParse Warning = "partial_parse"

// Outcome is the result of one pipeline run: *Success, *PartialSuccess or
// *Failure. Callers type-switch on it.
type Outcome interface {
	Status() Status
	// RawText returns the model output exactly as received.
	RawText() string
	isOutcome()
}

// Success carries a record parsed from syntactically sound output. It is
// safe to persist as authoritative.
type Success struct {
	Record *Object
	Notes  []Note
	Raw    string
}

func (*Success) Status() Status    { return StatusSuccess }
func (s *Success) RawText() string { return s.Raw }
func (*Success) isOutcome()        {}

func (s *Success) MarshalJSON() ([]byte, error) {
	return marshalNoEscape(struct {
		Status Status  `json:"status"`
		Record *Object `json:"record"`
		Notes  []Note  `json:"notes,omitempty"`
		Raw    string  `json:"raw"`
	}{StatusSuccess, s.Record, s.Notes, s.Raw})
}

// PartialSuccess carries a record rebuilt from salvaged pairs. It should be
// persisted only with a review flag.
type PartialSuccess struct {
	Record   *Object
	Salvaged *SalvageResult
	Notes    []Note
	Warning  Warning
	Raw      string
}

func (*PartialSuccess) Status() Status    { return StatusPartialSuccess }
func (p *PartialSuccess) RawText() string { return p.Raw }
func (*PartialSuccess) isOutcome()        {}

func (p *PartialSuccess) MarshalJSON() ([]byte, error) {
	return marshalNoEscape(struct {
		Status   Status         `json:"status"`
		Warning  Warning        `json:"warning"`
		Record   *Object        `json:"record"`
		Salvaged *SalvageResult `json:"salvaged,omitempty"`
		Notes    []Note         `json:"notes,omitempty"`
		Raw      string         `json:"raw"`
	}{StatusPartialSuccess, p.Warning, p.Record, p.Salvaged, p.Notes, p.Raw})
}

// Failure is a terminal verdict: nothing usable should be persisted.
type Failure struct {
	Kind Kind
	// Fields lists the dotted paths of missing required fields.
	Fields []string
	// Declared is set for KindUpstreamDeclaredError.
	Declared *DeclaredError
	// Cause is the strict-parse error, when there was one.
	Cause   error
	Salvage *SalvageResult
	Raw     string
}

func (*Failure) Status() Status    { return StatusFailure }
func (f *Failure) RawText() string { return f.Raw }
func (*Failure) isOutcome()        {}

func (f *Failure) Error() string {
	switch f.Kind {
	case KindMissingRequiredField:
		return fmt.Sprintf("parse: missing required field: %s", strings.Join(f.Fields, ", "))
	case KindUpstreamDeclaredError:
		if f.Declared != nil && f.Declared.Message != "" {
			return fmt.Sprintf("parse: upstream declared error: %s", f.Declared.Message)
		}
		return "parse: upstream declared error"
	default:
		if f.Cause != nil {
			return fmt.Sprintf("parse: %s: %v", f.Kind, f.Cause)
		}
		return fmt.Sprintf("parse: %s", f.Kind)
	}
}

func (f *Failure) Unwrap() error { return f.Cause }

func (f *Failure) MarshalJSON() ([]byte, error) {
	var cause string
	if f.Cause != nil {
		cause = f.Cause.Error()
	}
	return marshalNoEscape(struct {
		Status   Status         `json:"status"`
		Kind     Kind           `json:"kind"`
		Message  string         `json:"message"`
		Fields   []string       `json:"fields,omitempty"`
		Declared *DeclaredError `json:"declared,omitempty"`
		Cause    string         `json:"cause,omitempty"`
		Raw      string         `json:"raw"`
	}{StatusFailure, f.Kind, f.Error(), f.Fields, f.Declared, cause, f.Raw})
}

// DeclaredError is the model's own "not found" answer.
type DeclaredError struct {
	Message           string         `json:"message"`
	InputModel        string         `json:"input_model,omitempty"`
	InputManufacturer string         `json:"input_manufacturer,omitempty"`
	Suggestions       []string       `json:"suggestions,omitempty"`
	SimilarModels     []SimilarModel `json:"similar_models,omitempty"`
}

type SimilarModel struct {
	Manufacturer string  `json:"manufacturer"`
	Model        string  `json:"model"`
	Similarity   float64 `json:"similarity,omitempty"`
}

var declaredErrorFields = []Field{
	StringField("message"),
	StringField("input_model"),
	StringField("input_manufacturer"),
	StringListField("suggestions"),
	ObjectListField("similar_models",
		StringField("manufacturer"),
		StringField("model").Require(),
		NumberField("similarity"),
	),
}

// newDeclaredError reads whatever shape the model used for its error
// field. A bare string becomes the message.
func newDeclaredError(v any) *DeclaredError {
	switch t := v.(type) {
	case string:
		return &DeclaredError{Message: strings.TrimSpace(t)}
	case *Object:
		c := &coercer{}
		record := c.object(t, declaredErrorFields, "")
		var declared DeclaredError
		if err := record.Decode(&declared); err != nil {
			return &DeclaredError{}
		}
		return &declared
	default:
		return &DeclaredError{}
	}
}

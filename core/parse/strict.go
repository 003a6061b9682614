package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxDepth is the deepest nesting of arrays and objects ParseStrict accepts.
const MaxDepth = 256

// ErrTooDeep is returned, wrapped in a *SyntaxError, when the input nests
// deeper than MaxDepth.
var ErrTooDeep = errors.New("nesting exceeds maximum depth")

// SyntaxError describes why strict parsing rejected the text.
type SyntaxError struct {
	// Offset is the byte offset at which the problem was detected.
	Offset int64
	Reason string
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parse: invalid JSON at offset %d: %s", e.Offset, e.Reason)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// ParseStrict parses text as a single RFC 8259 JSON value. It makes no
// attempt at leniency: anything that is not exactly one well-formed value,
// optionally surrounded by whitespace, is rejected.
//
// The returned tree is built from nil, bool, json.Number, string, []any and
// *Object. Duplicate object keys keep their first position and last value.
func ParseStrict(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	p := &strictParser{dec: dec}
	value, err := p.value(0)
	if err != nil {
		return nil, p.wrap(err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, &SyntaxError{Offset: dec.InputOffset(), Reason: "unexpected data after top-level value", Err: err}
	}
	return value, nil
}

type strictParser struct {
	dec *json.Decoder
}

func (p *strictParser) value(depth int) (any, error) {
	tok, err := p.dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return p.object(depth + 1)
		case '[':
			return p.array(depth + 1)
		default:
			return nil, fmt.Errorf("unexpected %q", rune(t))
		}
	default:
		return t, nil
	}
}

func (p *strictParser) object(depth int) (any, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}
	obj := NewObject()
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", tok)
		}
		value, err := p.value(depth)
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
	}
	if _, err := p.dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func (p *strictParser) array(depth int) (any, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}
	items := make([]any, 0)
	for p.dec.More() {
		value, err := p.value(depth)
		if err != nil {
			return nil, err
		}
		items = append(items, value)
	}
	if _, err := p.dec.Token(); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *strictParser) wrap(err error) error {
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		return &SyntaxError{Offset: syntaxErr.Offset, Reason: syntaxErr.Error(), Err: err}
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return &SyntaxError{Offset: p.dec.InputOffset(), Reason: "unexpected end of input", Err: io.ErrUnexpectedEOF}
	default:
		return &SyntaxError{Offset: p.dec.InputOffset(), Reason: err.Error(), Err: err}
	}
}

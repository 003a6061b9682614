package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// errNotWrapped is returned by unwrapPrimitive when content is not a
// {"type": ..., "value": ...} envelope.
var errNotWrapped = errors.New("not a schema-wrapped value")

// ParseStringAs decodes model output into T as leniently as possible.
//
// Primitives are converted directly, unwrapping {"type","value"} envelopes
// when the model echoed a schema instead of a value. Other types are
// decoded from JSON, retrying on the normalized text, then on a
// jsonrepair'd copy, then with schema envelopes unwrapped.
//
// ParseStringAs guesses. Use it for display payloads where a best-effort
// value beats an error, and use [Extract] for records that get persisted.
//
//	type Critique struct {
//	    Summary string `json:"summary"`
//	}
//	c, err := ParseStringAs[Critique]("```json\n{summary: 'warm tones'}\n```")
func ParseStringAs[T any](content string) (T, error) {
	var result T
	target := reflect.ValueOf(&result).Elem()

	switch target.Kind() {
	case reflect.String:
		if strings.HasPrefix(content, "{") {
			if unwrapped, err := unwrapPrimitive(content); err == nil {
				target.SetString(unwrapped)
				return result, nil
			}
		}
		target.SetString(content)
		return result, nil

	case reflect.Bool:
		err := parsePrimitive(content, "bool", func(s string) error {
			v, err := strconv.ParseBool(s)
			if err == nil {
				target.SetBool(v)
			}
			return err
		})
		return result, err

	case reflect.Float32, reflect.Float64:
		err := parsePrimitive(content, "float", func(s string) error {
			v, err := strconv.ParseFloat(s, 64)
			if err == nil {
				target.SetFloat(v)
			}
			return err
		})
		return result, err

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		err := parsePrimitive(content, "int", func(s string) error {
			v, err := strconv.ParseInt(s, 10, 64)
			if err == nil {
				target.SetInt(v)
			}
			return err
		})
		return result, err

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		err := parsePrimitive(content, "uint", func(s string) error {
			v, err := strconv.ParseUint(s, 10, 64)
			if err == nil {
				target.SetUint(v)
			}
			return err
		})
		return result, err

	default:
		return result, decodeLenient(content, &result)
	}
}

// parsePrimitive runs set on content, then on the unwrapped envelope value
// if content was one.
func parsePrimitive(content, kind string, set func(string) error) error {
	err := set(strings.TrimSpace(content))
	if err == nil {
		return nil
	}
	if unwrapped, unwrapErr := unwrapPrimitive(content); unwrapErr == nil {
		if set(unwrapped) == nil {
			return nil
		}
	}
	return fmt.Errorf("failed to parse content as %s: %w", kind, err)
}

func decodeLenient(content string, out any) error {
	firstErr := json.Unmarshal([]byte(content), out)
	if firstErr == nil {
		return nil
	}

	normalized := Normalize(content)
	if normalized != content && json.Unmarshal([]byte(normalized), out) == nil {
		return nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(normalized)
	if repairErr != nil {
		return fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", out, firstErr, repairErr)
	}
	err := json.Unmarshal([]byte(repaired), out)
	if err == nil {
		return nil
	}

	if unwrapped, unwrapErr := unwrapSchemaValues(repaired); unwrapErr == nil {
		if json.Unmarshal([]byte(unwrapped), out) == nil {
			return nil
		}
	}
	return fmt.Errorf("failed to unmarshal repaired JSON as %T: %w", out, err)
}

// unwrapPrimitive returns the value of a {"type": ..., "value": ...}
// envelope as a string.
func unwrapPrimitive(content string) (string, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return "", err
	}
	value, ok := envelopeValue(data)
	if !ok {
		return "", errNotWrapped
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case float64, bool:
		return fmt.Sprint(v), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// unwrapSchemaValues replaces every {"type": ..., "value": ...} envelope in
// a JSON document with its value. Models produce these when they confuse
// the response schema with the response.
//
//	{"mood": {"type": "string", "value": "calm"}} -> {"mood": "calm"}
func unwrapSchemaValues(doc string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(doc), &data); err != nil {
		return "", err
	}
	b, err := json.Marshal(unwrapEnvelopes(data))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unwrapEnvelopes(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if value, ok := envelopeValue(v); ok {
			return unwrapEnvelopes(value)
		}
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = unwrapEnvelopes(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = unwrapEnvelopes(val)
		}
		return out
	default:
		return data
	}
}

func envelopeValue(m map[string]any) (any, bool) {
	if len(m) != 2 {
		return nil, false
	}
	if _, hasType := m["type"]; !hasType {
		return nil, false
	}
	value, hasValue := m["value"]
	return value, hasValue
}

package parse

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Note records a value that coercion replaced or dropped.
type Note struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Coerce maps a parsed tree onto schema.
//
// A non-empty declared-error field short-circuits to a *Failure of kind
// KindUpstreamDeclaredError. Required fields that are absent, null, blank
// or of an unusable type produce a *Failure of kind
// KindMissingRequiredField naming every offending path. Otherwise every
// schema field is present in the returned record, in schema order, and
// keys the schema does not declare are dropped.
func Coerce(tree any, schema Schema) (*Object, []Note, error) {
	obj, ok := tree.(*Object)
	if !ok {
		return nil, nil, &Failure{
			Kind:  KindMalformedInput,
			Cause: fmt.Errorf("top-level value is %s, not an object", describe(tree)),
		}
	}

	if schema.ErrorField != "" {
		if v, present := obj.Get(schema.ErrorField); present && declaresError(v) {
			return nil, nil, &Failure{
				Kind:     KindUpstreamDeclaredError,
				Declared: newDeclaredError(v),
			}
		}
	}

	c := &coercer{}
	record := c.object(obj, schema.Fields, "")
	if len(c.missing) > 0 {
		return nil, c.notes, &Failure{Kind: KindMissingRequiredField, Fields: c.missing}
	}
	return record, c.notes, nil
}

type coercer struct {
	missing []string
	notes   []Note
}

func (c *coercer) note(path, format string, args ...any) {
	c.notes = append(c.notes, Note{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *coercer) object(in *Object, fields []Field, prefix string) *Object {
	out := NewObject()
	for _, f := range fields {
		path := joinPath(prefix, f.Name)
		raw, present := in.Get(f.Name)
		if !present || raw == nil {
			if f.Required {
				c.missing = append(c.missing, path)
			}
			out.Set(f.Name, defaultValue(f))
			continue
		}

		value, ok := c.field(raw, f, path)
		if !ok {
			if f.Required {
				c.missing = append(c.missing, path)
			} else {
				c.note(path, "expected %s, got %s; using default", f.Type, describe(raw))
			}
			out.Set(f.Name, defaultValue(f))
			continue
		}
		if f.Required && isBlank(value) {
			c.missing = append(c.missing, path)
		}
		out.Set(f.Name, value)
	}
	return out
}

func (c *coercer) field(raw any, f Field, path string) (any, bool) {
	switch f.Type {
	case TypeString:
		return toString(raw)
	case TypeNumber:
		return toNumber(raw)
	case TypeInteger:
		return toInteger(raw)
	case TypeBool:
		return toBool(raw)
	case TypeStringList:
		return c.stringList(raw, path)
	case TypeObject:
		obj, ok := raw.(*Object)
		if !ok {
			return nil, false
		}
		return c.object(obj, f.Fields, path), true
	case TypeObjectList:
		return c.objectList(raw, f.Fields, path)
	default:
		return raw, true
	}
}

func (c *coercer) stringList(raw any, path string) (any, bool) {
	items, ok := raw.([]any)
	if !ok {
		s, ok := toString(raw)
		if !ok {
			return nil, false
		}
		return []any{s}, true
	}
	out := make([]any, 0, len(items))
	for i, item := range items {
		s, ok := toString(item)
		if !ok {
			c.note(fmt.Sprintf("%s[%d]", path, i), "dropped %s element", describe(item))
			continue
		}
		out = append(out, s)
	}
	return out, true
}

// objectList coerces each element against its own sub-schema. Elements
// that are not objects or miss a required sub-field are dropped; they
// never fail the enclosing record.
func (c *coercer) objectList(raw any, fields []Field, path string) (any, bool) {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case *Object:
		items = []any{v}
	default:
		return nil, false
	}

	out := make([]any, 0, len(items))
	for i, item := range items {
		elemPath := fmt.Sprintf("%s[%d]", path, i)
		obj, ok := item.(*Object)
		if !ok {
			c.note(elemPath, "dropped %s element", describe(item))
			continue
		}
		elem := &coercer{}
		record := elem.object(obj, fields, elemPath)
		c.notes = append(c.notes, elem.notes...)
		if len(elem.missing) > 0 {
			c.note(elemPath, "dropped element missing %s", strings.Join(elem.missing, ", "))
			continue
		}
		out = append(out, record)
	}
	return out, true
}

func toString(raw any) (any, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return nil, false
	}
}

func toNumber(raw any) (any, bool) {
	switch v := raw.(type) {
	case json.Number:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		if !isJSONNumber(s) {
			return nil, false
		}
		return json.Number(s), true
	default:
		return nil, false
	}
}

func toInteger(raw any) (any, bool) {
	n, ok := toNumber(raw)
	if !ok {
		return nil, false
	}
	num := n.(json.Number)
	if _, err := strconv.ParseInt(num.String(), 10, 64); err == nil {
		return num, true
	}
	f, _, err := big.ParseFloat(num.String(), 10, 128, big.ToNearestEven)
	if err != nil || !f.IsInt() {
		return nil, false
	}
	i, acc := f.Int64()
	if acc != big.Exact {
		return nil, false
	}
	return json.Number(strconv.FormatInt(i, 10)), true
}

func toBool(raw any) (any, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return nil, false
}

func isJSONNumber(s string) bool {
	if s == "" {
		return false
	}
	v, err := ParseStrict(s)
	if err != nil {
		return false
	}
	_, ok := v.(json.Number)
	return ok
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

// declaresError reports whether the reserved error field carries a
// meaningful value. A zero error code means no error, like false.
func declaresError(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return strings.TrimSpace(t) != ""
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		return err != nil || f != 0
	case []any:
		return len(t) > 0
	case *Object:
		return t.Len() > 0
	default:
		return true
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case *Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

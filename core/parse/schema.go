package parse

// FieldType is the semantic type a schema field coerces its value to.
type FieldType int

const (
	// TypeAny keeps the value as parsed.
	TypeAny FieldType = iota
	TypeString
	TypeNumber
	// TypeInteger is a number without a fractional part.
	TypeInteger
	TypeBool
	TypeStringList
	TypeObject
	TypeObjectList
)

func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeInteger:
		return "integer"
	case TypeBool:
		return "bool"
	case TypeStringList:
		return "string_list"
	case TypeObject:
		return "object"
	case TypeObjectList:
		return "object_list"
	default:
		return "any"
	}
}

// isList reports whether the type defaults to an empty sequence.
func (t FieldType) isList() bool {
	return t == TypeStringList || t == TypeObjectList
}

// Field declares one named member of a record.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	// Fields is the sub-schema of an object field, or of each element of
	// an object list.
	Fields []Field
}

// Require returns a copy of f marked as required.
func (f Field) Require() Field {
	f.Required = true
	return f
}

func StringField(name string) Field     { return Field{Name: name, Type: TypeString} }
func NumberField(name string) Field     { return Field{Name: name, Type: TypeNumber} }
func IntegerField(name string) Field    { return Field{Name: name, Type: TypeInteger} }
func BoolField(name string) Field       { return Field{Name: name, Type: TypeBool} }
func StringListField(name string) Field { return Field{Name: name, Type: TypeStringList} }
func AnyField(name string) Field        { return Field{Name: name, Type: TypeAny} }

func ObjectField(name string, fields ...Field) Field {
	return Field{Name: name, Type: TypeObject, Fields: fields}
}

func ObjectListField(name string, fields ...Field) Field {
	return Field{Name: name, Type: TypeObjectList, Fields: fields}
}

// Schema describes the record a pipeline run must produce.
type Schema struct {
	Name   string
	Fields []Field
	// ErrorField names the reserved top-level key through which the model
	// reports that it could not answer. Empty disables the check.
	ErrorField string
}

// DefaultErrorField is the reserved key used by NewSchema.
const DefaultErrorField = "error"

// NewSchema returns a schema using DefaultErrorField.
func NewSchema(name string, fields ...Field) Schema {
	return Schema{Name: name, Fields: fields, ErrorField: DefaultErrorField}
}

// RequiredPaths lists the dotted paths of required top-level fields.
func (s Schema) RequiredPaths() []string {
	var paths []string
	for _, f := range s.Fields {
		if f.Required {
			paths = append(paths, f.Name)
		}
	}
	return paths
}

// Skeleton returns an example record with every field set to its default,
// suitable for showing a model the expected shape.
func (s Schema) Skeleton() *Object {
	return defaultObject(s.Fields)
}

func defaultObject(fields []Field) *Object {
	obj := NewObject()
	for _, f := range fields {
		obj.Set(f.Name, defaultValue(f))
	}
	return obj
}

func defaultValue(f Field) any {
	switch {
	case f.Type.isList():
		return []any{}
	case f.Type == TypeObject:
		return defaultObject(f.Fields)
	default:
		return nil
	}
}

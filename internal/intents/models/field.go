package models

// Field names one of the individually updatable intent attributes.
type Field string

const (
	FieldName            Field = "name"
	FieldDescription     Field = "description"
	FieldOutputFormat    Field = "output_format"
	FieldOutputStructure Field = "output_structure"
	FieldContext         Field = "context"
	FieldConstraints     Field = "constraints"
)

// Fields lists every updatable field in declaration order.
var Fields = []Field{
	FieldName, FieldDescription, FieldOutputFormat,
	FieldOutputStructure, FieldContext, FieldConstraints,
}

var fieldMeta = map[Field]struct {
	label    string
	path     string
	required bool
}{
	FieldName:            {"Name", "name", true},
	FieldDescription:     {"Description", "description", true},
	FieldOutputFormat:    {"Output format", "output-format", true},
	FieldOutputStructure: {"Output structure", "output-structure", false},
	FieldContext:         {"Context", "context", false},
	FieldConstraints:     {"Constraints", "constraints", false},
}

// Key is the JSON property carrying the field's value.
func (f Field) Key() string { return string(f) }

// Label is the human readable name used in validation messages.
func (f Field) Label() string { return fieldMeta[f].label }

// Path is the URL segment addressing the field.
func (f Field) Path() string { return fieldMeta[f].path }

// Required reports whether the field may not be cleared.
func (f Field) Required() bool { return fieldMeta[f].required }

// FieldByPath resolves a URL segment to a field.
func FieldByPath(path string) (Field, bool) {
	for _, f := range Fields {
		if f.Path() == path {
			return f, true
		}
	}
	return "", false
}

package page

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"launcher/internal/protocol"
)

// FieldType is the discriminant of a form Field
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldCheckbox FieldType = "checkbox"
	FieldTextArea FieldType = "textarea"
	FieldSelect   FieldType = "select"
)

// Field is one of *TextField, *CheckboxField, *TextAreaField or *SelectField.
// Name is the key the value is submitted under.
type Field interface {
	FieldType() FieldType
	FieldName() string
	FieldTitle() string
	isField()
}

type TextField struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Placeholder string `json:"placeholder,omitempty"`
	Default     string `json:"default,omitempty"`
	// Secure masks the input.
	Secure bool `json:"secure,omitempty"`
}

type CheckboxField struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Label   string `json:"label,omitempty"`
	Default bool   `json:"default,omitempty"`
}

type TextAreaField struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Placeholder string `json:"placeholder,omitempty"`
	Default     string `json:"default,omitempty"`
}

type SelectField struct {
	Name    string       `json:"name"`
	Title   string       `json:"title"`
	Items   []SelectItem `json:"items"`
	Default *SelectValue `json:"default,omitempty"`
}

// SelectItem is one choice of a SelectField
type SelectItem struct {
	Title string      `json:"title"`
	Value SelectValue `json:"value"`
}

// SelectValue is a string or a number.
type SelectValue struct {
	str   string
	num   float64
	isNum bool
}

func StringValue(s string) SelectValue  { return SelectValue{str: s} }
func NumberValue(n float64) SelectValue { return SelectValue{num: n, isNum: true} }

// IsNumber reports whether the value was given as a JSON number.
func (v SelectValue) IsNumber() bool { return v.isNum }

// Interface returns the value as a string or float64.
func (v SelectValue) Interface() any {
	if v.isNum {
		return v.num
	}
	return v.str
}

func (v SelectValue) String() string {
	if v.isNum {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

func (v SelectValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *SelectValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case string:
		*v = StringValue(val)
	case float64:
		*v = NumberValue(val)
	default:
		return fmt.Errorf("select value must be a string or a number, got %s", bytes.TrimSpace(data))
	}
	return nil
}

func (*TextField) FieldType() FieldType     { return FieldText }
func (*CheckboxField) FieldType() FieldType { return FieldCheckbox }
func (*TextAreaField) FieldType() FieldType { return FieldTextArea }
func (*SelectField) FieldType() FieldType   { return FieldSelect }

func (f *TextField) FieldName() string     { return f.Name }
func (f *CheckboxField) FieldName() string { return f.Name }
func (f *TextAreaField) FieldName() string { return f.Name }
func (f *SelectField) FieldName() string   { return f.Name }

func (f *TextField) FieldTitle() string     { return f.Title }
func (f *CheckboxField) FieldTitle() string { return f.Title }
func (f *TextAreaField) FieldTitle() string { return f.Title }
func (f *SelectField) FieldTitle() string   { return f.Title }

func (*TextField) isField()     {}
func (*CheckboxField) isField() {}
func (*TextAreaField) isField() {}
func (*SelectField) isField()   {}

func (f TextField) MarshalJSON() ([]byte, error) {
	type alias TextField
	return marshalTagged(FieldText, alias(f))
}

func (f CheckboxField) MarshalJSON() ([]byte, error) {
	type alias CheckboxField
	return marshalTagged(FieldCheckbox, alias(f))
}

func (f TextAreaField) MarshalJSON() ([]byte, error) {
	type alias TextAreaField
	return marshalTagged(FieldTextArea, alias(f))
}

func (f SelectField) MarshalJSON() ([]byte, error) {
	type alias SelectField
	a := alias(f)
	if a.Items == nil {
		a.Items = []SelectItem{}
	}
	return marshalTagged(FieldSelect, a)
}

func decodeField(data json.RawMessage) (Field, error) {
	var head struct {
		Type FieldType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	var field Field
	switch head.Type {
	case FieldText:
		field = &TextField{}
	case FieldCheckbox:
		field = &CheckboxField{}
	case FieldTextArea:
		field = &TextAreaField{}
	case FieldSelect:
		field = &SelectField{}
	default:
		return nil, protocol.NewSchemaError(document, "fields.type", "unknown field type %q", head.Type)
	}

	if err := json.Unmarshal(data, field); err != nil {
		return nil, err
	}
	return field, nil
}

// validateForm checks what the schema cannot: field names are unique within
// the form, select values are unique within a field, and a select default
// names one of its values.
func validateForm(f *Form) error {
	names := make(map[string]int, len(f.Fields))
	for i, field := range f.Fields {
		path := protocol.JoinPath("fields", i)
		if first, ok := names[field.FieldName()]; ok {
			return protocol.NewSchemaError(document, protocol.JoinPath(path, "name"),
				"duplicate field name %q (first declared at fields[%d])", field.FieldName(), first)
		}
		names[field.FieldName()] = i

		sel, ok := field.(*SelectField)
		if !ok {
			continue
		}
		values := make(map[SelectValue]int, len(sel.Items))
		for j, item := range sel.Items {
			if first, ok := values[item.Value]; ok {
				return protocol.NewSchemaError(document, protocol.JoinPath(path, "items", j, "value"),
					"duplicate select value %q (first declared at items[%d])", item.Value.String(), first)
			}
			values[item.Value] = j
		}
		if sel.Default != nil {
			if _, ok := values[*sel.Default]; !ok {
				return protocol.NewSchemaError(document, protocol.JoinPath(path, "default"),
					"default %q is not one of the select values", sel.Default.String())
			}
		}
	}
	return nil
}

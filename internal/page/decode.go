package page

import (
	"encoding/json"
	"errors"
	"fmt"

	"launcher/internal/protocol"
)

const document = "page"

// Decode parses an extension's standard output as exactly one Page.
//
// It fails with *protocol.ParseError when data is not a single JSON
// document and with *protocol.SchemaError when the document does not match
// the page schema. Validation is all-or-nothing: no partial page is returned.
func Decode(data []byte) (Page, error) {
	raw, err := protocol.Validate(protocol.KindPage, data)
	if err != nil {
		return nil, err
	}

	var head struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, &protocol.ParseError{Document: document, Err: err}
	}

	var p Page
	switch head.Type {
	case TypeList:
		p = &List{}
	case TypeDetail:
		p = &Detail{}
	case TypeForm:
		p = &Form{}
	default:
		return nil, protocol.NewSchemaError(document, "type", "unknown page type %q", head.Type)
	}

	if err := json.Unmarshal(raw, p); err != nil {
		var schemaErr *protocol.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, schemaErr
		}
		return nil, &protocol.ParseError{Document: document, Err: err}
	}

	switch v := p.(type) {
	case *List:
		normalizeList(v)
	case *Detail:
		v.Actions = normalizeActions(v.Actions)
	case *Form:
		if err := validateForm(v); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Encode serializes a page with its discriminant.
func Encode(p Page) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("cannot encode a nil page")
	}
	return json.Marshal(p)
}

func normalizeList(l *List) {
	if l.Items == nil {
		l.Items = []Item{}
	}
	for i := range l.Items {
		if l.Items[i].Accessories == nil {
			l.Items[i].Accessories = []string{}
		}
		l.Items[i].Actions = normalizeActions(l.Items[i].Actions)
	}
}

func normalizeActions(actions []Action) []Action {
	if actions == nil {
		return []Action{}
	}
	return actions
}

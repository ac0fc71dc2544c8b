// Package page models the documents an extension prints in response to a
// payload: pages, the actions attached to them, and the commands those
// actions carry.
//
// Page, Command and Field are closed unions. Only the variants declared in
// this package implement them, and Decode never yields a value with an
// unrecognized discriminant, so a type switch over the variants is exhaustive.
package page

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Type is the discriminant of a Page
type Type string

const (
	TypeList   Type = "list"
	TypeDetail Type = "detail"
	TypeForm   Type = "form"
)

// Page is one of *List, *Detail or *Form.
type Page interface {
	Type() Type
	PageTitle() string
	isPage()
}

// List is a filterable list of items.
type List struct {
	Title string `json:"title,omitempty"`
	// Reload asks the host to re-invoke the extension when the query changes
	// instead of filtering items itself.
	Reload bool   `json:"reload,omitempty"`
	Items  []Item `json:"items"`
}

// Detail shows a markdown document with optional actions.
type Detail struct {
	Title    string   `json:"title,omitempty"`
	Markdown string   `json:"markdown"`
	Actions  []Action `json:"actions,omitempty"`
}

// Form collects values for a set of fields.
type Form struct {
	Title  string  `json:"title,omitempty"`
	Fields []Field `json:"fields,omitempty"`
}

// Item is a single list entry. An empty ID means the item is identified by
// its position. The first action, if any, is the default action.
type Item struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Accessories []string `json:"accessories,omitempty"`
	Actions     []Action `json:"actions,omitempty"`
}

// Action is a user-triggerable operation.
type Action struct {
	Title    string  `json:"title"`
	Key      string  `json:"key,omitempty"`
	OnAction Command `json:"onAction"`
}

func (*List) Type() Type   { return TypeList }
func (*Detail) Type() Type { return TypeDetail }
func (*Form) Type() Type   { return TypeForm }

func (l *List) PageTitle() string   { return l.Title }
func (d *Detail) PageTitle() string { return d.Title }
func (f *Form) PageTitle() string   { return f.Title }

func (*List) isPage()   {}
func (*Detail) isPage() {}
func (*Form) isPage()   {}

func (l List) MarshalJSON() ([]byte, error) {
	type alias List
	a := alias(l)
	if a.Items == nil {
		a.Items = []Item{}
	}
	return json.Marshal(struct {
		Type Type `json:"type"`
		alias
	}{TypeList, a})
}

func (d Detail) MarshalJSON() ([]byte, error) {
	type alias Detail
	return json.Marshal(struct {
		Type Type `json:"type"`
		alias
	}{TypeDetail, alias(d)})
}

func (f Form) MarshalJSON() ([]byte, error) {
	type alias Form
	return json.Marshal(struct {
		Type Type `json:"type"`
		alias
	}{TypeForm, alias(f)})
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title    string          `json:"title"`
		Key      string          `json:"key"`
		OnAction json.RawMessage `json:"onAction"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	cmd, err := decodeCommand(raw.OnAction)
	if err != nil {
		return err
	}

	a.Title = raw.Title
	a.Key = raw.Key
	a.OnAction = cmd
	return nil
}

func (f *Form) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title  string            `json:"title"`
		Fields []json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	f.Title = raw.Title
	f.Fields = nil
	for _, fieldData := range raw.Fields {
		field, err := decodeField(fieldData)
		if err != nil {
			return err
		}
		f.Fields = append(f.Fields, field)
	}
	return nil
}

// Actions returns the actions reachable from the page itself: a detail's
// actions, or nothing for lists and forms whose actions live on items.
func Actions(p Page) []Action {
	if d, ok := p.(*Detail); ok {
		return d.Actions
	}
	return nil
}

// DefaultAction returns the first action, which the primary key triggers.
func DefaultAction(actions []Action) (Action, bool) {
	if len(actions) == 0 {
		return Action{}, false
	}
	return actions[0], true
}

// FindAction resolves ref against actions: first as a shortcut key, then as
// a 1-based position.
func FindAction(actions []Action, ref string) (Action, bool) {
	for _, a := range actions {
		if a.Key != "" && a.Key == ref {
			return a, true
		}
	}
	if idx, err := strconv.Atoi(ref); err == nil && idx >= 1 && idx <= len(actions) {
		return actions[idx-1], true
	}
	return Action{}, false
}

// FindItem resolves ref against the list: first as an item id, then as a
// 1-based position.
func (l *List) FindItem(ref string) (Item, bool) {
	for _, item := range l.Items {
		if item.ID != "" && item.ID == ref {
			return item, true
		}
	}
	if idx, err := strconv.Atoi(ref); err == nil && idx >= 1 && idx <= len(l.Items) {
		return l.Items[idx-1], true
	}
	return Item{}, false
}

// Filter returns the items whose title, subtitle or accessories contain
// query, case-insensitively, preserving order.
func (l *List) Filter(query string) []Item {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return l.Items
	}

	var out []Item
	for _, item := range l.Items {
		haystack := []string{item.Title, item.Subtitle}
		haystack = append(haystack, item.Accessories...)
		for _, s := range haystack {
			if strings.Contains(strings.ToLower(s), query) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

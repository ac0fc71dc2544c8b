package host

import (
	"fmt"
	"strconv"

	"launcher/internal/manifest"
	"launcher/internal/page"
)

// ParamForm builds the form a host shows when a command is launched without
// some of its required params.
func ParamForm(spec manifest.CommandSpec, missing []manifest.ParamSpec) *page.Form {
	form := &page.Form{Title: spec.Title}
	for _, p := range missing {
		form.Fields = append(form.Fields, paramField(p))
	}
	return form
}

func paramField(p manifest.ParamSpec) page.Field {
	if p.Type == manifest.ParamBoolean {
		f := &page.CheckboxField{Name: p.Name, Title: p.Title}
		if b, ok := p.Default.(bool); ok {
			f.Default = b
		}
		return f
	}

	f := &page.TextField{Name: p.Name, Title: p.Title}
	if p.Default != nil {
		f.Default = fmt.Sprint(p.Default)
	}
	if p.Type == manifest.ParamNumber {
		f.Placeholder = "number"
	}
	return f
}

// FormParams converts submitted form values into params typed by the
// command's param specs. Values for undeclared names pass through as strings.
func FormParams(spec manifest.CommandSpec, values map[string]string) (map[string]any, error) {
	params := make(map[string]any, len(values))
	for name, raw := range values {
		p, ok := spec.Param(name)
		if !ok {
			params[name] = raw
			continue
		}
		switch p.Type {
		case manifest.ParamBoolean:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("param %q: expected a boolean, got %q", name, raw)
			}
			params[name] = b
		case manifest.ParamNumber:
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("param %q: expected a number, got %q", name, raw)
			}
			params[name] = n
		default:
			params[name] = raw
		}
	}
	return params, nil
}

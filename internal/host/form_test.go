package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launcher/internal/manifest"
	"launcher/internal/page"
)

var searchSpec = manifest.CommandSpec{
	Name:  "search",
	Title: "Search",
	Mode:  manifest.ModeFilter,
	Params: []manifest.ParamSpec{
		{Name: "query", Title: "Query", Type: manifest.ParamText},
		{Name: "limit", Title: "Limit", Type: manifest.ParamNumber, Default: 10.0},
		{Name: "exact", Title: "Exact", Type: manifest.ParamBoolean},
	},
}

func TestParamForm(t *testing.T) {
	form := ParamForm(searchSpec, searchSpec.Params)
	assert.Equal(t, "Search", form.Title)
	require.Len(t, form.Fields, 3)

	assert.Equal(t, &page.TextField{Name: "query", Title: "Query"}, form.Fields[0])
	assert.Equal(t, &page.TextField{Name: "limit", Title: "Limit", Default: "10", Placeholder: "number"}, form.Fields[1])
	assert.Equal(t, &page.CheckboxField{Name: "exact", Title: "Exact"}, form.Fields[2])

	_, err := page.Encode(form)
	assert.NoError(t, err)
}

func TestParamForm_OnlyMissing(t *testing.T) {
	missing := searchSpec.MissingParams(map[string]any{"query": "x"})
	form := ParamForm(searchSpec, missing)
	require.Len(t, form.Fields, 1)
	assert.Equal(t, "exact", form.Fields[0].FieldName())
}

func TestFormParams(t *testing.T) {
	params, err := FormParams(searchSpec, map[string]string{
		"query": "golang",
		"limit": "5",
		"exact": "true",
		"extra": "kept",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"query": "golang", "limit": 5.0, "exact": true, "extra": "kept"}, params)

	_, err = FormParams(searchSpec, map[string]string{"limit": "lots"})
	assert.ErrorContains(t, err, `param "limit"`)
}

package manifest

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launcher/internal/protocol"
)

const rssManifest = `{
  "title": "RSS",
  "description": "Manage your RSS feeds",
  "commands": [
    {
      "name": "show",
      "title": "Show a feed",
      "mode": "filter",
      "params": [{"name": "url", "title": "URL", "type": "text"}]
    }
  ]
}`

func requireSchemaError(t *testing.T, err error) *protocol.SchemaError {
	t.Helper()
	require.Error(t, err)
	var schemaErr *protocol.SchemaError
	require.True(t, errors.As(err, &schemaErr), "expected SchemaError, got %T: %v", err, err)
	return schemaErr
}

func TestDecode_Valid(t *testing.T) {
	m, err := Decode([]byte(rssManifest))
	require.NoError(t, err)

	assert.Equal(t, "RSS", m.Title)
	assert.Equal(t, 1, m.EffectiveVersion())
	require.Len(t, m.Commands, 1)

	cmd, ok := m.Command("show")
	require.True(t, ok)
	assert.Equal(t, ModeFilter, cmd.Mode)
	require.Len(t, cmd.Params, 1)
	assert.Equal(t, ParamText, cmd.Params[0].Type)
	assert.True(t, cmd.Params[0].Required())
}

func TestDecode_OpenModeEnum(t *testing.T) {
	m, err := Decode([]byte(`{"title":"t","description":"d","commands":[{"name":"a","title":"A","mode":"something-new"}]}`))
	require.NoError(t, err)
	assert.Equal(t, Mode("something-new"), m.Commands[0].Mode)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantPath string
	}{
		{
			name:     "missing title",
			doc:      `{"description":"d","commands":[]}`,
			wantPath: "title",
		},
		{
			name:     "description wrong type",
			doc:      `{"title":"t","description":3,"commands":[]}`,
			wantPath: "description",
		},
		{
			name:     "duplicate command",
			doc:      `{"title":"t","description":"d","commands":[{"name":"a","title":"A","mode":"filter"},{"name":"a","title":"B","mode":"view"}]}`,
			wantPath: "commands[1].name",
		},
		{
			name:     "duplicate param",
			doc:      `{"title":"t","description":"d","commands":[{"name":"a","title":"A","mode":"filter","params":[{"name":"p","title":"P","type":"text"},{"name":"p","title":"Q","type":"number"}]}]}`,
			wantPath: "commands[0].params[1].name",
		},
		{
			name:     "unknown param type",
			doc:      `{"title":"t","description":"d","commands":[{"name":"a","title":"A","mode":"filter","params":[{"name":"p","title":"P","type":"color"}]}]}`,
			wantPath: "commands[0].params[0].type",
		},
		{
			name:     "default of wrong type",
			doc:      `{"title":"t","description":"d","commands":[{"name":"a","title":"A","mode":"filter","params":[{"name":"p","title":"P","type":"boolean","default":"yes"}]}]}`,
			wantPath: "commands[0].params[0].default",
		},
		{
			name:     "future protocol version",
			doc:      `{"version":2,"title":"t","description":"d","commands":[]}`,
			wantPath: "version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			schemaErr := requireSchemaError(t, err)
			assert.Equal(t, tt.wantPath, schemaErr.Path)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`{"title":`))
	var parseErr *protocol.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   *Manifest
		want *Manifest
	}{
		{
			name: "single command",
			in: &Manifest{
				Title:       "RSS",
				Description: "Manage your RSS feeds",
				Commands: []CommandSpec{
					{Name: "show", Title: "Show a feed", Mode: ModeFilter, Params: []ParamSpec{
						{Name: "url", Title: "URL", Type: ParamText},
					}},
				},
			},
		},
		{
			name: "defaults and optionals",
			in: &Manifest{
				Version:     1,
				Title:       "Tools",
				Description: "Assorted",
				Commands: []CommandSpec{
					{Name: "a", Title: "A", Mode: ModeView},
					{Name: "b", Title: "B", Mode: ModeNoView, Params: []ParamSpec{
						{Name: "verbose", Title: "Verbose", Type: ParamBoolean, Default: false},
						{Name: "limit", Title: "Limit", Type: ParamNumber, Default: float64(10)},
						{Name: "filter", Title: "Filter", Type: ParamText, Optional: true},
					}},
				},
			},
		},
		{
			name: "nil commands",
			in:   &Manifest{Title: "t", Description: "d"},
			want: &Manifest{Title: "t", Description: "d", Commands: []CommandSpec{}},
		},
		{
			name: "empty params",
			in: &Manifest{Title: "t", Description: "d", Commands: []CommandSpec{
				{Name: "a", Title: "A", Mode: ModeView, Params: []ParamSpec{}},
			}},
			want: &Manifest{Title: "t", Description: "d", Commands: []CommandSpec{
				{Name: "a", Title: "A", Mode: ModeView},
			}},
		},
		{
			name: "integer default",
			in: &Manifest{Title: "t", Description: "d", Commands: []CommandSpec{
				{Name: "a", Title: "A", Mode: ModeView, Params: []ParamSpec{
					{Name: "n", Title: "N", Type: ParamNumber, Default: 3},
					{Name: "m", Title: "M", Type: ParamNumber, Default: int64(4)},
				}},
			}},
			want: &Manifest{Title: "t", Description: "d", Commands: []CommandSpec{
				{Name: "a", Title: "A", Mode: ModeView, Params: []ParamSpec{
					{Name: "n", Title: "N", Type: ParamNumber, Default: float64(3)},
					{Name: "m", Title: "M", Type: ParamNumber, Default: float64(4)},
				}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.want
			if want == nil {
				want = tt.in
			}

			data, err := Encode(tt.in)
			require.NoError(t, err)

			decoded, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, want, decoded)
			assert.Equal(t, want, tt.in)
		})
	}
}

func TestEncode_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		in       *Manifest
		wantPath string
	}{
		{
			name:     "empty mode",
			in:       &Manifest{Title: "t", Description: "d", Commands: []CommandSpec{{Name: "a", Title: "A"}}},
			wantPath: "commands[0].mode",
		},
		{
			name:     "empty command name",
			in:       &Manifest{Title: "t", Description: "d", Commands: []CommandSpec{{Title: "A", Mode: ModeView}}},
			wantPath: "commands[0].name",
		},
		{
			name: "default of wrong type",
			in: &Manifest{Title: "t", Description: "d", Commands: []CommandSpec{
				{Name: "a", Title: "A", Mode: ModeView, Params: []ParamSpec{{Name: "n", Title: "N", Type: ParamNumber, Default: "3"}}},
			}},
			wantPath: "commands[0].params[0].default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.in)
			assert.Nil(t, data)
			schemaErr := requireSchemaError(t, err)
			assert.Equal(t, tt.wantPath, schemaErr.Path)
		})
	}
}

func TestManifest_MarshalNilCommands(t *testing.T) {
	data, err := json.Marshal(Manifest{Title: "t", Description: "d"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"t","description":"d","commands":[]}`, string(data))
}

func TestParamSpec_Required(t *testing.T) {
	assert.True(t, ParamSpec{Name: "a", Type: ParamText}.Required())
	assert.False(t, ParamSpec{Name: "a", Type: ParamText, Optional: true}.Required())
	assert.False(t, ParamSpec{Name: "a", Type: ParamText, Default: "x"}.Required())
}

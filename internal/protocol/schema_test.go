package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDocument(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "object", input: `{"type":"list"}`},
		{name: "trailing whitespace", input: "{\"a\":1}\n\t "},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "malformed", input: `{"a":`, wantErr: true},
		{name: "trailing value", input: `{"a":1} {"b":2}`, wantErr: true},
		{name: "trailing garbage", input: `{"a":1}x`, wantErr: true},
		{name: "invalid utf8", input: "{\"a\":\"\xff\"}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDocument("page", []byte(tt.input))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var parseErr *ParseError
			require.Error(t, err)
			assert.True(t, errors.As(err, &parseErr), "expected ParseError, got %T", err)
		})
	}
}

func TestValidate_PageVariants(t *testing.T) {
	valid := []string{
		`{"type":"list","items":[]}`,
		`{"type":"detail","markdown":"# hi"}`,
		`{"type":"form"}`,
		`{"type":"form","fields":[{"type":"select","name":"s","title":"S","items":[{"title":"a","value":1},{"title":"b","value":"b"}]}]}`,
		`{"type":"list","items":[{"title":"x","actions":[{"title":"open","onAction":{"type":"open","target":"https://x","app":[{"name":"firefox","platform":"linux"}]}}]}]}`,
	}
	for _, doc := range valid {
		_, err := Validate(KindPage, []byte(doc))
		assert.NoError(t, err, doc)
	}
}

func TestValidate_SchemaErrorPaths(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		doc      string
		wantPath string
	}{
		{name: "missing page type", kind: KindPage, doc: `{"items":[]}`, wantPath: "type"},
		{name: "unknown page type", kind: KindPage, doc: `{"type":"grid"}`, wantPath: "type"},
		{name: "detail without markdown", kind: KindPage, doc: `{"type":"detail"}`, wantPath: "markdown"},
		{name: "list without items", kind: KindPage, doc: `{"type":"list"}`, wantPath: "items"},
		{name: "item without title", kind: KindPage, doc: `{"type":"list","items":[{"title":"a"},{"subtitle":"b"}]}`, wantPath: "items[1].title"},
		{
			name:     "copy without text",
			kind:     KindPage,
			doc:      `{"type":"detail","markdown":"","actions":[{"title":"c","onAction":{"type":"copy"}}]}`,
			wantPath: "actions[0].onAction.text",
		},
		{
			name:     "unknown command type",
			kind:     KindPage,
			doc:      `{"type":"detail","markdown":"","actions":[{"title":"c","onAction":{"type":"launch"}}]}`,
			wantPath: "actions[0].onAction.type",
		},
		{
			name:     "unknown field type",
			kind:     KindPage,
			doc:      `{"type":"form","fields":[{"type":"slider","name":"a","title":"A"}]}`,
			wantPath: "fields[0].type",
		},
		{
			name:     "unknown param type",
			kind:     KindManifest,
			doc:      `{"title":"t","description":"d","commands":[{"name":"a","title":"A","mode":"filter"},{"name":"b","title":"B","mode":"filter"},{"name":"c","title":"C","mode":"filter","params":[{"name":"p","title":"P","type":"date"}]}]}`,
			wantPath: "commands[2].params[0].type",
		},
		{name: "manifest without commands", kind: KindManifest, doc: `{"title":"t","description":"d"}`, wantPath: "commands"},
		{name: "payload without command", kind: KindPayload, doc: `{"params":{}}`, wantPath: "command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.kind, []byte(tt.doc))
			require.Error(t, err)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr), "expected SchemaError, got %T: %v", err, err)
			assert.Equal(t, tt.wantPath, schemaErr.Path)
			assert.Equal(t, string(tt.kind), schemaErr.Document)
		})
	}
}

func TestValidate_ParseErrorBeforeSchema(t *testing.T) {
	_, err := Validate(KindPage, []byte(`{"type":"list","items":[]}garbage`))

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "commands[2].params[0].type", JoinPath("commands", 2, "params", 0, "type"))
	assert.Equal(t, "name", JoinPath("", "name"))
	assert.Equal(t, "items[3]", JoinPath("items", 3))
}

func TestSchemaEmbedded(t *testing.T) {
	for _, k := range Kinds {
		data, err := Schema(k)
		require.NoError(t, err)
		assert.Contains(t, string(data), "$schema")
	}

	_, err := ParseKind("widget")
	assert.Error(t, err)
}

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"launcher/internal/page"
)

func plainFormatter(format Format) (*Formatter, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewFormatter(&buf, format, true), &buf
}

var feedList = &page.List{
	Title: "Hacker News",
	Items: []page.Item{
		{
			ID:          "1",
			Title:       "Go 1.24 released",
			Subtitle:    "go, release",
			Accessories: []string{"2 hours ago"},
			Actions:     []page.Action{{Title: "Open", OnAction: &page.Open{Target: "https://go.dev"}}},
		},
		{Title: "Untitled"},
	},
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestPage_ListText(t *testing.T) {
	f, buf := plainFormatter(FormatText)
	require.NoError(t, f.Page(feedList))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Hacker News", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "#  TITLE"))
	assert.Contains(t, lines[2], "Go 1.24 released")
	assert.Contains(t, lines[2], "2 hours ago")
	assert.True(t, strings.HasSuffix(lines[2], "Open"))
	assert.True(t, strings.HasPrefix(lines[3], "2  Untitled"))
}

func TestPage_EmptyList(t *testing.T) {
	f, buf := plainFormatter(FormatText)
	require.NoError(t, f.Page(&page.List{}))
	assert.Equal(t, "No items found\n", buf.String())
}

func TestPage_DetailPlain(t *testing.T) {
	f, buf := plainFormatter(FormatText)
	require.NoError(t, f.Page(&page.Detail{
		Title:    "Readme",
		Markdown: "# Hello\n\nworld",
		Actions: []page.Action{
			{Title: "Copy", Key: "c", OnAction: &page.Copy{Text: "world"}},
			{Title: "Back", OnAction: &page.Pop{}},
		},
	}))

	out := buf.String()
	assert.Contains(t, out, "Readme\n# Hello\n\nworld\n")
	assert.Contains(t, out, "  1. Copy [c] copy\n")
	assert.Contains(t, out, "  2. Back pop\n")
}

func TestPage_Form(t *testing.T) {
	f, buf := plainFormatter(FormatText)
	require.NoError(t, f.Page(&page.Form{
		Title: "Login",
		Fields: []page.Field{
			&page.TextField{Name: "user", Title: "User", Default: "me"},
			&page.TextField{Name: "pass", Title: "Password", Default: "hunter2", Secure: true},
			&page.CheckboxField{Name: "remember", Title: "Remember"},
		},
	}))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "******")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "checkbox")
}

func TestPage_JSON(t *testing.T) {
	f, buf := plainFormatter(FormatJSON)
	require.NoError(t, f.Page(feedList))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "list", decoded["type"])

	p, err := page.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, feedList.Items[0].Title, p.(*page.List).Items[0].Title)
}

func TestPage_YAML(t *testing.T) {
	f, buf := plainFormatter(FormatYAML)
	require.NoError(t, f.Page(&page.Detail{Markdown: "true"}))

	assert.Contains(t, buf.String(), "type: detail\n")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "true", decoded["markdown"])
}

func TestTable_DropsEmptyColumns(t *testing.T) {
	f, buf := plainFormatter(FormatText)
	require.NoError(t, f.Table([]string{"NAME", "PATH", "NOTE"}, [][]string{
		{"rss", "/bin/rss", ""},
		{"notes", "/opt/notes.sh"},
	}))

	assert.Equal(t, "NAME   PATH\nrss    /bin/rss\nnotes  /opt/notes.sh\n", buf.String())
}

package dynacmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launcher/internal/manifest"
	"launcher/internal/output"
	"launcher/internal/page"
	"launcher/internal/protocol"
)

const testManifest = `{
  "title": "Feeds",
  "description": "Read feeds",
  "commands": [
    {"name": "list", "title": "List Items", "mode": "filter", "params": [
      {"name": "url", "title": "Feed URL", "type": "text"},
      {"name": "limit", "title": "Limit", "type": "number", "default": 10},
      {"name": "unread", "title": "Unread only", "type": "boolean", "optional": true}
    ]},
    {"name": "mark", "title": "Mark Read", "mode": "no-view"}
  ]
}`

type recordingInvoker struct {
	payloads []manifest.Payload
	pages    map[string]page.Page
}

func (r *recordingInvoker) Invoke(_ context.Context, payload manifest.Payload) (page.Page, error) {
	r.payloads = append(r.payloads, payload)
	if p, ok := r.pages[payload.Command]; ok {
		return p, nil
	}
	return &page.Detail{Markdown: payload.Command}, nil
}

type fakeClipboard struct{ text []string }

func (f *fakeClipboard) WriteAll(text string) error {
	f.text = append(f.text, text)
	return nil
}

type fakeOpener struct{ targets []string }

func (f *fakeOpener) Open(target string, _ *page.Application) error {
	f.targets = append(f.targets, target)
	return nil
}

type harness struct {
	root      *cobra.Command
	invoker   *recordingInvoker
	clipboard *fakeClipboard
	opener    *fakeOpener
	out       *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	m, err := manifest.Decode([]byte(testManifest))
	require.NoError(t, err)

	h := &harness{
		invoker: &recordingInvoker{pages: map[string]page.Page{
			"list": &page.List{Items: []page.Item{
				{ID: "a", Title: "Alpha", Actions: []page.Action{
					{Title: "Open", OnAction: &page.Open{Target: "https://a.example"}},
					{Title: "Copy", Key: "c", OnAction: &page.Copy{Text: "alpha", Exit: true}},
				}},
				{ID: "b", Title: "Beta", Actions: []page.Action{
					{Title: "Details", OnAction: &page.Run{Command: "mark", Params: map[string]any{"id": "b"}}},
				}},
				{ID: "c", Title: "Gamma", Actions: []page.Action{
					{Title: "Archive", OnAction: &page.Run{Command: "archive"}},
				}},
			}},
		}},
		clipboard: &fakeClipboard{},
		opener:    &fakeOpener{},
		out:       &bytes.Buffer{},
	}

	executor := NewExecutor(h.clipboard, h.opener, slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithFormatter(func(f output.Format) *output.Formatter {
			return output.NewFormatter(h.out, f, true)
		})

	h.root = &cobra.Command{Use: "launcher", SilenceUsage: true, SilenceErrors: true}
	h.root.AddCommand(NewBuilder("feeds", m, h.invoker, executor).BuildCommand())
	h.root.SetOut(io.Discard)
	return h
}

func (h *harness) run(args ...string) error {
	h.root.SetArgs(args)
	return h.root.Execute()
}

func TestBuildCommand(t *testing.T) {
	h := newHarness(t)
	feeds, _, err := h.root.Find([]string{"feeds", "list"})
	require.NoError(t, err)
	assert.Equal(t, "list", feeds.Name())

	for _, name := range []string{"url", "limit", "unread", "params-file", "output", "query", "item", "action"} {
		assert.NotNil(t, feeds.Flags().Lookup(name), name)
	}
	assert.Equal(t, "10", feeds.Flags().Lookup("limit").DefValue)
	assert.Contains(t, feeds.Long, "--url (text, required)")
}

func TestExecute_InvokesWithTypedParams(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("feeds", "list", "--url", "https://hnrss.org", "--unread"))

	require.Len(t, h.invoker.payloads, 1)
	assert.Equal(t, manifest.Payload{
		Command: "list",
		Params:  map[string]any{"url": "https://hnrss.org", "limit": 10.0, "unread": true},
	}, h.invoker.payloads[0])
	assert.Contains(t, h.out.String(), "Alpha")
}

func TestExecute_MissingParamsRendersForm(t *testing.T) {
	h := newHarness(t)
	err := h.run("feeds", "list")
	require.ErrorContains(t, err, "missing required params: --url")

	assert.Empty(t, h.invoker.payloads)
	assert.Contains(t, h.out.String(), "List Items")
	assert.Contains(t, h.out.String(), "Feed URL")
}

func TestExecute_ParamsFile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("url: https://example.com/feed\nlimit: 3\nextra: kept\n"), 0o600))

	require.NoError(t, h.run("feeds", "list", "-f", path, "--limit", "5"))
	require.Len(t, h.invoker.payloads, 1)
	assert.Equal(t, map[string]any{"url": "https://example.com/feed", "limit": 5.0, "extra": "kept"}, h.invoker.payloads[0].Params)
}

func TestExecute_DefaultItemActionOpens(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("feeds", "list", "--url", "u", "--item", "a"))
	assert.Equal(t, []string{"https://a.example"}, h.opener.targets)
}

func TestExecute_ActionByKeyExits(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("feeds", "list", "--url", "u", "--item", "1", "--action", "c"))
	assert.Equal(t, []string{"alpha"}, h.clipboard.text)
	assert.Empty(t, h.out.String(), "an exiting action renders nothing")
}

func TestExecute_RunActionPushesPage(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("feeds", "list", "--url", "u", "--query", "bet", "--item", "1"))

	require.Len(t, h.invoker.payloads, 2)
	assert.Equal(t, manifest.Payload{Command: "mark", Params: map[string]any{"id": "b"}}, h.invoker.payloads[1])
	assert.Equal(t, "mark\n", h.out.String())
}

func TestExecute_RunActionUnknownCommand(t *testing.T) {
	h := newHarness(t)
	err := h.run("feeds", "list", "--url", "u", "--item", "c")

	var schemaErr *protocol.SchemaError
	require.True(t, errors.As(err, &schemaErr), "expected SchemaError, got %T: %v", err, err)
	assert.Equal(t, "command", schemaErr.Path)
	assert.Len(t, h.invoker.payloads, 1)
	assert.Empty(t, h.out.String())
}

func TestExecute_UnknownItem(t *testing.T) {
	h := newHarness(t)
	err := h.run("feeds", "list", "--url", "u", "--item", "z")
	assert.ErrorContains(t, err, `no item "z"`)
}

func TestExecute_QueryFilters(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("feeds", "list", "--url", "u", "-q", "alp"))
	assert.Contains(t, h.out.String(), "Alpha")
	assert.NotContains(t, h.out.String(), "Beta")
}

func TestExecute_NoViewRendersNothing(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("feeds", "mark"))
	require.Len(t, h.invoker.payloads, 1)
	assert.Empty(t, h.out.String())
}

func TestExecute_JSONOutput(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("feeds", "list", "--url", "u", "-o", "json"))

	p, err := page.Decode(h.out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, page.TypeList, p.Type())
}

func TestExecute_BadOutputFormat(t *testing.T) {
	h := newHarness(t)
	assert.ErrorContains(t, h.run("feeds", "list", "--url", "u", "-o", "xml"), "unknown output format")
}

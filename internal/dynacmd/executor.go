package dynacmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"launcher/internal/host"
	"launcher/internal/manifest"
	"launcher/internal/output"
	"launcher/internal/page"
)

// Executor runs extension commands through the action dispatcher
type Executor struct {
	clipboard host.Clipboard
	opener    host.Opener
	logger    *slog.Logger
	formatter func(output.Format) *output.Formatter
}

// NewExecutor creates a new command executor
func NewExecutor(clipboard host.Clipboard, opener host.Opener, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		clipboard: clipboard,
		opener:    opener,
		logger:    logger,
		formatter: output.ForStdout,
	}
}

// WithFormatter replaces how output formatters are created.
func (e *Executor) WithFormatter(fn func(output.Format) *output.Formatter) *Executor {
	e.formatter = fn
	return e
}

// Execute runs one manifest command
func (e *Executor) Execute(cmd *cobra.Command, invoker host.Invoker, m *manifest.Manifest, spec manifest.CommandSpec) error {
	params, err := e.collectInput(cmd, spec)
	if err != nil {
		return fmt.Errorf("failed to collect input: %w", err)
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	if missing := spec.MissingParams(params); len(missing) > 0 {
		if err := e.formatter(format).Page(host.ParamForm(spec, missing)); err != nil {
			return err
		}
		names := make([]string, len(missing))
		for i, p := range missing {
			names[i] = "--" + p.Name
		}
		return fmt.Errorf("missing required params: %s", strings.Join(names, ", "))
	}

	payload := manifest.Payload{Command: spec.Name, Params: params}
	return e.Show(cmd, invoker, m, payload, spec.Mode)
}

// Show invokes payload, optionally triggers one action of the resulting page,
// and renders whatever page is on top afterwards. Every invocation, including
// ones triggered by the page's actions, is validated against m.
func (e *Executor) Show(cmd *cobra.Command, invoker host.Invoker, m *manifest.Manifest, payload manifest.Payload, mode manifest.Mode) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	query, _ := cmd.Flags().GetString("query")
	itemRef, _ := cmd.Flags().GetString("item")
	actionRef, _ := cmd.Flags().GetString("action")

	d := host.NewDispatcher(invoker, e.clipboard, e.opener,
		host.WithManifest(m),
		host.WithLogger(e.logger),
	)
	if err := d.Push(ctx, payload.Command, payload.Params); err != nil {
		return err
	}

	if itemRef != "" || actionRef != "" {
		top, _ := d.Top()
		action, err := selectAction(top.Page, query, itemRef, actionRef)
		if err != nil {
			return err
		}
		e.logger.Debug("triggering action", "title", action.Title, "type", action.OnAction.CommandType())
		if err := d.Dispatch(ctx, action.OnAction); err != nil {
			return err
		}
		if d.State() == host.StateExited {
			return nil
		}
	} else if mode == manifest.ModeNoView {
		return nil
	}

	top, _ := d.Top()
	return e.formatter(format).Page(filtered(top.Page, query))
}

// selectAction resolves --item and --action against a page. An item without
// an action selects the item's default action.
func selectAction(p page.Page, query, itemRef, actionRef string) (page.Action, error) {
	actions := page.Actions(p)

	if list, ok := p.(*page.List); ok {
		if itemRef == "" {
			return page.Action{}, fmt.Errorf("--item is required to act on a list")
		}
		view := &page.List{Items: list.Filter(query)}
		item, ok := view.FindItem(itemRef)
		if !ok {
			return page.Action{}, fmt.Errorf("no item %q in list of %d items", itemRef, len(view.Items))
		}
		actions = item.Actions
	} else if itemRef != "" {
		return page.Action{}, fmt.Errorf("--item only applies to list pages, got a %s page", p.Type())
	}

	if actionRef == "" {
		action, ok := page.DefaultAction(actions)
		if !ok {
			return page.Action{}, fmt.Errorf("no actions available")
		}
		return action, nil
	}

	action, ok := page.FindAction(actions, actionRef)
	if !ok {
		return page.Action{}, fmt.Errorf("no action %q among %d actions", actionRef, len(actions))
	}
	return action, nil
}

func filtered(p page.Page, query string) page.Page {
	list, ok := p.(*page.List)
	if !ok || query == "" {
		return p
	}
	view := *list
	view.Items = list.Filter(query)
	return &view
}

func outputFormat(cmd *cobra.Command) (output.Format, error) {
	s, _ := cmd.Flags().GetString("output")
	if s == "" {
		return output.FormatText, nil
	}
	return output.ParseFormat(s)
}

func (e *Executor) collectInput(cmd *cobra.Command, spec manifest.CommandSpec) (map[string]any, error) {
	// 1. Apply defaults
	result := spec.WithDefaults(nil)

	// 2. Load from file if -f provided
	filePath, _ := cmd.Flags().GetString("params-file")
	if filePath != "" {
		fileData, err := loadYAMLFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load file: %w", err)
		}
		for k, v := range fileData {
			result[k] = normalizeNumber(v)
		}
	}

	// 3. Override with flags
	for _, p := range spec.Params {
		if !cmd.Flags().Changed(p.Name) {
			continue
		}
		switch p.Type {
		case manifest.ParamBoolean:
			val, _ := cmd.Flags().GetBool(p.Name)
			result[p.Name] = val
		case manifest.ParamNumber:
			val, _ := cmd.Flags().GetFloat64(p.Name)
			result[p.Name] = val
		default:
			val, _ := cmd.Flags().GetString(p.Name)
			result[p.Name] = val
		}
	}

	return result, nil
}

// normalizeNumber turns YAML integers into the float64 JSON decoding would
// produce, so params look the same whichever way they arrived.
func normalizeNumber(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	}
	return v
}

func loadYAMLFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return result, nil
}

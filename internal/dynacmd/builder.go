package dynacmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"launcher/internal/host"
	"launcher/internal/manifest"
)

// Builder builds Cobra commands from an extension manifest
type Builder struct {
	name     string
	manifest *manifest.Manifest
	invoker  host.Invoker
	executor *Executor
}

// NewBuilder creates a new command builder for the extension called name.
func NewBuilder(name string, m *manifest.Manifest, invoker host.Invoker, executor *Executor) *Builder {
	return &Builder{
		name:     name,
		manifest: m,
		invoker:  invoker,
		executor: executor,
	}
}

// BuildCommand returns `<extension>` with one subcommand per manifest command.
func (b *Builder) BuildCommand() *cobra.Command {
	parent := &cobra.Command{
		Use:   b.name,
		Short: b.manifest.Title,
		Long:  strings.TrimSpace(b.manifest.Title + "\n\n" + b.manifest.Description),
	}

	for _, spec := range b.manifest.Commands {
		parent.AddCommand(b.buildLeafCommand(spec))
	}

	return parent
}

func (b *Builder) buildLeafCommand(spec manifest.CommandSpec) *cobra.Command {
	cmd := &cobra.Command{
		Use:   spec.Name,
		Short: spec.Title,
		Long:  b.buildLong(spec),
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return b.executor.Execute(c, b.invoker, b.manifest, spec)
		},
	}

	addParamFlags(cmd, spec.Params)
	cmd.Flags().StringP("params-file", "f", "", "YAML file with param values")
	AddPageFlags(cmd)

	return cmd
}

func (b *Builder) buildLong(spec manifest.CommandSpec) string {
	var sb strings.Builder
	sb.WriteString(spec.Title)
	fmt.Fprintf(&sb, "\n\nMode: %s", spec.Mode)
	if len(spec.Params) == 0 {
		return sb.String()
	}
	sb.WriteString("\n\nParams:")
	for _, p := range spec.Params {
		req := "optional"
		if p.Required() {
			req = "required"
		}
		fmt.Fprintf(&sb, "\n  --%s (%s, %s)  %s", p.Name, p.Type, req, p.Title)
	}
	return sb.String()
}

func addParamFlags(cmd *cobra.Command, params []manifest.ParamSpec) {
	for _, p := range params {
		switch p.Type {
		case manifest.ParamBoolean:
			def, _ := p.Default.(bool)
			cmd.Flags().Bool(p.Name, def, p.Title)
		case manifest.ParamNumber:
			def, _ := p.Default.(float64)
			cmd.Flags().Float64(p.Name, def, p.Title)
		default:
			def, _ := p.Default.(string)
			cmd.Flags().String(p.Name, def, p.Title)
		}
	}
}

// AddPageFlags registers the flags that control how a page is shown and
// which of its actions to trigger.
func AddPageFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "text", "Output format: text, json or yaml")
	cmd.Flags().StringP("query", "q", "", "Filter list items")
	cmd.Flags().String("item", "", "List item to act on, by id or 1-based index")
	cmd.Flags().String("action", "", "Action to trigger, by shortcut key or 1-based index")
}

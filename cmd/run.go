package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"launcher/internal/dynacmd"
	"launcher/internal/extension"
	"launcher/internal/manifest"
)

var runCmd = &cobra.Command{
	Use:   "run <entrypoint> [payload-json]",
	Short: "Invoke an executable directly",
	Long: `Invoke any executable as an extension without registering it.

Without a payload the executable's manifest is printed. A payload is checked
against that manifest before it is sent. With a payload such as
'{"command":"show","params":{"url":"https://hnrss.org/frontpage"}}' the page it
returns is rendered, and --item/--action can trigger one of its actions.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRun,
}

func init() {
	dynacmd.AddPageFlags(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	entrypoint, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(entrypoint), filepath.Ext(entrypoint))
	proc := a.runner.Bind(extension.Extension{Name: name, Entrypoint: entrypoint})

	data, err := proc.ReadManifest(contextOf(cmd))
	if err != nil {
		return err
	}
	m, err := manifest.Decode(data)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		format, _ := cmd.Flags().GetString("output")
		if format == "yaml" {
			return newFormatter(format, cmd).YAML(m)
		}
		return newFormatter("json", cmd).JSON(m)
	}

	payload, err := m.DecodePayload([]byte(args[1]))
	if err != nil {
		return fmt.Errorf("invalid payload argument: %w", err)
	}

	return newExecutor().Show(cmd, proc, m, payload, manifest.ModeView)
}

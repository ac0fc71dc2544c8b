package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"launcher/internal/manifest"
	"launcher/internal/output"
	"launcher/internal/page"
	"launcher/internal/protocol"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest|payload|page> [file]",
	Short: "Validate a protocol document",
	Long: `Validate a manifest, payload or page read from a file, or from stdin when no
file is given. Violations are reported with the path of the offending value,
e.g. commands[2].params[0].type.`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"manifest", "payload", "page"},
	RunE:      runValidate,
}

func init() {
	validateCmd.Flags().StringP("manifest", "m", "", "Manifest file to check a payload's command and params against")
}

func runValidate(cmd *cobra.Command, args []string) error {
	kind, err := protocol.ParseKind(args[0])
	if err != nil {
		return err
	}

	var data []byte
	if len(args) == 2 && args[1] != "-" {
		data, err = os.ReadFile(args[1])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", kind, err)
	}

	summary, err := validateDocument(cmd, kind, data)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "valid %s: %s\n", kind, summary)
	return nil
}

func validateDocument(cmd *cobra.Command, kind protocol.Kind, data []byte) (string, error) {
	switch kind {
	case protocol.KindManifest:
		m, err := manifest.Decode(data)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%q with %d commands", m.Title, len(m.Commands)), nil

	case protocol.KindPayload:
		against, _ := cmd.Flags().GetString("manifest")
		if against == "" {
			p, err := manifest.DecodePayload(data)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("command %q with %d params", p.Command, len(p.Params)), nil
		}
		raw, err := os.ReadFile(against)
		if err != nil {
			return "", err
		}
		m, err := manifest.Decode(raw)
		if err != nil {
			return "", fmt.Errorf("manifest %s: %w", against, err)
		}
		p, err := m.DecodePayload(data)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("command %q with %d params", p.Command, len(p.Params)), nil

	default:
		p, err := page.Decode(data)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s page", p.Type()), nil
	}
}

func newFormatter(format string, cmd *cobra.Command) *output.Formatter {
	f, err := output.ParseFormat(format)
	if err != nil {
		f = output.FormatText
	}
	return output.NewFormatter(cmd.OutOrStdout(), f, true)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"launcher/internal/protocol"
)

var schemaCmd = &cobra.Command{
	Use:       "schema <manifest|payload|page>",
	Short:     "Print the JSON Schema of a protocol document",
	Args:      cobra.ExactArgs(1),
	ValidArgs: kindNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := protocol.ParseKind(args[0])
		if err != nil {
			return err
		}
		data, err := protocol.Schema(kind)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(data), "\n"))
		return err
	},
}

func kindNames() []string {
	names := make([]string, len(protocol.Kinds))
	for i, k := range protocol.Kinds {
		names[i] = string(k)
	}
	return names
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"launcher/internal/manifest"
)

// Version is set at build time with -ldflags "-X launcher/cmd.Version=..."
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the launcher version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "launcher %s (protocol version %d)\n", Version, manifest.ProtocolVersion)
	},
}

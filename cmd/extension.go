package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"launcher/internal/extension"
	"launcher/internal/output"
)

var extensionCmd = &cobra.Command{
	Use:     "extension",
	Aliases: []string{"ext"},
	Short:   "Manage registered extensions",
}

var extensionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered extensions",
	Args:  cobra.NoArgs,
	RunE:  runExtensionList,
}

var extensionAddCmd = &cobra.Command{
	Use:   "add <name> <entrypoint>",
	Short: "Register an extension",
	Long: `Register an executable as an extension. The executable is run once without
arguments and must print a valid manifest.`,
	Args: cobra.ExactArgs(2),
	RunE: runExtensionAdd,
}

var extensionRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Unregister an extension",
	Args:    cobra.ExactArgs(1),
	RunE:    runExtensionRemove,
}

var extensionRefreshCmd = &cobra.Command{
	Use:   "refresh [name]",
	Short: "Refetch cached manifests",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExtensionRefresh,
}

func init() {
	extensionCmd.AddCommand(extensionListCmd)
	extensionCmd.AddCommand(extensionAddCmd)
	extensionCmd.AddCommand(extensionRemoveCmd)
	extensionCmd.AddCommand(extensionRefreshCmd)
}

func runExtensionList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	exts := a.cfg.Registry().All()
	if len(exts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No extensions registered. Add one with 'launcher extension add <name> <entrypoint>'.")
		return nil
	}

	rows := make([][]string, 0, len(exts))
	for _, ext := range exts {
		title, commands := "", ""
		if m, err := a.loader.Load(contextOf(cmd), a.runner.Bind(ext)); err != nil {
			title = "error: " + firstLine(err.Error())
		} else {
			title = m.Title
			commands = fmt.Sprint(len(m.Commands))
		}
		rows = append(rows, []string{ext.Name, title, commands, ext.Path()})
	}

	f := output.NewFormatter(cmd.OutOrStdout(), output.FormatText, true)
	return f.Table([]string{"NAME", "TITLE", "COMMANDS", "ENTRYPOINT"}, rows)
}

func runExtensionAdd(cmd *cobra.Command, args []string) error {
	name, entrypoint := args[0], args[1]

	if existing, _, err := rootCmd.Find([]string{name}); err == nil && existing != rootCmd && existing.GroupID != extensionGroupID {
		return fmt.Errorf("extension name %q is reserved by a built-in command", name)
	}

	abs, err := filepath.Abs(entrypoint)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("entrypoint not found: %w", err)
	}
	if info.IsDir() || (runtime.GOOS != "windows" && info.Mode()&0o111 == 0) {
		return fmt.Errorf("entrypoint %s is not an executable file", abs)
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ext := extension.Extension{Name: name, Entrypoint: abs}
	m, err := a.loader.Refresh(contextOf(cmd), a.runner.Bind(ext))
	if err != nil {
		return fmt.Errorf("extension %s did not provide a valid manifest: %w", name, err)
	}

	if err := a.cfg.AddExtension(name, ext); err != nil {
		return err
	}
	if err := a.cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) with %d commands\n", name, m.Title, len(m.Commands))
	return nil
}

func runExtensionRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	ext, err := a.cfg.Registry().Lookup(args[0])
	if err != nil {
		return err
	}
	if err := a.loader.Forget(a.runner.Bind(ext)); err != nil {
		logger.Warn("failed to drop cached manifest", "extension", ext.Name, "error", err)
	}
	if err := a.cfg.RemoveExtension(ext.Name); err != nil {
		return err
	}
	if err := a.cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", ext.Name)
	return nil
}

func runExtensionRefresh(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	exts := a.cfg.Registry().All()
	if len(args) == 1 {
		ext, err := a.cfg.Registry().Lookup(args[0])
		if err != nil {
			return err
		}
		exts = []extension.Extension{ext}
	}

	failed := 0
	for _, ext := range exts {
		if _, err := a.loader.Refresh(contextOf(cmd), a.runner.Bind(ext)); err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", ext.Name, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Refreshed %s\n", ext.Name)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d extensions failed to refresh", failed, len(exts))
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"launcher/internal/cache"
	"launcher/internal/config"
	"launcher/internal/dynacmd"
	"launcher/internal/extension"
	"launcher/internal/host"
	"launcher/internal/logging"
	"launcher/internal/manifest"
)

const extensionGroupID = "extensions"

var rootCmd = &cobra.Command{
	Use:   "launcher",
	Short: "Run launcher extensions from the command line",
	Long: `launcher runs extensions: executables that describe their commands in a JSON
manifest and answer each invocation with a page (a list, a detail view or a form).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("log-level") {
			level, _ := cmd.Flags().GetString("log-level")
			logger = logging.Setup(os.Stderr, level)
		}
	},
}

// logger is configured from config before flags are parsed, then again from
// --log-level when given.
var logger = slog.Default()

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.AddGroup(&cobra.Group{ID: extensionGroupID, Title: "Extensions:"})

	// Static commands - always available
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(extensionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(mcpCmd)

	// Dynamic commands from extension manifests
	if err := registerDynamicCommands(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load extensions: %v\n", err)
	}
}

// app bundles what commands need to talk to extensions
type app struct {
	cfg    *config.Config
	runner *extension.Runner
	loader *manifest.Loader
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger = logging.Setup(os.Stderr, cfg.GetLogLevel())

	cacheDir, err := config.CacheDir()
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		runner: extension.NewRunner(cfg.GetTimeout(), logger),
		loader: manifest.NewLoader(cache.NewManager(cacheDir), cfg.GetManifestTTL(), logger),
	}, nil
}

func newExecutor() *dynacmd.Executor {
	return dynacmd.NewExecutor(host.SystemClipboard{}, host.SystemOpener{}, logger)
}

// loadedExtension is an extension whose manifest was fetched successfully
type loadedExtension struct {
	process  *extension.Process
	manifest *manifest.Manifest
}

// loadExtensions fetches every registered manifest. Extensions that fail are
// logged and skipped.
func (a *app) loadExtensions(ctx context.Context) []loadedExtension {
	var loaded []loadedExtension
	for _, ext := range a.cfg.Registry().All() {
		proc := a.runner.Bind(ext)
		m, err := a.loader.Load(ctx, proc)
		if err != nil {
			logger.Warn("skipping extension", "extension", ext.Name, "error", err)
			continue
		}
		loaded = append(loaded, loadedExtension{process: proc, manifest: m})
	}
	return loaded
}

func registerDynamicCommands() error {
	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.GetTimeout()+5*time.Second)
	defer cancel()

	executor := newExecutor()
	for _, ext := range a.loadExtensions(ctx) {
		name := ext.process.Extension().Name
		if existing, _, err := rootCmd.Find([]string{name}); err == nil && existing != rootCmd {
			logger.Warn("extension name shadows a built-in command, skipping", "extension", name)
			continue
		}

		cmd := dynacmd.NewBuilder(name, ext.manifest, ext.process, executor).BuildCommand()
		cmd.GroupID = extensionGroupID
		rootCmd.AddCommand(cmd)
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/open-edge-platform/client-launcher/internal/config"
	"github.com/open-edge-platform/client-launcher/internal/utils/logger"
	"github.com/open-edge-platform/client-launcher/internal/utils/network"
)

// Global command flags
var (
	configFile string
	logLevel   string
	verbose    bool
)

// Per-invocation state set by the logging hook
var (
	runID        string
	settingsFile string
)

// skipSettingsAnnotation marks commands that run without loading settings.
const skipSettingsAnnotation = "client-launcher/skip-settings"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	network.UserAgent = "client-launcher/" + Version

	rootCmd := createRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// createRootCommand builds the command tree.
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "client-launcher",
		Short: "Synchronizes and launches the game client",
		Long: `client-launcher fetches the remote client configuration, brings the
local client cache up to date and starts the client binary.

Running it without a subcommand is the same as "client-launcher run".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          executeRun,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Settings file (default: ./client-launcher.yml, then ~/.config/client-launcher/config.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides settings)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	addSyncFlags(rootCmd, true)

	rootCmd.AddCommand(createRunCommand())
	rootCmd.AddCommand(createSyncCommand())
	rootCmd.AddCommand(createStatusCommand())
	rootCmd.AddCommand(createShowConfigCommand())
	rootCmd.AddCommand(createValidateCommand())
	rootCmd.AddCommand(createVersionCommand())

	attachLoggingHooks(rootCmd)
	return rootCmd
}

// attachLoggingHooks installs the settings and logging setup on every command.
func attachLoggingHooks(root *cobra.Command) {
	root.PersistentPreRunE = initializeCommand
	for _, sub := range root.Commands() {
		sub.PersistentPreRunE = initializeCommand
	}
}

// resolveRequestedLogLevel returns the level asked for on the command line,
// or "" to fall back to the settings.
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd == nil {
		return ""
	}
	if f := cmd.Flags().Lookup("verbose"); f != nil && f.Changed && f.Value.String() == "true" {
		return "debug"
	}
	return ""
}

func initializeCommand(cmd *cobra.Command, _ []string) error {
	settingsFile = ""
	if cmd.Annotations[skipSettingsAnnotation] != "true" {
		cfg, used, err := config.Load(configFile)
		if err != nil {
			return err
		}
		config.SetGlobal(cfg)
		settingsFile = used
	}

	lvl := resolveRequestedLogLevel(cmd)
	if lvl == "" {
		lvl = config.GlConfig.Logging.Level
	}
	if _, err := logger.Init(lvl); err != nil {
		return err
	}
	config.GlConfig.Logging.Level = logger.Level()

	runID = uuid.NewString()
	logger.Set(logger.Logger().With("run", runID[:8]))
	if settingsFile != "" {
		logger.Logger().Debugf("using settings from %s", settingsFile)
	}
	return nil
}

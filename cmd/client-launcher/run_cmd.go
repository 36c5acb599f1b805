package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/open-edge-platform/client-launcher/internal/config"
	"github.com/open-edge-platform/client-launcher/internal/utils/logger"
)

// Run command flags
var (
	binaryTypeFlag string
	cacheDirFlag   string
	workersFlag    int
	noLaunch       bool
	showProgress   bool
)

// addSyncFlags registers the flags shared by run and sync. launch adds
// --no-launch.
func addSyncFlags(cmd *cobra.Command, launch bool) {
	cmd.Flags().StringVar(&binaryTypeFlag, "binary-type", "",
		"Client binary type: auto, windows32, windows64, linux, osx, windowscompat32, windowscompat64 or a numeric code")
	cmd.Flags().StringVar(&cacheDirFlag, "cache-dir", "",
		"Client cache directory (default: ~/NXTLauncher)")
	cmd.Flags().IntVar(&workersFlag, "workers", 0,
		"Number of files downloaded concurrently (default from settings)")
	cmd.Flags().BoolVar(&showProgress, "progress", false,
		"Show a progress bar while synchronizing")
	if launch {
		cmd.Flags().BoolVar(&noLaunch, "no-launch", false,
			"Synchronize the cache but do not start the client")
	}
}

// createRunCommand creates the run subcommand
func createRunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [flags]",
		Short: "Synchronize the client cache and launch the client",
		Long: `Run loads the remote client configuration, downloads every missing or
outdated file of the client manifest into the cache and starts the client
binary with the configured parameters. The first file that cannot be fetched
aborts the run and nothing is launched.`,
		Args: cobra.NoArgs,
		RunE: executeRun,
	}
	addSyncFlags(runCmd, true)
	return runCmd
}

// createSyncCommand creates the sync subcommand
func createSyncCommand() *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync [flags]",
		Short: "Synchronize the client cache without launching",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, false)
		},
	}
	addSyncFlags(syncCmd, false)
	return syncCmd
}

// applyCommandFlags overlays explicitly set flags onto the settings.
func applyCommandFlags(flags *pflag.FlagSet, cfg *config.GlobalConfig) error {
	if flags.Changed("binary-type") {
		cfg.BinaryType = binaryTypeFlag
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = cacheDirFlag
	}
	if flags.Changed("workers") {
		cfg.Workers = workersFlag
	}
	return cfg.Validate()
}

// executeRun handles the run command logic
func executeRun(cmd *cobra.Command, _ []string) error {
	return runPipeline(cmd, !noLaunch)
}

// runPipeline loads the client config, synchronizes the cache and, when
// launch is set, starts the client.
func runPipeline(cmd *cobra.Command, launch bool) error {
	log := logger.Logger()
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg := config.GlConfig
	if err := applyCommandFlags(cmd.Flags(), cfg); err != nil {
		return err
	}

	sess, err := newSession(cfg, true)
	if err != nil {
		return err
	}

	cc, err := sess.loadClientConfig(ctx)
	if err != nil {
		return sess.finish(err)
	}

	var progress io.Writer
	if showProgress {
		progress = cmd.ErrOrStderr()
	}
	if _, err := sess.syncFiles(ctx, cc, progress, out); err != nil {
		return sess.finish(err)
	}

	if !launch {
		log.Infof("cache at %s is up to date, not launching", sess.cacheRoot)
		return sess.finish(nil)
	}

	pid, err := sess.launch(ctx, cc)
	if err != nil {
		return sess.finish(err)
	}
	fmt.Fprintf(out, "client started (pid %d)\n", pid)
	return sess.finish(nil)
}

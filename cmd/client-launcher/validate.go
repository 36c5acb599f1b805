package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/client-launcher/internal/config"
	"github.com/open-edge-platform/client-launcher/internal/config/validate"
	"github.com/open-edge-platform/client-launcher/internal/utils/logger"
)

// createValidateCommand creates the validate subcommand
func createValidateCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate [flags] SETTINGS_FILE",
		Short: "Validate a launcher settings file",
		Long: `Validate a launcher settings file against the settings schema without
running anything. The file must be YAML. Value ranges such as the worker count
and the binary type are checked as well.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipSettingsAnnotation: "true"},
		RunE:        executeValidate,
	}

	return validateCmd
}

// executeValidate handles the validate command logic
func executeValidate(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	settingsPath := args[0]

	log.Infof("validating settings file: %s", settingsPath)

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return fmt.Errorf("reading settings file: %w", err)
	}
	if err := validate.ValidateSettingsYAML(data); err != nil {
		return fmt.Errorf("settings validation failed: %v", err)
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return fmt.Errorf("settings validation failed: %v", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", settingsPath)

	if verbose {
		bt, _ := cfg.ResolveBinaryType()
		log.Infof("Binary type: %s", bt)
		log.Infof("Config URL: %s", cfg.ConfigURL)
		log.Infof("Workers: %d, timeout: %s, compression: %s", cfg.Workers, cfg.Timeout, cfg.Compression)
	}
	return nil
}

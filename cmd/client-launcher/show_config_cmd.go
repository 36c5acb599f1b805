package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/open-edge-platform/client-launcher/internal/config"
)

// Output format command flags
var (
	prettyJSON   bool   = true // Pretty-print JSON output
	configFormat string        // "text" | "json" | "yaml"
)

// settingsView is the effective configuration as shown to the user.
type settingsView struct {
	SettingsFile    string `json:"settings_file" yaml:"settings_file"`
	CacheDir        string `json:"cache_dir" yaml:"cache_dir"`
	ConfigURL       string `json:"config_url" yaml:"config_url"`
	BinaryType      string `json:"binary_type" yaml:"binary_type"`
	Workers         int    `json:"workers" yaml:"workers"`
	Timeout         string `json:"timeout" yaml:"timeout"`
	Compression     string `json:"compression" yaml:"compression"`
	VerifyDownloads bool   `json:"verify_downloads" yaml:"verify_downloads"`
	ReportDir       string `json:"report_dir,omitempty" yaml:"report_dir,omitempty"`
	MetricsFile     string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
	LogLevel        string `json:"log_level" yaml:"log_level"`
}

// createShowConfigCommand creates the show-config subcommand
func createShowConfigCommand() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show-config [flags]",
		Short: "Print the effective launcher settings",
		Long: `Show-config prints the settings after defaults, the settings file,
environment variables and flags have been applied. The binary type and
cache directory are shown resolved.`,
		Args: cobra.NoArgs,
		RunE: executeShowConfig,
	}

	showCmd.Flags().BoolVar(&prettyJSON, "pretty", true,
		"Pretty-print JSON output (only for --format json)")
	showCmd.Flags().StringVar(&configFormat, "format", "text",
		"Output format: text, json or yaml")
	return showCmd
}

func newSettingsView(cfg *config.GlobalConfig) (*settingsView, error) {
	bt, err := cfg.ResolveBinaryType()
	if err != nil {
		return nil, err
	}
	cacheDir, err := config.NewConfigHelpers(cfg).CacheDir()
	if err != nil {
		return nil, err
	}
	return &settingsView{
		SettingsFile:    settingsFile,
		CacheDir:        cacheDir,
		ConfigURL:       cfg.ConfigURL,
		BinaryType:      bt.String(),
		Workers:         cfg.Workers,
		Timeout:         cfg.Timeout.String(),
		Compression:     cfg.Compression,
		VerifyDownloads: cfg.VerifyDownloads,
		ReportDir:       cfg.ReportDir,
		MetricsFile:     cfg.MetricsFile,
		LogLevel:        cfg.Logging.Level,
	}, nil
}

func executeShowConfig(cmd *cobra.Command, _ []string) error {
	view, err := newSettingsView(config.GlConfig)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch strings.ToLower(configFormat) {
	case "json":
		return writeJSON(cmd, view, prettyJSON)
	case "yaml":
		b, err := yaml.Marshal(view)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, _ = out.Write(b)
		return nil
	case "text":
		source := view.SettingsFile
		if source == "" {
			source = "(defaults)"
		}
		fmt.Fprintf(out, "Settings file:    %s\n", source)
		fmt.Fprintf(out, "Cache directory:  %s\n", view.CacheDir)
		fmt.Fprintf(out, "Config URL:       %s\n", view.ConfigURL)
		fmt.Fprintf(out, "Binary type:      %s\n", view.BinaryType)
		fmt.Fprintf(out, "Workers:          %d\n", view.Workers)
		fmt.Fprintf(out, "Timeout:          %s\n", view.Timeout)
		fmt.Fprintf(out, "Compression:      %s\n", view.Compression)
		fmt.Fprintf(out, "Verify downloads: %t\n", view.VerifyDownloads)
		if view.ReportDir != "" {
			fmt.Fprintf(out, "Report directory: %s\n", view.ReportDir)
		}
		if view.MetricsFile != "" {
			fmt.Fprintf(out, "Metrics file:     %s\n", view.MetricsFile)
		}
		fmt.Fprintf(out, "Log level:        %s\n", view.LogLevel)
		return nil
	default:
		return fmt.Errorf("invalid --format %q (expected text|json|yaml)", configFormat)
	}
}

func writeJSON(cmd *cobra.Command, v any, pretty bool) error {
	out := cmd.OutOrStdout()

	var (
		b   []byte
		err error
	)
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, _ = fmt.Fprintln(out, string(b))
	return nil
}

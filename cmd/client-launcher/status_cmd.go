package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/client-launcher/internal/cache"
	"github.com/open-edge-platform/client-launcher/internal/config"
	"github.com/open-edge-platform/client-launcher/internal/javconfig"
	"github.com/open-edge-platform/client-launcher/internal/utils/logger"
)

// Cache states reported by status.
const (
	stateCurrent = "current"
	stateStale   = "stale"
	stateMissing = "missing"
)

var statusFormat string

// fileStatus is one row of the status output.
type fileStatus struct {
	Name  string `json:"name"`
	CRC   string `json:"crc"`
	Path  string `json:"path"`
	State string `json:"state"`
}

type statusReport struct {
	BinaryType string       `json:"binary_type"`
	CacheRoot  string       `json:"cache_root"`
	Files      []fileStatus `json:"files"`
	Current    int          `json:"current"`
	Stale      int          `json:"stale"`
	Missing    int          `json:"missing"`
}

// createStatusCommand creates the status subcommand
func createStatusCommand() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status [flags]",
		Short: "Show which cached client files are out of date",
		Long: `Status loads the remote client configuration and checks every manifest
entry against the local cache without downloading anything.`,
		Args: cobra.NoArgs,
		RunE: executeStatus,
	}
	statusCmd.Flags().StringVar(&statusFormat, "format", "text", "Output format: text or json")
	statusCmd.Flags().StringVar(&binaryTypeFlag, "binary-type", "", "Client binary type (default from settings)")
	statusCmd.Flags().StringVar(&cacheDirFlag, "cache-dir", "", "Client cache directory (default: ~/NXTLauncher)")
	return statusCmd
}

func executeStatus(cmd *cobra.Command, _ []string) error {
	cfg := config.GlConfig
	if err := applyCommandFlags(cmd.Flags(), cfg); err != nil {
		return err
	}
	sess, err := newSession(cfg, false)
	if err != nil {
		return err
	}

	cc, err := sess.loadClientConfig(cmd.Context())
	if err != nil {
		return err
	}
	report, err := buildStatusReport(sess.cacheRoot, cc)
	if err != nil {
		return err
	}

	switch statusFormat {
	case "json":
		return writeJSON(cmd, report, true)
	case "text":
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "cache %s (%s)\n", report.CacheRoot, report.BinaryType)
		for _, f := range report.Files {
			fmt.Fprintf(out, "  %-8s %s\n", f.State, f.Name)
		}
		fmt.Fprintf(out, "%d current, %d stale, %d missing\n", report.Current, report.Stale, report.Missing)
		return nil
	default:
		return fmt.Errorf("invalid --format %q (expected text|json)", statusFormat)
	}
}

func buildStatusReport(cacheRoot string, cc *javconfig.Config) (*statusReport, error) {
	log := logger.Logger()
	report := &statusReport{
		BinaryType: cc.BinaryType.String(),
		CacheRoot:  cacheRoot,
		Files:      make([]fileStatus, 0, len(cc.Files)),
	}

	for _, f := range cc.Files {
		path, err := cache.Path(cacheRoot, f.Name)
		if err != nil {
			return nil, err
		}
		st := fileStatus{Name: f.Name, CRC: f.CRC, Path: path}

		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			st.State = stateMissing
			report.Missing++
		} else if current, err := cache.IsCurrent(path, f.CRC); err != nil {
			return nil, err
		} else if current {
			st.State = stateCurrent
			report.Current++
		} else {
			st.State = stateStale
			report.Stale++
		}
		log.Debugf("%s: %s", f.Name, st.State)
		report.Files = append(report.Files, st)
	}
	return report, nil
}

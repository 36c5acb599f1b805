package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/open-edge-platform/client-launcher/internal/clientfetcher"
	"github.com/open-edge-platform/client-launcher/internal/config"
	"github.com/open-edge-platform/client-launcher/internal/javconfig"
	"github.com/open-edge-platform/client-launcher/internal/launcher"
	"github.com/open-edge-platform/client-launcher/internal/metrics"
	"github.com/open-edge-platform/client-launcher/internal/utils/logger"
	"github.com/open-edge-platform/client-launcher/internal/utils/network"
	"github.com/open-edge-platform/client-launcher/internal/utils/shell"
)

// Replaced in tests.
var (
	newFetcher = func(timeout time.Duration) network.Fetcher {
		return network.NewHTTPFetcher(network.NewSecureHTTPClient(timeout))
	}
	processExecutor shell.Executor = shell.Default
)

// session carries what one command invocation needs.
type session struct {
	cfg       *config.GlobalConfig
	cacheRoot string
	fetcher   network.Fetcher
	metrics   *metrics.Recorder
}

func newSession(cfg *config.GlobalConfig, createCache bool) (*session, error) {
	helpers := config.NewConfigHelpers(cfg)

	var (
		root string
		err  error
	)
	if createCache {
		root, err = helpers.CreateCacheDir()
	} else {
		root, err = helpers.CacheDir()
	}
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:       cfg,
		cacheRoot: root,
		fetcher:   newFetcher(helpers.Timeout()),
		metrics:   metrics.NewRecorder(),
	}, nil
}

func (s *session) loadClientConfig(ctx context.Context) (*javconfig.Config, error) {
	bt, err := s.cfg.ResolveBinaryType()
	if err != nil {
		return nil, err
	}
	cc, err := javconfig.NewLoader(s.fetcher, s.cfg.ConfigURL).Load(ctx, bt)
	s.metrics.ConfigLoaded(err)
	if err != nil {
		return nil, fmt.Errorf("loading client config: %w", err)
	}
	return cc, nil
}

// syncFiles brings every manifest entry up to date. On failure it names the
// file that stopped the run.
func (s *session) syncFiles(ctx context.Context, cc *javconfig.Config, progress io.Writer, out io.Writer) ([]clientfetcher.Result, error) {
	log := logger.Logger()

	base, err := cc.MustBaseURL()
	if err != nil {
		return nil, err
	}
	c, err := s.cfg.ResolveCodec()
	if err != nil {
		return nil, err
	}

	syncer := clientfetcher.New(s.fetcher, clientfetcher.Options{
		CacheRoot:       s.cacheRoot,
		Workers:         s.cfg.Workers,
		Codec:           c,
		VerifyDownloads: s.cfg.VerifyDownloads,
		Progress:        progress,
		Metrics:         s.metrics,
	})

	results, err := syncer.SyncAll(ctx, cc.Files, base)
	if reportErr := s.writeReport(cc, results); reportErr != nil {
		log.Warnf("writing sync report: %v", reportErr)
	}
	if err != nil {
		for _, r := range results {
			if r.Action == clientfetcher.ActionFailed {
				fmt.Fprintf(out, "Error while fetching file %s\n", r.File.Name)
				break
			}
		}
		return results, err
	}

	counts := clientfetcher.Summary(results)
	fmt.Fprintf(out, "%d files: %d downloaded, %d updated, %d up to date\n",
		len(results), counts[clientfetcher.ActionDownloaded],
		counts[clientfetcher.ActionUpdated], counts[clientfetcher.ActionSkipped])
	return results, nil
}

func (s *session) launch(ctx context.Context, cc *javconfig.Config) (int, error) {
	return launcher.New(processExecutor, s.cacheRoot, s.metrics).Launch(ctx, cc)
}

// writeReport appends the processed files to the report directory, if set.
func (s *session) writeReport(cc *javconfig.Config, results []clientfetcher.Result) error {
	if s.cfg.ReportDir == "" || len(results) == 0 {
		return nil
	}
	report := logger.NewStringListReport(cc.BinaryType.String())
	report.Add("run %s at %s", runID, time.Now().UTC().Format(time.RFC3339))
	for _, r := range results {
		if r.Action == clientfetcher.ActionPending {
			continue
		}
		report.Add("%-10s %s crc=%s bytes=%d", r.Action, r.File.Name, r.File.CRC, r.Written)
	}
	path, err := report.WriteToDir(s.cfg.ReportDir)
	if err != nil {
		return err
	}
	logger.Logger().Debugf("sync report written to %s", path)
	return nil
}

// finish records the run and exports metrics when a textfile is configured.
// runErr is returned unchanged, joined with any export error.
func (s *session) finish(runErr error) error {
	s.metrics.RunCompleted(time.Now())
	if s.cfg.MetricsFile == "" {
		return runErr
	}
	if err := s.metrics.WriteTextfile(s.cfg.MetricsFile); err != nil {
		logger.Logger().Warnf("%v", err)
		return errors.Join(runErr, err)
	}
	return runErr
}

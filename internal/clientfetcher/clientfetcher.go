// Package clientfetcher keeps the local cache in step with the client file
// manifest: it skips current files and downloads and decompresses the rest.
package clientfetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/open-edge-platform/client-launcher/internal/cache"
	"github.com/open-edge-platform/client-launcher/internal/clienterr"
	"github.com/open-edge-platform/client-launcher/internal/codec"
	"github.com/open-edge-platform/client-launcher/internal/javconfig"
	"github.com/open-edge-platform/client-launcher/internal/metrics"
	"github.com/open-edge-platform/client-launcher/internal/utils/logger"
	"github.com/open-edge-platform/client-launcher/internal/utils/network"
)

// Action is what SyncFile did for a file.
type Action int

const (
	// ActionPending marks entries never reached because the run stopped.
	ActionPending Action = iota
	ActionSkipped
	ActionUpdated
	ActionDownloaded
	ActionFailed
)

func (a Action) String() string {
	switch a {
	case ActionSkipped:
		return "skipped"
	case ActionUpdated:
		return "updated"
	case ActionDownloaded:
		return "downloaded"
	case ActionFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Result describes the outcome for one manifest entry.
type Result struct {
	File    javconfig.ClientFile
	Path    string
	Action  Action
	Written int64
	Elapsed time.Duration
	Err     error
}

// Options configures a Synchronizer.
type Options struct {
	CacheRoot string
	// Workers is the number of files synchronized concurrently; 1 keeps
	// manifest order.
	Workers int
	Codec   codec.Codec
	// VerifyDownloads re-checks the CRC of every freshly written file.
	VerifyDownloads bool
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
	Metrics  *metrics.Recorder
}

// Synchronizer brings cache entries up to date.
type Synchronizer struct {
	fetcher network.Fetcher
	opts    Options
}

// New returns a Synchronizer fetching through fetcher.
func New(fetcher network.Fetcher, opts Options) *Synchronizer {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Synchronizer{fetcher: fetcher, opts: opts}
}

// DownloadURL returns "{base}&fileName={name}&crc={crc}".
func DownloadURL(baseURL string, file javconfig.ClientFile) string {
	return fmt.Sprintf("%s&fileName=%s&crc=%s", baseURL, file.Name, file.CRC)
}

// SyncFile makes sure the cache holds a current copy of file.
func (s *Synchronizer) SyncFile(ctx context.Context, file javconfig.ClientFile, baseURL string) (Result, error) {
	start := time.Now()
	res, err := s.syncFile(ctx, file, baseURL)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Action = ActionFailed
		res.Err = err
	}
	s.opts.Metrics.FileSynced(res.Action.String(), res.Written, res.Elapsed)
	return res, err
}

func (s *Synchronizer) syncFile(ctx context.Context, file javconfig.ClientFile, baseURL string) (Result, error) {
	log := logger.Logger()
	res := Result{File: file}

	path, err := cache.Path(s.opts.CacheRoot, file.Name)
	if err != nil {
		return res, err
	}
	res.Path = path

	action := ActionDownloaded
	if _, statErr := os.Stat(path); statErr == nil {
		current, err := cache.IsCurrent(path, file.CRC)
		if err != nil {
			return res, err
		}
		if current {
			log.Infof("skipping up-to-date file: %s", file.Name)
			res.Action = ActionSkipped
			return res, nil
		}
		action = ActionUpdated
		log.Infof("updating file: %s", file.Name)
	} else {
		log.Infof("downloading missing file: %s", file.Name)
	}
	res.Action = action

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return res, clienterr.New(clienterr.KindIO, "create directory", filepath.Dir(path), err)
	}

	url := DownloadURL(baseURL, file)
	written, err := s.download(ctx, url, path)
	res.Written = written
	if err != nil {
		return res, err
	}

	if s.opts.VerifyDownloads {
		sum, err := cache.Checksum(path)
		if err != nil {
			return res, err
		}
		if got := cache.Format(sum); got != file.CRC {
			return res, clienterr.New(clienterr.KindChecksum, "verify", path,
				fmt.Errorf("expected crc %s, got %s", file.CRC, got))
		}
	}

	log.Debugf("wrote %d bytes to %s", written, path)
	return res, nil
}

// download fetches url and stream-decompresses the body into path,
// truncating whatever was there.
func (s *Synchronizer) download(ctx context.Context, url, path string) (int64, error) {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	out, err := os.Create(path)
	if err != nil {
		return 0, clienterr.New(clienterr.KindIO, "create", path, err)
	}

	written, err := s.opts.Codec.Decompress(&writerOnly{out}, body)
	if err != nil {
		out.Close()
		var we *writeError
		if errors.As(err, &we) {
			return written, clienterr.New(clienterr.KindIO, "write", path, we.err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return written, clienterr.New(clienterr.KindNetwork, "download", url, ctxErr)
		}
		return written, clienterr.New(clienterr.KindDecompress, "decompress", url, err)
	}
	if err := out.Close(); err != nil {
		return written, clienterr.New(clienterr.KindIO, "close", path, err)
	}
	return written, nil
}

// writerOnly tags write failures so they are not reported as corrupt input.
type writerOnly struct{ w io.Writer }

type writeError struct{ err error }

func (e *writeError) Error() string { return e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }

func (w *writerOnly) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	if err != nil {
		return n, &writeError{err: err}
	}
	return n, nil
}

// SyncAll synchronizes every file using Options.Workers goroutines and a
// single progress bar. The first failure cancels outstanding work and is
// returned; results are in manifest order.
func (s *Synchronizer) SyncAll(ctx context.Context, files []javconfig.ClientFile, baseURL string) ([]Result, error) {
	log := logger.Logger()

	if err := s.checkTargets(files); err != nil {
		return nil, err
	}

	total := len(files)
	results := make([]Result, total)
	if total == 0 {
		return results, nil
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bar := s.newProgressBar(total)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	jobs := make(chan int, total)

	workers := min(s.opts.Workers, total)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				file := files[idx]
				results[idx] = Result{File: file}
				if ctx.Err() != nil {
					continue
				}
				if bar != nil {
					bar.Describe(fmt.Sprintf("syncing %s", file.Name))
				}

				res, err := s.SyncFile(ctx, file, baseURL)
				results[idx] = res

				if err != nil {
					mu.Lock()
					// later failures are usually fallout from cancel()
					if firstErr == nil {
						firstErr = fmt.Errorf("syncing %s: %w", file.Name, err)
					}
					mu.Unlock()
					log.Errorf("syncing %s failed: %v", file.Name, err)
					cancel()
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	if bar != nil {
		_ = bar.Finish()
	}

	if firstErr != nil {
		return results, firstErr
	}
	if err := parent.Err(); err != nil {
		for _, r := range results {
			if r.Action == ActionPending {
				return results, clienterr.New(clienterr.KindNetwork, "sync", r.File.Name, err)
			}
		}
	}
	return results, nil
}

// checkTargets rejects manifests where two entries map to the same file.
func (s *Synchronizer) checkTargets(files []javconfig.ClientFile) error {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		path, err := cache.Path(s.opts.CacheRoot, f.Name)
		if err != nil {
			return err
		}
		key := filepath.Clean(path)
		if prev, ok := seen[key]; ok {
			return clienterr.New(clienterr.KindIO, "plan sync", f.Name,
				fmt.Errorf("resolves to the same path as %s", prev))
		}
		seen[key] = f.Name
	}
	return nil
}

func (s *Synchronizer) newProgressBar(total int) *progressbar.ProgressBar {
	if s.opts.Progress == nil {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(s.opts.Progress),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetDescription("syncing"),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(s.opts.Progress)
		}),
	)
}

// Summary counts results by action, pending entries included.
func Summary(results []Result) map[Action]int {
	out := make(map[Action]int, 4)
	for _, r := range results {
		out[r.Action]++
	}
	return out
}

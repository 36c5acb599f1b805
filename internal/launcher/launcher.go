// Package launcher starts the synchronized client binary.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/open-edge-platform/client-launcher/internal/cache"
	"github.com/open-edge-platform/client-launcher/internal/clienterr"
	"github.com/open-edge-platform/client-launcher/internal/javconfig"
	"github.com/open-edge-platform/client-launcher/internal/metrics"
	"github.com/open-edge-platform/client-launcher/internal/utils/logger"
	"github.com/open-edge-platform/client-launcher/internal/utils/shell"
)

// BuildArgs flattens params into key, value pairs in params order.
func BuildArgs(params []javconfig.Param) []string {
	args := make([]string, 0, len(params)*2)
	for _, p := range params {
		args = append(args, p.Key, p.Value)
	}
	return args
}

// Launcher resolves the client binary under the cache root and starts it.
type Launcher struct {
	executor  shell.Executor
	cacheRoot string
	metrics   *metrics.Recorder
}

// New returns a Launcher; a nil executor selects shell.Default.
func New(executor shell.Executor, cacheRoot string, rec *metrics.Recorder) *Launcher {
	if executor == nil {
		executor = shell.Default
	}
	return &Launcher{executor: executor, cacheRoot: cacheRoot, metrics: rec}
}

// Command builds the process spec for cfg without starting it.
func (l *Launcher) Command(cfg *javconfig.Config) (shell.ProcessSpec, error) {
	name, ok := cfg.BinaryName()
	if !ok || name == "" {
		return shell.ProcessSpec{}, clienterr.New(clienterr.KindLaunch, "resolve binary", "binary_name",
			errors.New("config has no binary_name property"))
	}

	path, err := cache.Path(l.cacheRoot, name)
	if err != nil {
		return shell.ProcessSpec{}, clienterr.New(clienterr.KindLaunch, "resolve binary", name, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return shell.ProcessSpec{}, clienterr.New(clienterr.KindLaunch, "stat binary", path, err)
	}
	if info.IsDir() {
		return shell.ProcessSpec{}, clienterr.New(clienterr.KindLaunch, "stat binary", path,
			errors.New("is a directory"))
	}
	if err := ensureExecutable(path, info.Mode()); err != nil {
		return shell.ProcessSpec{}, clienterr.New(clienterr.KindLaunch, "chmod binary", path, err)
	}

	return shell.ProcessSpec{Path: path, Args: BuildArgs(cfg.Params)}, nil
}

// Launch starts the client and returns its pid without waiting for it.
func (l *Launcher) Launch(ctx context.Context, cfg *javconfig.Config) (int, error) {
	log := logger.Logger()

	spec, err := l.Command(cfg)
	if err != nil {
		l.metrics.Launched(err)
		return 0, err
	}

	log.Infof("launching %s with %d params", spec.Path, len(cfg.Params))
	pid, err := l.executor.Start(ctx, spec)
	if err != nil {
		err = clienterr.New(clienterr.KindLaunch, "start", spec.Path, err)
		log.Errorf("%v", err)
		l.metrics.Launched(err)
		return 0, err
	}
	l.metrics.Launched(nil)
	log.Infof("client started (pid %d)", pid)
	return pid, nil
}

// ensureExecutable adds the execute bits; downloads are created without them.
func ensureExecutable(path string, mode os.FileMode) error {
	if isWindows || mode&0100 != 0 {
		return nil
	}
	if err := os.Chmod(path, mode|0111); err != nil {
		return fmt.Errorf("making %s executable: %w", path, err)
	}
	return nil
}

package shell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/open-edge-platform/client-launcher/internal/utils/logger"
)

// ProcessSpec describes a process to start. Empty Dir and nil Env inherit
// the parent's working directory and environment.
type ProcessSpec struct {
	Path string
	Args []string
	Dir  string
	Env  []string
}

// String renders the command line for logs.
func (p ProcessSpec) String() string {
	parts := make([]string, 0, len(p.Args)+1)
	parts = append(parts, quote(p.Path))
	for _, a := range p.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"'") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// Executor starts processes without waiting for them.
type Executor interface {
	Start(ctx context.Context, spec ProcessSpec) (int, error)
}

// Default is the executor used by the launcher.
var Default Executor = &DefaultExecutor{}

// DefaultExecutor spawns real processes attached to the parent's stdio.
type DefaultExecutor struct{}

// Start spawns spec and releases it; the returned pid is informational.
// The context only gates the spawn; the child outlives it.
func (e *DefaultExecutor) Start(ctx context.Context, spec ProcessSpec) (int, error) {
	log := logger.Logger()
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	if spec.Env != nil {
		cmd.Env = spec.Env
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	log.Debugf("Exec: [%s]", spec)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", spec.Path, err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		log.Warnf("failed to release process %d: %v", pid, err)
	}
	return pid, nil
}

// MockExecutor records started processes instead of spawning them.
type MockExecutor struct {
	Pid int
	Err error

	mu      sync.Mutex
	started []ProcessSpec
}

// Start records spec and returns the configured pid or error.
func (m *MockExecutor) Start(_ context.Context, spec ProcessSpec) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, spec)
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Pid, nil
}

// Started returns the recorded specs.
func (m *MockExecutor) Started() []ProcessSpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ProcessSpec(nil), m.started...)
}

package launcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"github.com/open-edge-platform/client-launcher/internal/clienterr"
	"github.com/open-edge-platform/client-launcher/internal/javconfig"
	"github.com/open-edge-platform/client-launcher/internal/utils/shell"
)

func TestBuildArgs(t *testing.T) {
	params := []javconfig.Param{
		{Key: "-host", Value: "example"},
		{Key: "-world", Value: "2"},
		{Key: "flag", Value: ""},
	}
	want := []string{"-host", "example", "-world", "2", "flag", ""}
	if got := BuildArgs(params); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got := BuildArgs(nil); len(got) != 0 {
		t.Errorf("expected no args, got %v", got)
	}
}

func writeBinary(t *testing.T, root, name string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLaunchStartsBinaryWithParams(t *testing.T) {
	root := t.TempDir()
	path := writeBinary(t, root, "bin/game")

	cfg := &javconfig.Config{
		Properties: map[string]string{"binary_name": "bin/game"},
		Params:     []javconfig.Param{{Key: "-a", Value: "1"}, {Key: "-b", Value: "2"}},
	}
	exec := &shell.MockExecutor{Pid: 4242}

	pid, err := New(exec, root, nil).Launch(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if pid != 4242 {
		t.Errorf("expected pid 4242, got %d", pid)
	}

	started := exec.Started()
	if len(started) != 1 {
		t.Fatalf("expected one start, got %d", len(started))
	}
	if started[0].Path != path {
		t.Errorf("expected path %s, got %s", path, started[0].Path)
	}
	if !reflect.DeepEqual(started[0].Args, []string{"-a", "1", "-b", "2"}) {
		t.Errorf("unexpected args %v", started[0].Args)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if info.Mode()&0100 == 0 {
			t.Errorf("expected binary to be made executable, mode %v", info.Mode())
		}
	}
}

func TestLaunchErrors(t *testing.T) {
	root := t.TempDir()
	writeBinary(t, root, "game")
	if err := os.MkdirAll(filepath.Join(root, "dir"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tests := []struct {
		name    string
		props   map[string]string
		execErr error
		starts  int
	}{
		{name: "no_binary_name", props: map[string]string{}},
		{name: "missing_binary", props: map[string]string{"binary_name": "nope"}},
		{name: "directory", props: map[string]string{"binary_name": "dir"}},
		{name: "escaping_name", props: map[string]string{"binary_name": "../game"}},
		{name: "spawn_failure", props: map[string]string{"binary_name": "game"}, execErr: errors.New("permission denied"), starts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &shell.MockExecutor{Err: tt.execErr}
			cfg := &javconfig.Config{Properties: tt.props}

			_, err := New(exec, root, nil).Launch(context.Background(), cfg)
			if !clienterr.Is(err, clienterr.KindLaunch) {
				t.Fatalf("expected launch error, got %v", err)
			}
			if got := len(exec.Started()); got != tt.starts {
				t.Errorf("expected %d start attempts, got %d", tt.starts, got)
			}
		})
	}
}

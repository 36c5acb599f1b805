package system_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/open-edge-platform/client-launcher/internal/clienterr"
	"github.com/open-edge-platform/client-launcher/internal/utils/system"
)

func withHome(t *testing.T, home string, err error) {
	t.Helper()
	orig := system.UserHomeDir
	system.UserHomeDir = func() (string, error) { return home, err }
	t.Cleanup(func() { system.UserHomeDir = orig })
}

func TestDefaultCacheRoot(t *testing.T) {
	tests := []struct {
		name        string
		home        string
		homeErr     error
		expected    string
		expectError bool
	}{
		{
			name:     "home_resolved",
			home:     filepath.Join("/home", "player"),
			expected: filepath.Join("/home", "player", "NXTLauncher"),
		},
		{
			name:        "home_error",
			homeErr:     errors.New("$HOME is not defined"),
			expectError: true,
		},
		{
			name:        "home_empty",
			home:        "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withHome(t, tt.home, tt.homeErr)

			got, err := system.DefaultCacheRoot()
			if tt.expectError {
				if !clienterr.Is(err, clienterr.KindIO) {
					t.Fatalf("expected io error, got %q, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DefaultCacheRoot failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := filepath.Join("/home", "player")
	withHome(t, home, nil)

	tests := map[string]string{
		"~":               home,
		"~/NXTLauncher":   filepath.Join(home, "NXTLauncher"),
		"/var/cache/game": "/var/cache/game",
		"relative/dir":    "relative/dir",
		"~other/dir":      "~other/dir",
	}
	for in, want := range tests {
		got, err := system.ExpandHome(in)
		if err != nil {
			t.Fatalf("ExpandHome(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHostDescription(t *testing.T) {
	if !strings.Contains(system.HostDescription(), "/") {
		t.Errorf("unexpected host description %q", system.HostDescription())
	}
}

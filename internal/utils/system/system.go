package system

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/open-edge-platform/client-launcher/internal/clienterr"
)

// CacheDirName is the directory under the user's home holding client files.
const CacheDirName = "NXTLauncher"

var (
	// UserHomeDir resolves the current user's home directory. Tests replace it.
	UserHomeDir = os.UserHomeDir
	// UserConfigDir resolves the per-user configuration directory.
	UserConfigDir = os.UserConfigDir
)

// DefaultCacheRoot returns <home>/NXTLauncher.
func DefaultCacheRoot() (string, error) {
	home, err := UserHomeDir()
	if err != nil {
		return "", clienterr.New(clienterr.KindIO, "resolve home directory", "", err)
	}
	if home == "" {
		return "", clienterr.New(clienterr.KindIO, "resolve home directory", "",
			fmt.Errorf("home directory is empty"))
	}
	return filepath.Join(home, CacheDirName), nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !hasHomePrefix(path) {
		return path, nil
	}
	home, err := UserHomeDir()
	if err != nil {
		return "", clienterr.New(clienterr.KindIO, "resolve home directory", path, err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

func hasHomePrefix(path string) bool {
	return len(path) >= 2 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator)
}

// HostDescription returns "os/arch" for log lines.
func HostDescription() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

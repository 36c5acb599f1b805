// Package cache checks locally cached client files against their expected
// CRC-32 and maps manifest names onto the cache root.
package cache

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/open-edge-platform/client-launcher/internal/clienterr"
)

// ChunkSize is the read size used when streaming a file through the digest.
const ChunkSize = 8 * 1024

// Checksum returns the CRC-32 (ISO-HDLC) of the file at path.
func Checksum(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, clienterr.New(clienterr.KindIO, "open", path, err)
	}
	defer f.Close()

	sum, err := ChecksumReader(f)
	if err != nil {
		return 0, clienterr.New(clienterr.KindIO, "read", path, err)
	}
	return sum, nil
}

// ChecksumReader streams r through the digest in ChunkSize reads.
func ChecksumReader(r io.Reader) (uint32, error) {
	digest := crc32.NewIEEE()
	buf := make([]byte, ChunkSize)
	if _, err := io.CopyBuffer(digest, struct{ io.Reader }{r}, buf); err != nil {
		return 0, err
	}
	return digest.Sum32(), nil
}

// Format renders a checksum the way the manifest stores it.
func Format(sum uint32) string {
	return strconv.FormatUint(uint64(sum), 10)
}

// IsCurrent reports whether the file at path exists and the decimal form of
// its checksum equals expected exactly. A missing file is not an error.
func IsCurrent(path, expected string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, clienterr.New(clienterr.KindIO, "stat", path, err)
	}
	if info.IsDir() {
		return false, clienterr.New(clienterr.KindIO, "stat", path, errors.New("is a directory"))
	}

	sum, err := Checksum(path)
	if err != nil {
		return false, err
	}
	return Format(sum) == expected, nil
}

// Path joins a manifest name onto root. Names use '/' as separator and must
// stay inside root.
func Path(root, name string) (string, error) {
	if name == "" {
		return "", clienterr.New(clienterr.KindIO, "resolve", name, errors.New("empty file name"))
	}
	local := filepath.FromSlash(name)
	if filepath.IsAbs(local) || strings.HasPrefix(name, "/") || filepath.VolumeName(local) != "" {
		return "", clienterr.New(clienterr.KindIO, "resolve", name, errors.New("absolute file name"))
	}
	if !filepath.IsLocal(local) {
		return "", clienterr.New(clienterr.KindIO, "resolve", name,
			fmt.Errorf("file name escapes cache root %s", root))
	}
	return filepath.Join(root, local), nil
}

package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/open-edge-platform/client-launcher/internal/clienterr"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestChecksumKnownVectors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		data []byte
		want uint32
	}{
		{name: "empty", data: nil, want: 0},
		{name: "check", data: []byte("123456789"), want: 0xCBF43926},
		{name: "fox", data: []byte("The quick brown fox jumps over the lazy dog"), want: 0x414FA339},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			writeFile(t, path, tt.data)
			got, err := Checksum(path)
			if err != nil {
				t.Fatalf("Checksum failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %08x, got %08x", tt.want, got)
			}
		})
	}
}

func TestChecksumSpansChunks(t *testing.T) {
	data := []byte(strings.Repeat("0123456789abcdef", 3*ChunkSize/16+7))
	path := filepath.Join(t.TempDir(), "big.bin")
	writeFile(t, path, data)

	fromFile, err := Checksum(path)
	if err != nil {
		t.Fatalf("Checksum failed: %v", err)
	}
	fromReader, err := ChecksumReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("ChecksumReader failed: %v", err)
	}
	if fromFile != fromReader {
		t.Errorf("file and reader checksums differ: %d vs %d", fromFile, fromReader)
	}
}

func TestChecksumMissingFile(t *testing.T) {
	_, err := Checksum(filepath.Join(t.TempDir(), "nope"))
	if !clienterr.Is(err, clienterr.KindIO) {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestIsCurrent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.dat")

	ok, err := IsCurrent(path, "0")
	if err != nil || ok {
		t.Fatalf("missing file: expected false, nil; got %v, %v", ok, err)
	}

	writeFile(t, path, []byte("123456789"))
	if ok, err := IsCurrent(path, Format(0xCBF43926)); err != nil || !ok {
		t.Errorf("expected current, got %v, %v", ok, err)
	}
	if ok, err := IsCurrent(path, "3421780262"); err != nil || !ok {
		t.Errorf("expected decimal crc to match, got %v, %v", ok, err)
	}
	if ok, err := IsCurrent(path, "12345"); err != nil || ok {
		t.Errorf("expected stale, got %v, %v", ok, err)
	}
	for _, padded := range []string{"3421780262 ", " 3421780262", "03421780262"} {
		if ok, err := IsCurrent(path, padded); err != nil || ok {
			t.Errorf("IsCurrent(%q): expected exact comparison to fail, got %v, %v", padded, ok, err)
		}
	}
	if _, err := IsCurrent(dir, "0"); !clienterr.Is(err, clienterr.KindIO) {
		t.Errorf("expected io error for directory, got %v", err)
	}
}

func TestPath(t *testing.T) {
	root := filepath.Join(t.TempDir(), "NXTLauncher")
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "game.dat", want: filepath.Join(root, "game.dat")},
		{name: "lib/x/y.so", want: filepath.Join(root, "lib", "x", "y.so")},
		{name: "a/../b.dat", want: filepath.Join(root, "b.dat")},
		{name: "", wantErr: true},
		{name: "../evil", wantErr: true},
		{name: "a/../../evil", wantErr: true},
		{name: "/etc/passwd", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Path(root, tt.name)
		if tt.wantErr {
			if !clienterr.Is(err, clienterr.KindIO) {
				t.Errorf("Path(%q) expected io error, got %q, %v", tt.name, got, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Path(%q) = %q, %v; want %q", tt.name, got, err, tt.want)
		}
	}
}

// Package codec decompresses downloaded client files.
package codec

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// Codec identifies the compression of a download body.
type Codec uint8

const (
	// LZMA is the classic .lzma stream (13-byte header) served by the
	// client download endpoint.
	LZMA Codec = iota
	// XZ is an .xz container.
	XZ
	// Gzip is a gzip member.
	Gzip
	// Zstd is a zstandard frame.
	Zstd
	// None passes the body through unchanged.
	None
)

func (c Codec) String() string {
	switch c {
	case LZMA:
		return "lzma"
	case XZ:
		return "xz"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case None:
		return "none"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// Parse maps a codec name onto a Codec. The empty string selects LZMA.
func Parse(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lzma":
		return LZMA, nil
	case "xz":
		return XZ, nil
	case "gzip", "gz":
		return Gzip, nil
	case "zstd", "zst":
		return Zstd, nil
	case "none":
		return None, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

// NewReader wraps r with the decompressor for c. The returned closer
// releases decoder resources; it does not close r.
func (c Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	switch c {
	case LZMA:
		lr, err := lzma.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("reading lzma header: %w", err)
		}
		return io.NopCloser(lr), nil
	case XZ:
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("reading xz header: %w", err)
		}
		return io.NopCloser(xr), nil
	case Gzip:
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("reading gzip header: %w", err)
		}
		return gr, nil
	case Zstd:
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		return zr.IOReadCloser(), nil
	case None:
		return io.NopCloser(br), nil
	default:
		return nil, fmt.Errorf("unsupported codec %s", c)
	}
}

// Decompress streams the decompressed form of src into dst and returns the
// number of bytes written.
func (c Codec) Decompress(dst io.Writer, src io.Reader) (int64, error) {
	rc, err := c.NewReader(src)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	n, err := io.Copy(dst, rc)
	if err != nil {
		return n, fmt.Errorf("decompressing %s stream: %w", c, err)
	}
	return n, nil
}

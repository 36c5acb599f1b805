package javconfig

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/open-edge-platform/client-launcher/internal/clienterr"
	"github.com/open-edge-platform/client-launcher/internal/utils/network"
)

type stubFetcher struct {
	body []byte
	err  error
	urls []string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) (io.ReadCloser, error) {
	s.urls = append(s.urls, url)
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(bytes.NewReader(s.body)), nil
}

func TestLoaderLoadSetsBinaryType(t *testing.T) {
	stub := &stubFetcher{body: []byte(sampleConfig)}
	l := NewLoader(stub, "http://config/jav_config.ws")

	cfg, err := l.Load(context.Background(), Windows64)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BinaryType != Windows64 {
		t.Errorf("expected Windows64, got %v", cfg.BinaryType)
	}
	if len(stub.urls) != 1 || stub.urls[0] != "http://config/jav_config.ws?binaryType=2" {
		t.Errorf("unexpected fetches: %v", stub.urls)
	}
	if len(cfg.Files) != 2 {
		t.Errorf("expected 2 files, got %d", len(cfg.Files))
	}
}

func TestLoaderURL(t *testing.T) {
	tests := []struct {
		endpoint string
		bt       BinaryType
		want     string
	}{
		{endpoint: "", bt: Linux, want: DefaultEndpoint + "?binaryType=3"},
		{endpoint: "http://h/cfg?lang=1", bt: OSX, want: "http://h/cfg?lang=1&binaryType=4"},
	}
	for _, tt := range tests {
		if got := NewLoader(nil, tt.endpoint).URL(tt.bt); got != tt.want {
			t.Errorf("URL() = %q, want %q", got, tt.want)
		}
	}
}

func TestLoaderErrors(t *testing.T) {
	tests := []struct {
		name string
		stub *stubFetcher
		kind clienterr.Kind
	}{
		{
			name: "fetch_error_passes_through",
			stub: &stubFetcher{err: clienterr.New(clienterr.KindNetwork, "GET", "x", io.ErrUnexpectedEOF)},
			kind: clienterr.KindNetwork,
		},
		{
			name: "invalid_utf8",
			stub: &stubFetcher{body: []byte{'a', '=', 0xff, 0xfe}},
			kind: clienterr.KindParse,
		},
		{
			name: "malformed_line",
			stub: &stubFetcher{body: []byte("no separator\n")},
			kind: clienterr.KindParse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(tt.stub, "http://config/").Load(context.Background(), Linux)
			if !clienterr.Is(err, tt.kind) {
				t.Errorf("expected %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestLoaderOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jav_config.ws" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("binaryType"); got != "3" {
			t.Errorf("expected binaryType=3, got %q", got)
		}
		_, _ = io.WriteString(w, "codebase=http://cdn/\nbinary_count=0\n")
	}))
	defer srv.Close()

	fetcher := network.NewHTTPFetcher(srv.Client())

	cfg, err := NewLoader(fetcher, srv.URL+"/jav_config.ws").Load(context.Background(), Linux)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if base, ok := cfg.BaseURL(); !ok || base != "http://cdn/client?binaryType=3" {
		t.Errorf("unexpected base url %q", base)
	}

	_, err = NewLoader(fetcher, srv.URL+"/missing").Load(context.Background(), Linux)
	if !clienterr.Is(err, clienterr.KindHTTPStatus) {
		t.Errorf("expected http status error, got %v", err)
	}
}

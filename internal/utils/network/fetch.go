package network

import (
	"context"
	"io"
	"net/http"

	"github.com/open-edge-platform/client-launcher/internal/clienterr"
	"github.com/open-edge-platform/client-launcher/internal/utils/logger"
)

// UserAgent is sent with every request.
var UserAgent = "client-launcher/dev"

// Fetcher retrieves the body behind a URL. Callers must close the body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher performs one GET per Fetch call. No retry is attempted.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher wraps client; nil selects NewSecureHTTPClient(0).
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = NewSecureHTTPClient(0)
	}
	return &HTTPFetcher{client: client}
}

// Fetch issues a GET and returns the response body when the status is 2xx.
// Transport failures are KindNetwork, any other status is KindHTTPStatus.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	log := logger.Logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, clienterr.New(clienterr.KindNetwork, "build request", url, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	log.Debugf("GET %s", url)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, clienterr.New(clienterr.KindNetwork, "GET", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		resp.Body.Close()
		log.Debugf("GET %s returned %s", url, resp.Status)
		return nil, clienterr.Status("GET", url, resp.StatusCode)
	}
	return resp.Body, nil
}

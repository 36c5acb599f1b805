package javconfig

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/open-edge-platform/client-launcher/internal/clienterr"
	"github.com/open-edge-platform/client-launcher/internal/utils/logger"
	"github.com/open-edge-platform/client-launcher/internal/utils/network"
)

// DefaultEndpoint serves the configuration text.
const DefaultEndpoint = "https://runescape.com/jav_config.ws"

// maxConfigBytes caps the configuration body.
const maxConfigBytes = 4 << 20

// ErrNoCodebase is returned by MustBaseURL when the config lacks "codebase".
var ErrNoCodebase = errors.New("config has no codebase property")

// Loader fetches and parses the remote configuration.
type Loader struct {
	fetcher  network.Fetcher
	endpoint string
}

// NewLoader returns a Loader reading from endpoint, DefaultEndpoint if empty.
func NewLoader(fetcher network.Fetcher, endpoint string) *Loader {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Loader{fetcher: fetcher, endpoint: endpoint}
}

// URL returns the configuration URL for the given binary type.
func (l *Loader) URL(bt BinaryType) string {
	sep := "?"
	if strings.Contains(l.endpoint, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sbinaryType=%d", l.endpoint, sep, bt.Code())
}

// Load performs one fetch of the configuration and parses it.
func (l *Loader) Load(ctx context.Context, bt BinaryType) (*Config, error) {
	log := logger.Logger()
	url := l.URL(bt)

	log.Infof("loading client config for %s from %s", bt, url)
	body, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxConfigBytes+1))
	if err != nil {
		return nil, clienterr.New(clienterr.KindNetwork, "read config body", url, err)
	}
	if len(data) > maxConfigBytes {
		return nil, clienterr.New(clienterr.KindParse, "read config body", url,
			fmt.Errorf("body exceeds %d bytes", maxConfigBytes))
	}
	if !utf8.Valid(data) {
		return nil, clienterr.New(clienterr.KindParse, "decode config body", url,
			errors.New("body is not valid UTF-8"))
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return nil, err
	}
	cfg.BinaryType = bt

	log.Infof("client config has %d files, %d params, %d messages",
		len(cfg.Files), len(cfg.Params), len(cfg.Messages))
	return cfg, nil
}

// MustBaseURL is BaseURL returning ErrNoCodebase instead of false.
func (c *Config) MustBaseURL() (string, error) {
	base, ok := c.BaseURL()
	if !ok {
		return "", ErrNoCodebase
	}
	return base, nil
}

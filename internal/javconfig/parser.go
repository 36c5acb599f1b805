package javconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/open-edge-platform/client-launcher/internal/clienterr"
)

const (
	msgPrefix   = "msg="
	paramPrefix = "param="
)

// Parse turns the raw configuration text into a Config. BinaryType is left
// zero. Lines are key=value, the value may contain '='; empty lines are
// skipped and a line without '=' is rejected.
func Parse(text string) (*Config, error) {
	cfg := &Config{
		RawProperties: make(map[string]string),
		Messages:      make(map[string]string),
	}

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		lineNo := i + 1

		switch {
		case strings.HasPrefix(line, msgPrefix):
			key, value, err := splitKeyValue(line[len(msgPrefix):], lineNo)
			if err != nil {
				return nil, err
			}
			cfg.Messages[key] = value
		case strings.HasPrefix(line, paramPrefix):
			key, value, err := splitKeyValue(line[len(paramPrefix):], lineNo)
			if err != nil {
				return nil, err
			}
			cfg.setParam(key, value)
		default:
			key, value, err := splitKeyValue(line, lineNo)
			if err != nil {
				return nil, err
			}
			cfg.RawProperties[key] = value
		}
	}

	files, consumed, err := projectManifest(cfg.RawProperties)
	if err != nil {
		return nil, err
	}
	cfg.Files = files
	cfg.Properties = make(map[string]string, len(cfg.RawProperties)-len(consumed))
	for k, v := range cfg.RawProperties {
		if _, skip := consumed[k]; !skip {
			cfg.Properties[k] = v
		}
	}
	return cfg, nil
}

func (c *Config) setParam(key, value string) {
	for i := range c.Params {
		if c.Params[i].Key == key {
			c.Params[i].Value = value
			return
		}
	}
	c.Params = append(c.Params, Param{Key: key, Value: value})
}

func splitKeyValue(line string, lineNo int) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", clienterr.New(clienterr.KindParse, "parse config",
			fmt.Sprintf("line %d", lineNo), fmt.Errorf("missing '=' in %q", line))
	}
	return key, value, nil
}

// BinaryCount reads binary_count; absent, unparsable (surrounding whitespace
// included) and negative values count as zero.
func BinaryCount(props map[string]string) int {
	n, err := strconv.Atoi(props[keyBinaryCount])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// projectManifest reads the download_*_i triples without touching props and
// returns the set of keys that were consumed.
func projectManifest(props map[string]string) ([]ClientFile, map[string]struct{}, error) {
	count := BinaryCount(props)
	// every entry needs three keys, so a larger count fails below anyway
	hint := min(count, len(props)/3)
	files := make([]ClientFile, 0, hint)
	consumed := make(map[string]struct{}, hint*3)

	lookup := func(key string) (string, error) {
		v, ok := props[key]
		if !ok {
			return "", clienterr.New(clienterr.KindMissingField, "parse manifest", key, nil)
		}
		consumed[key] = struct{}{}
		return v, nil
	}

	for i := 0; i < count; i++ {
		name, err := lookup(fmt.Sprintf("download_name_%d", i))
		if err != nil {
			return nil, nil, err
		}
		crc, err := lookup(fmt.Sprintf("download_crc_%d", i))
		if err != nil {
			return nil, nil, err
		}
		hash, err := lookup(fmt.Sprintf("download_hash_%d", i))
		if err != nil {
			return nil, nil, err
		}
		files = append(files, ClientFile{Name: name, CRC: crc, Hash: hash})
	}
	return files, consumed, nil
}

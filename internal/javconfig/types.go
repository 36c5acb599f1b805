// Package javconfig parses the remote key=value client configuration and
// projects the file manifest out of it.
package javconfig

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// BinaryType selects the platform variant of the client to fetch.
type BinaryType uint8

const (
	Windows32       BinaryType = 1
	Windows64       BinaryType = 2
	Linux           BinaryType = 3
	OSX             BinaryType = 4
	WindowsCompat32 BinaryType = 5
	WindowsCompat64 BinaryType = 6
)

var binaryTypeNames = map[BinaryType]string{
	Windows32:       "windows32",
	Windows64:       "windows64",
	Linux:           "linux",
	OSX:             "osx",
	WindowsCompat32: "windowscompat32",
	WindowsCompat64: "windowscompat64",
}

// Code returns the numeric code sent to the remote endpoints.
func (b BinaryType) Code() int { return int(b) }

func (b BinaryType) String() string {
	if name, ok := binaryTypeNames[b]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(b))
}

// Valid reports whether b is one of the known codes.
func (b BinaryType) Valid() bool {
	_, ok := binaryTypeNames[b]
	return ok
}

// ParseBinaryType accepts a case-insensitive name ("windows64", "linux",
// "macos" as an alias of osx) or a numeric code.
func ParseBinaryType(s string) (BinaryType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "macos" || name == "darwin" {
		return OSX, nil
	}
	for b, n := range binaryTypeNames {
		if n == name {
			return b, nil
		}
	}
	if code, err := strconv.ParseUint(name, 10, 8); err == nil && BinaryType(code).Valid() {
		return BinaryType(code), nil
	}
	return 0, fmt.Errorf("unknown binary type %q", s)
}

// DetectBinaryType picks the binary type matching the host.
func DetectBinaryType() BinaryType {
	return binaryTypeFor(runtime.GOOS, runtime.GOARCH)
}

func binaryTypeFor(goos, goarch string) BinaryType {
	switch goos {
	case "linux":
		return Linux
	case "darwin":
		return OSX
	case "windows":
		if goarch == "386" {
			return Windows32
		}
		return Windows64
	default:
		return Windows64
	}
}

// ClientFile is one manifest entry.
type ClientFile struct {
	Name string `json:"name" yaml:"name"`
	CRC  string `json:"crc" yaml:"crc"`
	Hash string `json:"hash" yaml:"hash"`
}

// Param is one launch parameter, kept in the order it was first seen.
type Param struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Config is the parsed remote configuration.
type Config struct {
	BinaryType BinaryType `json:"binaryType" yaml:"binaryType"`

	// RawProperties holds every unprefixed key exactly as received.
	RawProperties map[string]string `json:"rawProperties" yaml:"rawProperties"`
	// Properties is RawProperties without the manifest keys moved into Files.
	Properties map[string]string `json:"properties" yaml:"properties"`
	Messages   map[string]string `json:"messages" yaml:"messages"`
	Params     []Param           `json:"params" yaml:"params"`
	Files      []ClientFile      `json:"files" yaml:"files"`
}

const (
	keyCodebase    = "codebase"
	keyBinaryName  = "binary_name"
	keyBinaryCount = "binary_count"
)

// Property returns the value of a non-manifest property.
func (c *Config) Property(key string) (string, bool) {
	v, ok := c.Properties[key]
	return v, ok
}

// Message returns a msg= entry.
func (c *Config) Message(key string) (string, bool) {
	v, ok := c.Messages[key]
	return v, ok
}

// ParamValue returns the value of a param= entry.
func (c *Config) ParamValue(key string) (string, bool) {
	for _, p := range c.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Codebase returns the download base of the client files.
func (c *Config) Codebase() (string, bool) {
	return c.Property(keyCodebase)
}

// BinaryName returns the manifest name of the executable to launch.
func (c *Config) BinaryName() (string, bool) {
	return c.Property(keyBinaryName)
}

// BaseURL returns "{codebase}client?binaryType={code}", or false when the
// configuration has no codebase.
func (c *Config) BaseURL() (string, bool) {
	codebase, ok := c.Codebase()
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%sclient?binaryType=%d", codebase, c.BinaryType.Code()), true
}

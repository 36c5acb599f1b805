package javconfig

import (
	"strconv"
	"strings"
	"testing"
)

// FuzzParse checks that Parse never panics and that a successful parse
// satisfies the manifest invariants.
func FuzzParse(f *testing.F) {
	f.Add(sampleConfig)
	f.Add("")
	f.Add("\n\n\n")
	f.Add("noequals")
	f.Add("binary_count=1\ndownload_name_0=a\n")
	f.Add("binary_count=-5\n")
	f.Add("binary_count=99999999999999999999\n")
	f.Add("msg==\nparam==\n==\n")
	f.Add("msg=a=b\r\nparam=c=d\r\n")

	f.Fuzz(func(t *testing.T, input string) {
		cfg, err := Parse(input)
		if err != nil {
			if cfg != nil {
				t.Error("Expected nil config when error occurred")
			}
			return
		}
		if cfg == nil {
			t.Fatal("Expected non-nil config when no error occurred")
		}

		count := BinaryCount(cfg.RawProperties)
		if len(cfg.Files) != count {
			t.Errorf("expected %d files, got %d", count, len(cfg.Files))
		}
		for k := range cfg.Properties {
			if _, ok := cfg.RawProperties[k]; !ok {
				t.Errorf("property %q missing from raw properties", k)
			}
			if strings.HasPrefix(k, "download_") && isConsumedKey(k, count) {
				t.Errorf("manifest key %q left in properties", k)
			}
		}
	})
}

func isConsumedKey(key string, count int) bool {
	for i := 0; i < count; i++ {
		for _, field := range []string{"name", "crc", "hash"} {
			if key == "download_"+field+"_"+strconv.Itoa(i) {
				return true
			}
		}
	}
	return false
}

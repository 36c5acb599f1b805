package main

import (
	"testing"
)

// FuzzCreateRootCommand tests the root command creation with various global flag values
func FuzzCreateRootCommand(f *testing.F) {
	f.Add("", "")
	f.Add("/tmp/config.yml", "info")
	f.Add("invalid/path", "debug")
	f.Add("/dev/null", "invalid-level")
	f.Add("", "trace")

	f.Fuzz(func(t *testing.T, configPath string, logLevelValue string) {
		originalConfigFile := configFile
		originalLogLevel := logLevel
		defer func() {
			configFile = originalConfigFile
			logLevel = originalLogLevel
		}()

		configFile = configPath
		logLevel = logLevelValue

		cmd := createRootCommand()
		if cmd == nil {
			t.Fatal("createRootCommand returned nil")
		}
		if cmd.Use == "" {
			t.Error("Command Use field is empty")
		}
		if cmd.Short == "" {
			t.Error("Command Short description is empty")
		}
		if len(cmd.Commands()) == 0 {
			t.Error("No subcommands were added to root command")
		}
	})
}

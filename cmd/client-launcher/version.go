package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-edge-platform/client-launcher/internal/utils/system"
)

// Set at build time with -ldflags "-X main.Version=... -X main.BuildDate=...".
var (
	Version   = "dev"
	BuildDate = "unknown"
)

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSettingsAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "client-launcher %s (built %s, %s)\n",
				Version, BuildDate, system.HostDescription())
			return nil
		},
	}
}

// Package version provides build version information for the csv2spotify application.
//
// The variables in this package are intended to be set at build time using
// -ldflags, for example:
//
//	go build -ldflags "-X github.com/upstreamhub/csv2spotify/pkg/version.Version=v1.0.0"
package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build information. Populated at build-time via -ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Command returns the cobra command that prints version information.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("csv2spotify %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		},
	}
}

// Package cmd provides command-line interface functionality for the csv2spotify application.
//
// This package implements the root command and manages the command-line interface
// using the cobra library. It handles configuration, logging setup, and command
// execution for the csv2spotify application.
//
// The package integrates with several components:
//   - Configuration management through pkg/config
//   - CSV ingestion through internal/csvsource
//   - Spotify access through internal/auth and internal/spotify
//   - Manual pages through pkg/man
//   - Version information through pkg/version
//
// Example usage:
//
//	import "github.com/upstreamhub/csv2spotify/cmd/csv2spotify"
//
//	func main() {
//		cmd.Execute()
//	}
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/upstreamhub/csv2spotify/pkg/config"
	"github.com/upstreamhub/csv2spotify/pkg/man"
	"github.com/upstreamhub/csv2spotify/pkg/version"
)

// conf holds the application configuration loaded from environment variables.
// It is populated by the persistent pre-run before any command executes.
var (
	conf config.Config
	// debug controls the logging level for the application.
	debug bool
)

// rootCmd defines the base command for the csv2spotify CLI application.
var rootCmd = &cobra.Command{
	Use:              "csv2spotify",
	Short:            "Sync a CSV track list to Spotify playlists",
	Long:             `csv2spotify reads a track spreadsheet as CSV, from a local file or a published sheet URL, resolves each row to a Spotify track, and publishes the result to two playlists: one allowing up to three tracks per artist and one allowing a single track per artist.`,
	Args:             cobra.ExactArgs(0),
	PersistentPreRun: rootCmdPreRun,
	Run:              rootCmdRun,
}

func rootCmdRun(cmd *cobra.Command, args []string) {
	log.Info("Use 'csv2spotify sync' to publish the CSV track list to Spotify")
	log.Info("Use 'csv2spotify inspect' to preview how the CSV will be interpreted")
	log.Info("Use 'csv2spotify auth' to authorize Spotify access interactively")
}

// rootCmdPreRun loads configuration and applies the debug flag before both
// the root command and any subcommand.
func rootCmdPreRun(cmd *cobra.Command, args []string) {
	conf = config.GetEnvVars()
	if debug {
		log.SetLevel(log.DebugLevel)
	}
}

// Execute starts the command-line interface execution.
// This is the main entry point called from main.go to begin command processing.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug-level logging")

	rootCmd.AddCommand(
		newSyncCmd(),
		newInspectCmd(),
		newAuthCmd(),
		man.NewManCmd(),
		version.Command(),
	)
}

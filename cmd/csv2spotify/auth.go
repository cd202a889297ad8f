// Package cmd provides the auth command implementation for csv2spotify.
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/upstreamhub/csv2spotify/internal/auth"
)

// newAuthCmd creates the auth command for interactive Spotify authorization.
func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize Spotify access interactively",
		Long: `Run the Spotify authorization code flow in a browser and store the
granted refresh token in the env file. After a successful run, sync can
authenticate unattended using the stored refresh token.`,
		Args: cobra.NoArgs,
		Run:  runAuth,
	}
}

// runAuth executes the auth command.
func runAuth(cmd *cobra.Command, args []string) {
	if !conf.Spotify.HasClientCredentials() {
		log.Error("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set to authorize")
		os.Exit(exitNoCredential)
	}
	if conf.CI.Unattended() {
		log.Error("Interactive authorization is not available in unattended environments")
		os.Exit(exitNoCredential)
	}

	provider := auth.NewProvider(&conf)
	token, err := provider.InteractiveToken(cmd.Context())
	if err != nil {
		log.WithError(err).Error("Authorization failed")
		os.Exit(exitNoCredential)
	}

	fmt.Println("Authorization complete.")
	if token.RefreshToken != "" {
		fmt.Printf("Refresh token saved to %s. Future sync runs will authenticate automatically.\n", conf.Spotify.EnvFilePath)
	} else {
		fmt.Println("No refresh token was granted; sync will require re-authorization.")
	}
}

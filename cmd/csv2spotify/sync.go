// Package cmd provides the sync command implementation for csv2spotify.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/upstreamhub/csv2spotify/internal/auth"
	"github.com/upstreamhub/csv2spotify/internal/csvsource"
	"github.com/upstreamhub/csv2spotify/internal/partition"
	"github.com/upstreamhub/csv2spotify/internal/publish"
	"github.com/upstreamhub/csv2spotify/internal/resolve"
	"github.com/upstreamhub/csv2spotify/internal/spotify"
	"github.com/upstreamhub/csv2spotify/internal/types"
	"github.com/upstreamhub/csv2spotify/pkg/config"
)

// Service constructors for the sync pipeline. Package-level so tests can
// drive the pipeline against mock services.
var (
	newTokenProvider = func(cfg *config.Config) types.TokenProvider {
		return auth.NewProvider(cfg)
	}
	newCatalog = func(ctx context.Context, token string) types.CatalogService {
		return spotify.NewClient(ctx, token)
	}
)

// Exit codes distinguish the failure stages so schedulers can tell a missing
// credential from a broken spreadsheet or a Spotify outage.
const (
	exitGeneric       = 1
	exitNoCredential  = 2
	exitCSVUnreadable = 5
	exitPublishFailed = 6
)

// Artist caps for the two published playlists.
const (
	maxPerArtistPlaylistOne = 3
	maxPerArtistPlaylistTwo = 1
)

// unresolvedReportLimit bounds how many unresolved rows the summary prints.
const unresolvedReportLimit = 10

// stageError carries the exit code of the pipeline stage that failed.
type stageError struct {
	code int
	err  error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

// exitCode maps a pipeline error to the process exit code.
func exitCode(err error) int {
	var stage *stageError
	if errors.As(err, &stage) {
		return stage.code
	}
	return exitGeneric
}

// newSyncCmd creates the sync command for publishing the CSV track list.
func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Publish the CSV track list to both Spotify playlists",
		Long: `Read the configured CSV source, resolve each row to a Spotify track,
and publish the result to the two configured playlists. The first playlist
allows up to three tracks per artist, the second a single track per artist,
and both are shuffled before publishing.`,
		Args: cobra.NoArgs,
		Run:  runSync,
	}
}

// runSync executes the sync command.
func runSync(cmd *cobra.Command, args []string) {
	if err := syncOnce(cmd.Context()); err != nil {
		log.WithError(err).Error("Sync failed")
		os.Exit(exitCode(err))
	}
}

// syncOnce runs the full pipeline: authenticate, read, resolve, partition,
// publish.
func syncOnce(ctx context.Context) error {
	log.Info("Starting CSV to Spotify sync")

	provider := newTokenProvider(&conf)
	token, err := provider.Token(ctx)
	if err != nil {
		return &stageError{code: exitNoCredential, err: fmt.Errorf("failed to obtain Spotify token: %w", err)}
	}

	source := csvsource.NewSource(conf.CSV)
	rows, err := source.ReadRows(ctx)
	if err != nil {
		return &stageError{code: exitCSVUnreadable, err: err}
	}

	catalog := newCatalog(ctx, token)

	resolver := resolve.NewResolver(catalog)
	outcome, err := resolver.ResolveAll(ctx, rows)
	if err != nil {
		return err
	}
	printResolutionSummary(outcome)

	uris := partition.Dedup(outcome.URIs)
	log.WithFields(log.Fields{
		"resolved": len(outcome.URIs),
		"unique":   len(uris),
	}).Info("Deduplicated resolved tracks")

	partitioner := partition.NewPartitioner(catalog)
	playlistOne, err := partitioner.CapByArtist(ctx, uris, maxPerArtistPlaylistOne)
	if err != nil {
		return err
	}
	playlistTwo, err := partitioner.CapByArtist(ctx, uris, maxPerArtistPlaylistTwo)
	if err != nil {
		return err
	}

	playlistOne = partition.ShuffleURIs(playlistOne)
	playlistTwo = partition.ShuffleURIs(playlistTwo)

	publisher := publish.NewPublisher(catalog)
	if err := publisher.Publish(ctx, conf.Playlists.OneID, playlistOne); err != nil {
		return &stageError{code: exitPublishFailed, err: err}
	}
	if err := publisher.Publish(ctx, conf.Playlists.TwoID, playlistTwo); err != nil {
		return &stageError{code: exitPublishFailed, err: err}
	}

	fmt.Printf("\nSync complete:\n")
	fmt.Printf("  Rows read:        %d\n", len(rows))
	fmt.Printf("  Tracks resolved:  %d (%d unique)\n", len(outcome.URIs), len(uris))
	fmt.Printf("  Playlist %s: %d tracks (max %d per artist)\n", conf.Playlists.OneID, len(playlistOne), maxPerArtistPlaylistOne)
	fmt.Printf("  Playlist %s: %d tracks (max %d per artist)\n", conf.Playlists.TwoID, len(playlistTwo), maxPerArtistPlaylistTwo)

	return nil
}

// printResolutionSummary reports how rows were resolved and lists the first
// unresolved rows so a broken spreadsheet is easy to diagnose.
func printResolutionSummary(outcome *resolve.Outcome) {
	for method, count := range outcome.ByMethod {
		log.WithFields(log.Fields{
			"method": method,
			"count":  count,
		}).Debug("Resolution method usage")
	}

	if len(outcome.Unresolved) == 0 {
		return
	}

	fmt.Printf("\n%d row(s) could not be resolved to a Spotify track:\n", len(outcome.Unresolved))
	for i, row := range outcome.Unresolved {
		if i >= unresolvedReportLimit {
			fmt.Printf("  ... and %d more\n", len(outcome.Unresolved)-unresolvedReportLimit)
			break
		}
		fmt.Printf("  %s\n", describeRow(row))
	}
}

// describeRow renders an unresolved row as "title - artist" when those
// columns exist, falling back to the raw row.
func describeRow(row *types.Row) string {
	title := row.Get("title")
	if title == "" {
		title = row.Get("name")
	}
	if title == "" {
		return row.String()
	}

	if artist := row.Get("artist"); artist != "" {
		return fmt.Sprintf("%s - %s", title, artist)
	}
	return title
}

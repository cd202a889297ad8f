// Package publish writes resolved track lists into Spotify playlists.
//
// Publishing a playlist means clearing its current contents and appending the
// new track list in batches. A rate limited append honors the API's requested
// backoff and is retried once; a second failure aborts the publish.
package publish

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/upstreamhub/csv2spotify/internal/spotify"
	"github.com/upstreamhub/csv2spotify/internal/types"
)

const (
	// appendBatchSize is the maximum number of tracks the playlist add
	// endpoint accepts per request.
	appendBatchSize = 100
	// retryMargin is added on top of the API's Retry-After wait before the
	// single retry of a rate limited append.
	retryMargin = time.Second
)

// Publisher replaces playlist contents through the catalog service.
type Publisher struct {
	catalog types.CatalogService
	logger  *log.Entry
}

// NewPublisher creates a publisher backed by the given catalog service.
func NewPublisher(catalog types.CatalogService) *Publisher {
	return &Publisher{
		catalog: catalog,
		logger:  log.WithField("component", "publisher"),
	}
}

// Publish clears the playlist and appends the given tracks in order. A failed
// clear is logged and publishing continues; the playlist then accumulates the
// new tracks behind its old contents rather than losing the run. An empty
// track list only clears the playlist.
func (p *Publisher) Publish(ctx context.Context, playlistID string, uris []string) error {
	logger := p.logger.WithField("playlist_id", playlistID)

	if err := p.catalog.ReplacePlaylistTracks(ctx, playlistID, nil); err != nil {
		logger.WithError(err).Warn("Failed to clear playlist, appending anyway")
	} else {
		logger.Debug("Cleared playlist")
	}

	if len(uris) == 0 {
		logger.Info("No tracks to publish, playlist left empty")
		return nil
	}

	for start := 0; start < len(uris); start += appendBatchSize {
		end := start + appendBatchSize
		if end > len(uris) {
			end = len(uris)
		}

		if err := p.appendBatch(ctx, playlistID, uris[start:end]); err != nil {
			return fmt.Errorf("failed to publish to playlist %s: %w", playlistID, err)
		}
	}

	logger.WithField("track_count", len(uris)).Info("Published tracks to playlist")
	return nil
}

// appendBatch adds one batch of tracks, retrying once when rate limited.
func (p *Publisher) appendBatch(ctx context.Context, playlistID string, batch []string) error {
	err := p.catalog.AddTracksToPlaylist(ctx, playlistID, batch)
	if err == nil {
		return nil
	}
	if !spotify.IsRateLimited(err) {
		return err
	}

	wait := p.catalog.RetryAfter() + retryMargin
	p.logger.WithFields(log.Fields{
		"playlist_id": playlistID,
		"wait":        wait.String(),
	}).Warn("Rate limited while appending tracks, backing off")

	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := p.catalog.AddTracksToPlaylist(ctx, playlistID, batch); err != nil {
		return fmt.Errorf("append failed after rate limit retry: %w", err)
	}
	return nil
}

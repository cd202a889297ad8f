// Package spotify implements the catalog service against the Spotify Web API
// using the zmb3/spotify client library.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	spotifyapi "github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/upstreamhub/csv2spotify/internal/normalize"
	"github.com/upstreamhub/csv2spotify/internal/types"
)

const (
	// requestsPerSecond is the client-side request rate toward the Web API.
	requestsPerSecond = 10
	// defaultRetryAfter is used when a 429 response carries no usable
	// Retry-After header.
	defaultRetryAfter = 5 * time.Second
)

// Client implements types.CatalogService against the Spotify Web API.
type Client struct {
	api     *spotifyapi.Client
	limiter *rate.Limiter
	retry   *retryAfterTransport
	logger  *log.Entry
}

// NewClient creates a catalog client authenticated with the given bearer
// access token.
func NewClient(ctx context.Context, accessToken string) *Client {
	retry := &retryAfterTransport{}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	retry.base = httpClient.Transport
	httpClient.Transport = retry

	return &Client{
		api:     spotifyapi.New(httpClient),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		retry:   retry,
		logger:  log.WithField("component", "spotify_client"),
	}
}

// SearchTrack queries the search API for a single best candidate. A nil track
// with nil error means the search returned no results.
func (c *Client) SearchTrack(ctx context.Context, title, artist string) (*types.Track, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("track:%s", title)
	if artist != "" {
		query = fmt.Sprintf("track:%s artist:%s", title, artist)
	}

	c.logger.WithField("query", query).Debug("Searching Spotify catalog")

	results, err := c.api.Search(ctx, query, spotifyapi.SearchTypeTrack, spotifyapi.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("track search failed: %w", err)
	}
	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return nil, nil
	}

	track := convertTrack(&results.Tracks.Tracks[0])
	return &track, nil
}

// GetTracksMetadata fetches full track metadata for a batch of track URIs.
// Spotify may return null entries for unknown IDs; those are omitted from the
// result rather than reported as an error.
func (c *Client) GetTracksMetadata(ctx context.Context, uris []string) ([]types.Track, error) {
	if len(uris) == 0 {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ids := urisToIDs(uris)
	fullTracks, err := c.api.GetTracks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch track metadata: %w", err)
	}

	tracks := make([]types.Track, 0, len(fullTracks))
	for _, ft := range fullTracks {
		if ft == nil {
			continue
		}
		tracks = append(tracks, convertTrack(ft))
	}

	return tracks, nil
}

// ReplacePlaylistTracks replaces the playlist's entire contents with the
// given tracks. An empty URI list empties the playlist.
func (c *Client) ReplacePlaylistTracks(ctx context.Context, playlistID string, uris []string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	err := c.api.ReplacePlaylistTracks(ctx, spotifyapi.ID(playlistID), urisToIDs(uris)...)
	if err != nil {
		return fmt.Errorf("failed to replace tracks in playlist %s: %w", playlistID, err)
	}
	return nil
}

// AddTracksToPlaylist appends tracks to the end of the playlist.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := c.api.AddTracksToPlaylist(ctx, spotifyapi.ID(playlistID), urisToIDs(uris)...)
	if err != nil {
		return fmt.Errorf("failed to add tracks to playlist %s: %w", playlistID, err)
	}
	return nil
}

// RetryAfter returns the wait the API requested on the most recent rate
// limited response, or a conservative default when none was seen.
func (c *Client) RetryAfter() time.Duration {
	return c.retry.retryAfter()
}

// IsRateLimited reports whether the error represents an HTTP 429 response.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var apiErr spotifyapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "too many requests") || strings.Contains(msg, "rate limit")
}

func urisToIDs(uris []string) []spotifyapi.ID {
	ids := make([]spotifyapi.ID, len(uris))
	for i, uri := range uris {
		ids[i] = spotifyapi.ID(normalize.TrackID(uri))
	}
	return ids
}

func convertTrack(ft *spotifyapi.FullTrack) types.Track {
	artists := make([]types.Artist, len(ft.Artists))
	for i, a := range ft.Artists {
		artists[i] = types.Artist{
			ID:   string(a.ID),
			Name: a.Name,
			URI:  string(a.URI),
		}
	}
	return types.Track{
		ID:      string(ft.ID),
		Name:    ft.Name,
		URI:     string(ft.URI),
		Artists: artists,
	}
}

// retryAfterTransport records the Retry-After header from rate limited
// responses so publishing can honor the API's requested backoff.
type retryAfterTransport struct {
	base http.RoundTripper

	mu   sync.Mutex
	last time.Duration
}

func (t *retryAfterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		t.mu.Lock()
		t.last = parseRetryAfter(resp.Header.Get("Retry-After"))
		t.mu.Unlock()
	}
	return resp, err
}

func (t *retryAfterTransport) retryAfter() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last <= 0 {
		return defaultRetryAfter
	}
	return t.last
}

// parseRetryAfter interprets the delay-seconds form of the Retry-After
// header.
func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds <= 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

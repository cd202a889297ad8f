package types

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CatalogService defines the interface for Spotify catalog and playlist operations
type CatalogService interface {
	SearchTrack(ctx context.Context, title, artist string) (*Track, error)
	GetTracksMetadata(ctx context.Context, uris []string) ([]Track, error)
	ReplacePlaylistTracks(ctx context.Context, playlistID string, uris []string) error
	AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error
	RetryAfter() time.Duration
}

// TokenProvider defines the interface for obtaining a bearer access token
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Core data models

// Artist represents a Spotify artist
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Track represents a Spotify track
type Track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	URI     string   `json:"uri"`
	Artists []Artist `json:"artists"`
}

// PrimaryArtist returns the display name of the track's first artist,
// or "Unknown" when the catalog returned no artist metadata.
func (t *Track) PrimaryArtist() string {
	if len(t.Artists) == 0 || t.Artists[0].Name == "" {
		return "Unknown"
	}
	return t.Artists[0].Name
}

// String returns a string representation of the track
func (t *Track) String() string {
	return fmt.Sprintf("%s - %s", t.PrimaryArtist(), t.Name)
}

// Row represents one CSV row as a mapping from lowercased header name to
// trimmed value. Header order matches spreadsheet column order; a duplicate
// header keeps its first position but its last value wins.
type Row struct {
	headers []string
	values  map[string]string
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{values: make(map[string]string)}
}

// Set stores a value under a header name. The header is lowercased and both
// header and value are trimmed.
func (r *Row) Set(header, value string) {
	key := strings.ToLower(strings.TrimSpace(header))
	if key == "" {
		return
	}
	if _, exists := r.values[key]; !exists {
		r.headers = append(r.headers, key)
	}
	r.values[key] = strings.TrimSpace(value)
}

// Get returns the value for a header name, matched case-insensitively.
func (r *Row) Get(header string) string {
	return r.values[strings.ToLower(strings.TrimSpace(header))]
}

// Headers returns the header names in column order.
func (r *Row) Headers() []string {
	return r.headers
}

// Values returns all values in column order.
func (r *Row) Values() []string {
	vals := make([]string, len(r.headers))
	for i, h := range r.headers {
		vals[i] = r.values[h]
	}
	return vals
}

// Len returns the number of distinct headers in the row.
func (r *Row) Len() int {
	return len(r.headers)
}

// String returns a compact representation of the row for diagnostics.
func (r *Row) String() string {
	pairs := make([]string, len(r.headers))
	for i, h := range r.headers {
		pairs[i] = fmt.Sprintf("%s=%q", h, r.values[h])
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

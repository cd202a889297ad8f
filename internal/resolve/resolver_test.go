package resolve

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upstreamhub/csv2spotify/internal/types"
)

// mockCatalog implements types.CatalogService for testing
type mockCatalog struct {
	searchTrackFunc func(ctx context.Context, title, artist string) (*types.Track, error)
}

func (m *mockCatalog) SearchTrack(ctx context.Context, title, artist string) (*types.Track, error) {
	if m.searchTrackFunc != nil {
		return m.searchTrackFunc(ctx, title, artist)
	}
	return nil, nil
}

func (m *mockCatalog) GetTracksMetadata(ctx context.Context, uris []string) ([]types.Track, error) {
	return nil, nil
}

func (m *mockCatalog) ReplacePlaylistTracks(ctx context.Context, playlistID string, uris []string) error {
	return nil
}

func (m *mockCatalog) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	return nil
}

func (m *mockCatalog) RetryAfter() time.Duration {
	return 0
}

func rowFromPairs(pairs ...string) *types.Row {
	row := types.NewRow()
	for i := 0; i+1 < len(pairs); i += 2 {
		row.Set(pairs[i], pairs[i+1])
	}
	return row
}

func TestResolveRow(t *testing.T) {
	const trackID = "4uLU6hMCjMI75M1A2tKUQC"
	const trackURI = "spotify:track:" + trackID

	tests := []struct {
		name           string
		row            *types.Row
		searchTrack    *types.Track
		searchErr      error
		expectedURI    string
		expectedMethod Method
		expectResolved bool
		expectSearch   bool
	}{
		{
			name:           "canonical URI in arbitrary column",
			row:            rowFromPairs("title", "So What", "notes", trackURI),
			expectedURI:    trackURI,
			expectedMethod: MethodValueScan,
			expectResolved: true,
		},
		{
			name:           "track URL in arbitrary column",
			row:            rowFromPairs("title", "So What", "link", "https://open.spotify.com/track/"+trackID+"?si=abc"),
			expectedURI:    trackURI,
			expectedMethod: MethodValueScan,
			expectResolved: true,
		},
		{
			name:           "uri column with canonical URI",
			row:            rowFromPairs("spotify_uri", trackURI),
			expectedURI:    trackURI,
			expectedMethod: MethodValueScan,
			expectResolved: true,
		},
		{
			name:           "bare ID in track_id column",
			row:            rowFromPairs("track_id", trackID),
			expectedURI:    trackURI,
			expectedMethod: MethodIDColumn,
			expectResolved: true,
		},
		{
			name:           "bare ID in arbitrary column resolves without search",
			row:            rowFromPairs("spotify_id", trackID, "title", "So What"),
			expectedURI:    trackURI,
			expectedMethod: MethodValueScan,
			expectResolved: true,
		},
		{
			name:           "search fallback with title and artist",
			row:            rowFromPairs("title", "So What", "artist", "Miles Davis"),
			searchTrack:    &types.Track{ID: trackID, Name: "So What", URI: trackURI, Artists: []types.Artist{{Name: "Miles Davis"}}},
			expectedURI:    trackURI,
			expectedMethod: MethodSearch,
			expectResolved: true,
			expectSearch:   true,
		},
		{
			name:           "name column serves as title",
			row:            rowFromPairs("name", "So What"),
			searchTrack:    &types.Track{ID: trackID, Name: "So What", URI: trackURI},
			expectedURI:    trackURI,
			expectedMethod: MethodSearch,
			expectResolved: true,
			expectSearch:   true,
		},
		{
			name:           "search returns no results",
			row:            rowFromPairs("title", "Nonexistent Song"),
			expectResolved: false,
			expectSearch:   true,
		},
		{
			name:           "search error treated as unresolved",
			row:            rowFromPairs("title", "So What"),
			searchErr:      errors.New("api unavailable"),
			expectResolved: false,
			expectSearch:   true,
		},
		{
			name:           "no title means no search",
			row:            rowFromPairs("artist", "Miles Davis"),
			expectResolved: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searched := false
			catalog := &mockCatalog{
				searchTrackFunc: func(ctx context.Context, title, artist string) (*types.Track, error) {
					searched = true
					return tt.searchTrack, tt.searchErr
				},
			}
			resolver := NewResolver(catalog)

			uri, method, ok := resolver.ResolveRow(context.Background(), tt.row)

			assert.Equal(t, tt.expectResolved, ok)
			assert.Equal(t, tt.expectSearch, searched, "search invocation mismatch")
			if tt.expectResolved {
				assert.Equal(t, tt.expectedURI, uri)
				assert.Equal(t, tt.expectedMethod, method)
			}
		})
	}
}

func TestResolveRow_URIWinsOverSearch(t *testing.T) {
	const trackURI = "spotify:track:4uLU6hMCjMI75M1A2tKUQC"

	catalog := &mockCatalog{
		searchTrackFunc: func(ctx context.Context, title, artist string) (*types.Track, error) {
			t.Fatal("search must not be invoked when the row carries a URI")
			return nil, nil
		},
	}
	resolver := NewResolver(catalog)

	row := rowFromPairs("title", "So What", "artist", "Miles Davis", "spotify_uri", trackURI)
	uri, _, ok := resolver.ResolveRow(context.Background(), row)

	require.True(t, ok)
	assert.Equal(t, trackURI, uri)
}

func TestResolveAll(t *testing.T) {
	const trackID = "4uLU6hMCjMI75M1A2tKUQC"
	const trackURI = "spotify:track:" + trackID

	catalog := &mockCatalog{
		searchTrackFunc: func(ctx context.Context, title, artist string) (*types.Track, error) {
			if title == "So What" {
				return &types.Track{ID: trackID, Name: "So What", URI: trackURI}, nil
			}
			return nil, nil
		},
	}
	resolver := NewResolver(catalog)

	rows := []*types.Row{
		rowFromPairs("spotify_uri", trackURI),
		rowFromPairs("title", "So What"),
		rowFromPairs("title", "Nonexistent Song"),
		rowFromPairs("notes", "just a comment"),
	}

	outcome, err := resolver.ResolveAll(context.Background(), rows)

	require.NoError(t, err)
	assert.Equal(t, []string{trackURI, trackURI}, outcome.URIs)
	assert.Len(t, outcome.Unresolved, 2)
	assert.Equal(t, 1, outcome.ByMethod[MethodValueScan])
	assert.Equal(t, 1, outcome.ByMethod[MethodSearch])
}

func TestResolveAll_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resolver := NewResolver(&mockCatalog{})
	_, err := resolver.ResolveAll(ctx, []*types.Row{rowFromPairs("title", "So What")})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatchConfidence(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		item     string
		expected float64
		delta    float64
	}{
		{name: "exact match", query: "So What", item: "so what", expected: 1.0},
		{name: "query contained in item", query: "So What", item: "So What - Remastered", expected: 0.87, delta: 0.05},
		{name: "item contained in query", query: "So What Live", item: "So What", expected: 0.81, delta: 0.05},
		{name: "no similarity", query: "zzz", item: "Giant Steps", expected: 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchConfidence(tt.query, tt.item)
			if tt.delta > 0 {
				assert.InDelta(t, tt.expected, got, tt.delta)
			} else {
				assert.Equal(t, tt.expected, got)
			}
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

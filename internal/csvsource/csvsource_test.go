package csvsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upstreamhub/csv2spotify/internal/types"
	"github.com/upstreamhub/csv2spotify/pkg/config"
)

func TestReadRows_LocalFile(t *testing.T) {
	tmpDir := t.TempDir()
	csvPath := filepath.Join(tmpDir, "tracks.csv")
	content := "Title,Artist,URL\nSo What,Miles Davis,\nTake Five,Dave Brubeck,https://open.spotify.com/track/1YQWosTIljIvxAgHWTp7KP\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0644))

	source := NewSource(config.CSVConfig{Path: csvPath, HTTPTimeout: 30})
	rows, err := source.ReadRows(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "So What", rows[0].Get("title"))
	assert.Equal(t, "Miles Davis", rows[0].Get("artist"))
	assert.Equal(t, "", rows[0].Get("url"))
	assert.Equal(t, "https://open.spotify.com/track/1YQWosTIljIvxAgHWTp7KP", rows[1].Get("url"))
}

func TestReadRows_RemoteURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("title,artist\nGiant Steps,John Coltrane\n"))
	}))
	defer server.Close()

	source := NewSource(config.CSVConfig{Path: server.URL, HTTPTimeout: 30})
	rows, err := source.ReadRows(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Giant Steps", rows[0].Get("title"))
}

func TestReadRows_RemoteNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	source := NewSource(config.CSVConfig{Path: server.URL, HTTPTimeout: 30})
	_, err := source.ReadRows(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestReadRows_MissingFile(t *testing.T) {
	source := NewSource(config.CSVConfig{Path: filepath.Join(t.TempDir(), "missing.csv"), HTTPTimeout: 30})
	_, err := source.ReadRows(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestParseRows(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expectErr bool
		check     func(*testing.T, []*types.Row)
	}{
		{
			name:  "headers lowercased and values trimmed",
			input: " Title , ARTIST \n  So What  ,  Miles Davis  \n",
			check: func(t *testing.T, rows []*types.Row) {
				assert.Len(t, rows, 1)
				assert.Equal(t, "So What", rows[0].Get("title"))
				assert.Equal(t, "Miles Davis", rows[0].Get("artist"))
			},
		},
		{
			name:  "short record padded with empty values",
			input: "title,artist,album\nSo What\n",
			check: func(t *testing.T, rows []*types.Row) {
				assert.Len(t, rows, 1)
				assert.Equal(t, "So What", rows[0].Get("title"))
				assert.Equal(t, "", rows[0].Get("album"))
			},
		},
		{
			name:  "duplicate header last value wins",
			input: "title,title\nfirst,second\n",
			check: func(t *testing.T, rows []*types.Row) {
				assert.Len(t, rows, 1)
				assert.Equal(t, "second", rows[0].Get("title"))
			},
		},
		{
			name:  "header only no data rows",
			input: "title,artist\n",
			check: func(t *testing.T, rows []*types.Row) {
				assert.Empty(t, rows)
			},
		},
		{
			name:      "empty input missing header row",
			input:     "",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := parseRows(strings.NewReader(tt.input))
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, rows)
		})
	}
}

// Package partition shapes a resolved track list into the two published
// playlists. It deduplicates URIs, caps how many tracks a single artist may
// contribute, and shuffles the final selection so the playlists do not mirror
// the spreadsheet's row order.
package partition

import (
	"context"
	"math/rand"

	log "github.com/sirupsen/logrus"

	"github.com/upstreamhub/csv2spotify/internal/types"
)

// metadataBatchSize is the maximum number of track IDs the Spotify tracks
// endpoint accepts per request.
const metadataBatchSize = 50

// Partitioner applies the playlist shaping rules to resolved track URIs.
type Partitioner struct {
	catalog types.CatalogService
	logger  *log.Entry
}

// NewPartitioner creates a partitioner backed by the given catalog service.
func NewPartitioner(catalog types.CatalogService) *Partitioner {
	return &Partitioner{
		catalog: catalog,
		logger:  log.WithField("component", "partitioner"),
	}
}

// Dedup removes duplicate URIs keeping the first occurrence. Order is
// preserved.
func Dedup(uris []string) []string {
	seen := make(map[string]bool, len(uris))
	result := make([]string, 0, len(uris))
	for _, uri := range uris {
		if seen[uri] {
			continue
		}
		seen[uri] = true
		result = append(result, uri)
	}
	return result
}

// CapByArtist limits how many tracks each primary artist may contribute,
// keeping earlier tracks. Artist attribution comes from the catalog's track
// metadata fetched in batches; tracks whose metadata cannot be fetched are
// dropped rather than published unattributed. Tracks without artist metadata
// share a single "Unknown" bucket and are capped together.
func (p *Partitioner) CapByArtist(ctx context.Context, uris []string, maxPerArtist int) ([]string, error) {
	if maxPerArtist <= 0 || len(uris) == 0 {
		return nil, nil
	}

	artistByURI, err := p.fetchArtists(ctx, uris)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	result := make([]string, 0, len(uris))
	for _, uri := range uris {
		artist, known := artistByURI[uri]
		if !known {
			continue
		}
		if counts[artist] >= maxPerArtist {
			p.logger.WithFields(log.Fields{
				"artist":         artist,
				"uri":            uri,
				"max_per_artist": maxPerArtist,
			}).Debug("Dropping track over artist cap")
			continue
		}
		counts[artist]++
		result = append(result, uri)
	}

	p.logger.WithFields(log.Fields{
		"input_count":    len(uris),
		"output_count":   len(result),
		"max_per_artist": maxPerArtist,
	}).Info("Capped tracks per artist")

	return result, nil
}

// fetchArtists maps each URI to its primary artist name. A failed metadata
// batch drops that batch's tracks from the map; the error is logged and the
// remaining batches still proceed.
func (p *Partitioner) fetchArtists(ctx context.Context, uris []string) (map[string]string, error) {
	artistByURI := make(map[string]string, len(uris))

	for start := 0; start < len(uris); start += metadataBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + metadataBatchSize
		if end > len(uris) {
			end = len(uris)
		}
		batch := uris[start:end]

		tracks, err := p.catalog.GetTracksMetadata(ctx, batch)
		if err != nil {
			p.logger.WithError(err).WithFields(log.Fields{
				"batch_start": start,
				"batch_size":  len(batch),
			}).Warn("Track metadata batch failed, dropping its tracks")
			continue
		}

		for i := range tracks {
			artistByURI[tracks[i].URI] = tracks[i].PrimaryArtist()
		}
	}

	return artistByURI, nil
}

// ShuffleURIs returns a shuffled copy of the URI list.
func ShuffleURIs(uris []string) []string {
	shuffled := make([]string, len(uris))
	copy(shuffled, uris)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// Package resolve turns CSV rows into Spotify track URIs.
//
// Each row is resolved through a fixed chain of strategies: any value in the
// row that already carries a Spotify URI or track URL is used directly, then
// well-known identifier columns are consulted, and only when the row carries
// no usable identifier is the Spotify search API queried with the row's title
// and artist.
package resolve

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/upstreamhub/csv2spotify/internal/normalize"
	"github.com/upstreamhub/csv2spotify/internal/types"
)

// Method identifies which strategy resolved a row.
type Method string

const (
	// MethodValueScan resolved the row from a URI or URL found in any column.
	MethodValueScan Method = "value_scan"
	// MethodURIColumn resolved the row from a well-known URI column.
	MethodURIColumn Method = "uri_column"
	// MethodURLColumn resolved the row from a well-known URL column.
	MethodURLColumn Method = "url_column"
	// MethodIDColumn resolved the row from a well-known track ID column.
	MethodIDColumn Method = "id_column"
	// MethodSearch resolved the row via the Spotify search API.
	MethodSearch Method = "search"
)

// Well-known column names consulted after the full value scan, and the
// columns feeding the search fallback.
var (
	uriColumns    = []string{"spotify_uri", "uri", "track_uri"}
	urlColumns    = []string{"spotify_url", "url", "track_url"}
	idColumns     = []string{"id", "track_id"}
	titleColumns  = []string{"title", "name"}
	artistColumns = []string{"artist", "artist_name"}
)

// Resolver resolves CSV rows into canonical Spotify track URIs.
type Resolver struct {
	catalog types.CatalogService
	logger  *log.Entry
}

// NewResolver creates a resolver backed by the given catalog service.
func NewResolver(catalog types.CatalogService) *Resolver {
	return &Resolver{
		catalog: catalog,
		logger:  log.WithField("component", "resolver"),
	}
}

// Outcome is the aggregate result of resolving a batch of rows.
type Outcome struct {
	// URIs holds the resolved canonical track URIs in row order. A row may
	// contribute at most one URI.
	URIs []string
	// Unresolved holds the rows that produced no URI, in row order.
	Unresolved []*types.Row
	// ByMethod counts resolved rows per strategy.
	ByMethod map[Method]int
}

// ResolveAll resolves every row and collects the outcome. Rows that cannot be
// resolved are reported, never fatal.
func (r *Resolver) ResolveAll(ctx context.Context, rows []*types.Row) (*Outcome, error) {
	outcome := &Outcome{
		ByMethod: make(map[Method]int),
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		uri, method, ok := r.ResolveRow(ctx, row)
		if !ok {
			r.logger.WithFields(log.Fields{
				"row_number": i + 1,
				"row":        row.String(),
			}).Warn("Could not resolve row to a Spotify track")
			outcome.Unresolved = append(outcome.Unresolved, row)
			continue
		}

		outcome.URIs = append(outcome.URIs, uri)
		outcome.ByMethod[method]++
	}

	r.logger.WithFields(log.Fields{
		"total":      len(rows),
		"resolved":   len(outcome.URIs),
		"unresolved": len(outcome.Unresolved),
	}).Info("Finished resolving rows")

	return outcome, nil
}

// ResolveRow resolves a single row to a canonical track URI. The returned
// Method reports which strategy produced the URI. A false result means the
// row carries no usable identifier and search found nothing; search errors
// are logged and treated the same as no match.
func (r *Resolver) ResolveRow(ctx context.Context, row *types.Row) (string, Method, bool) {
	if uri, ok := r.scanValues(row); ok {
		return uri, MethodValueScan, true
	}

	if uri, ok := firstFromColumns(row, uriColumns); ok {
		return uri, MethodURIColumn, true
	}
	if uri, ok := firstFromColumns(row, urlColumns); ok {
		return uri, MethodURLColumn, true
	}
	if uri, ok := firstFromColumns(row, idColumns); ok {
		return uri, MethodIDColumn, true
	}

	if uri, ok := r.searchCatalog(ctx, row); ok {
		return uri, MethodSearch, true
	}

	return "", "", false
}

// scanValues walks every value in column order looking for anything the
// normalizer recognizes: a canonical URI, a track URL, or a bare 22
// character ID.
func (r *Resolver) scanValues(row *types.Row) (string, bool) {
	for _, value := range row.Values() {
		if uri, ok := normalize.URI(value); ok {
			return uri, true
		}
	}
	return "", false
}

// firstFromColumns returns the URI from the first listed column holding a
// parseable identifier.
func firstFromColumns(row *types.Row, columns []string) (string, bool) {
	for _, column := range columns {
		if uri, ok := normalize.URI(row.Get(column)); ok {
			return uri, true
		}
	}
	return "", false
}

// searchCatalog falls back to the Spotify search API using the row's title
// and artist columns. A missing title makes the row unresolvable.
func (r *Resolver) searchCatalog(ctx context.Context, row *types.Row) (string, bool) {
	title := firstValue(row, titleColumns)
	if title == "" {
		return "", false
	}
	artist := firstValue(row, artistColumns)

	track, err := r.catalog.SearchTrack(ctx, title, artist)
	if err != nil {
		r.logger.WithError(err).WithFields(log.Fields{
			"title":  title,
			"artist": artist,
		}).Error("Spotify search failed")
		return "", false
	}
	if track == nil {
		r.logger.WithFields(log.Fields{
			"title":  title,
			"artist": artist,
		}).Debug("Spotify search returned no results")
		return "", false
	}

	uri, ok := normalize.URI(track.URI)
	if !ok {
		r.logger.WithField("uri", track.URI).Warn("Search result carried a non-track URI")
		return "", false
	}

	r.logger.WithFields(log.Fields{
		"title":            title,
		"artist":           artist,
		"matched_track":    track.Name,
		"matched_artist":   track.PrimaryArtist(),
		"title_confidence": matchConfidence(title, track.Name),
	}).Debug("Resolved row via search")

	return uri, true
}

func firstValue(row *types.Row, columns []string) string {
	for _, column := range columns {
		if value := row.Get(column); value != "" {
			return value
		}
	}
	return ""
}

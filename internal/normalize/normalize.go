// Package normalize provides canonicalization of Spotify track identifiers.
//
// Free-text values from spreadsheet cells arrive in three shapes: a
// spotify:track:<id> URI, an open.spotify.com/track/<id> web URL (possibly
// with query parameters or surrounding text), or a bare 22-character track
// id. All three normalize to the canonical spotify:track:<id> form.
package normalize

import "regexp"

// URIPrefix is the canonical scheme prefix for track URIs.
const URIPrefix = "spotify:track:"

var (
	uriPattern    = regexp.MustCompile(`^spotify:track:([A-Za-z0-9]{22})`)
	urlPattern    = regexp.MustCompile(`open\.spotify\.com/track/([A-Za-z0-9]{22})`)
	bareIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{22}$`)
)

// ExtractTrackID extracts a 22-character track id from a URI, web URL, or
// bare id. Returns the id and true on success.
func ExtractTrackID(value string) (string, bool) {
	if value == "" {
		return "", false
	}
	if m := uriPattern.FindStringSubmatch(value); m != nil {
		return m[1], true
	}
	if m := urlPattern.FindStringSubmatch(value); m != nil {
		return m[1], true
	}
	if bareIDPattern.MatchString(value) {
		return value, true
	}
	return "", false
}

// URI normalizes an arbitrary string to the canonical spotify:track:<id>
// form. Returns the canonical URI and true when a track id was found.
// Normalizing an already-canonical URI returns it unchanged.
func URI(value string) (string, bool) {
	id, ok := ExtractTrackID(value)
	if !ok {
		return "", false
	}
	return URIPrefix + id, true
}

// TrackID returns the id portion of a canonical track URI. Inputs that are
// not canonical URIs are passed through ExtractTrackID as a fallback.
func TrackID(uri string) string {
	if m := uriPattern.FindStringSubmatch(uri); m != nil {
		return m[1]
	}
	if id, ok := ExtractTrackID(uri); ok {
		return id
	}
	return ""
}

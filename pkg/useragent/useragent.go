// Package useragent provides the User-Agent string used for outbound HTTP requests.
//
// Published Google Sheets exports and the Spotify Web API both accept plain
// tool identifiers, so the string identifies the application and its build
// version rather than impersonating a browser.
package useragent

import (
	"fmt"

	"github.com/upstreamhub/csv2spotify/pkg/version"
)

// String returns the csv2spotify User-Agent string, including the build
// version when one was stamped at link time.
//
// Example:
//
//	req.Header.Set("User-Agent", useragent.String())
//	// "csv2spotify/1.2.0"
func String() string {
	return fmt.Sprintf("csv2spotify/%s", version.Version)
}

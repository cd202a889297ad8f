// Package cmd provides the inspect command implementation for csv2spotify.
package cmd

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/upstreamhub/csv2spotify/internal/csvsource"
	"github.com/upstreamhub/csv2spotify/internal/normalize"
	"github.com/upstreamhub/csv2spotify/internal/types"
)

// newInspectCmd creates the inspect command for previewing CSV interpretation.
func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Preview how the CSV track list will be interpreted",
		Long: `Read the configured CSV source and report, without touching Spotify,
which rows already carry a track identifier and which will need a search.
Useful for checking a spreadsheet before running sync.`,
		Args: cobra.NoArgs,
		Run:  runInspect,
	}
}

// runInspect executes the inspect command.
func runInspect(cmd *cobra.Command, args []string) {
	source := csvsource.NewSource(conf.CSV)
	rows, err := source.ReadRows(cmd.Context())
	if err != nil {
		log.WithError(err).Error("Failed to read CSV")
		os.Exit(exitCSVUnreadable)
	}

	fmt.Printf("Source: %s\n", conf.CSV.Path)
	fmt.Printf("Rows:   %d\n", len(rows))
	if len(rows) > 0 {
		fmt.Printf("Columns: %s\n", strings.Join(rows[0].Headers(), ", "))
	}
	fmt.Println()

	withURI := 0
	needSearch := 0
	cjkTitles := 0
	for i, row := range rows {
		title := row.Get("title")
		if title == "" {
			title = row.Get("name")
		}

		uri, found := uriFromRow(row)
		switch {
		case found:
			withURI++
			fmt.Printf("%4d  %-12s %s\n", i+1, "identifier", uri)
		case title != "":
			needSearch++
			note := ""
			if containsCJK(title) {
				cjkTitles++
				note = "  (non-Latin title, search may be less reliable)"
			}
			fmt.Printf("%4d  %-12s %s\n", i+1, "search", describeRow(row)+note)
		default:
			fmt.Printf("%4d  %-12s %s\n", i+1, "unresolvable", row.String())
		}
	}

	fmt.Printf("\nSummary: %d with identifier, %d need search, %d unresolvable\n",
		withURI, needSearch, len(rows)-withURI-needSearch)
	if cjkTitles > 0 {
		fmt.Printf("%d title(s) contain CJK characters\n", cjkTitles)
	}
}

// uriFromRow reports the identifier a row already carries, passing every
// value through the normalizer the way sync resolution does.
func uriFromRow(row *types.Row) (string, bool) {
	for _, value := range row.Values() {
		if uri, ok := normalize.URI(value); ok {
			return uri, true
		}
	}
	return "", false
}

// containsCJK reports whether the string contains Chinese, Japanese, or
// Korean characters.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
			unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

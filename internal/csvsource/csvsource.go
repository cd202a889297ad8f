// Package csvsource provides CSV ingestion for the csv2spotify application.
//
// This package contains the Source which is responsible for fetching the
// track spreadsheet as CSV text, either from an http(s) URL (for example a
// published Google Sheets export) or from a local file path, and parsing it
// into rows keyed by lowercased header names.
package csvsource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/upstreamhub/csv2spotify/internal/types"
	"github.com/upstreamhub/csv2spotify/pkg/config"
	"github.com/upstreamhub/csv2spotify/pkg/useragent"
)

// Source handles fetching and parsing of the CSV track list.
type Source struct {
	path       string
	remote     bool
	httpClient *http.Client
	logger     *log.Entry
}

// NewSource creates a new CSV source for the configured location.
func NewSource(cfg config.CSVConfig) *Source {
	timeout := time.Duration(cfg.HTTPTimeout) * time.Second
	if cfg.HTTPTimeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Source{
		path:   cfg.Path,
		remote: cfg.IsRemote(),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.WithField("component", "csv_source"),
	}
}

// ReadRows fetches the CSV and parses it into rows. Header names are
// lowercased and values trimmed; a duplicate header's last value wins.
// An unreadable source (missing file, failed fetch, non-200 status) is a
// fatal input error for the pipeline.
func (s *Source) ReadRows(ctx context.Context) ([]*types.Row, error) {
	reader, closer, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer closer()

	rows, err := parseRows(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV from %s: %w", s.path, err)
	}

	s.logger.WithFields(log.Fields{
		"source":    s.path,
		"row_count": len(rows),
	}).Info("Read rows from CSV")

	return rows, nil
}

// open returns a reader over the CSV body from either the URL or the file.
func (s *Source) open(ctx context.Context) (io.Reader, func(), error) {
	if s.remote {
		s.logger.WithField("url", s.path).Info("Fetching CSV from URL")

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.path, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create HTTP request: %w", err)
		}
		req.Header.Set("Accept", "text/csv, text/plain, */*")
		req.Header.Set("User-Agent", useragent.String())

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch CSV from %s: %w", s.path, err)
		}

		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			s.logger.WithFields(log.Fields{
				"url":         s.path,
				"status_code": resp.StatusCode,
			}).Error("CSV fetch returned non-200 status code")
			return nil, nil, fmt.Errorf("failed to fetch CSV from %s: status %d", s.path, resp.StatusCode)
		}

		return resp.Body, func() { _ = resp.Body.Close() }, nil
	}

	file, err := os.Open(s.path)
	if err != nil {
		s.logger.WithError(err).WithField("path", s.path).Error("CSV file not readable")
		return nil, nil, fmt.Errorf("CSV file not found at %s: %w", s.path, err)
	}

	return file, func() { _ = file.Close() }, nil
}

// parseRows decodes CSV text into rows. The first record is the required
// header row. Records shorter than the header are padded with empty values;
// extra unlabeled values are dropped.
func parseRows(r io.Reader) ([]*types.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	var rows []*types.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		row := types.NewRow()
		for i, name := range header {
			value := ""
			if i < len(record) {
				value = record[i]
			}
			row.Set(name, value)
		}
		if row.Len() > 0 {
			rows = append(rows, row)
		}
	}

	return rows, nil
}

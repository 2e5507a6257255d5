// Package gtfs imports a static GTFS feed into a catalogue.
//
// A feed has timetables and the catalogue does not, so each route is
// reduced to the stop sequence of its longest trip.
package gtfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/OneBusAway/go-gtfs"
	"transitcatalogue.org/internal/appconf"
	"transitcatalogue.org/internal/logging"
)

// IsRemote reports whether source should be downloaded rather than read
// from disk.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch returns the raw zip archive of a feed from a URL or a local path.
// Downloads larger than config.MaxSizeBytes are rejected.
func Fetch(ctx context.Context, source string, config appconf.GTFSConfig) ([]byte, error) {
	logger := logging.FromContext(ctx).With(slog.String("component", "gtfs_loader"))

	if !IsRemote(source) {
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("error reading local GTFS file: %w", err)
		}
		logging.LogOperation(logger, "gtfs_file_read",
			slog.String("path", source),
			slog.Int("bytes", len(b)))
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating GTFS request: %w", err)
	}

	// Add auth header if provided
	if config.AuthHeaderKey != "" && config.AuthHeaderValue != "" {
		req.Header.Set(config.AuthHeaderKey, config.AuthHeaderValue)
	}

	client := &http.Client{
		Timeout: 5 * time.Minute,
		Transport: &http.Transport{
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
		}}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading GTFS data: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, logger, "http_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download GTFS data: received HTTP status %s", resp.Status)
	}

	maxSize := config.MaxSizeBytes
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("error reading GTFS data: %w", err)
	}
	if int64(len(b)) > maxSize {
		return nil, fmt.Errorf("static GTFS response exceeds size limit of %d bytes", maxSize)
	}

	logging.LogOperation(logger, "gtfs_feed_downloaded",
		slog.String("url", source),
		slog.Int("bytes", len(b)))
	return b, nil
}

// Load fetches and parses a feed.
func Load(ctx context.Context, source string, config appconf.GTFSConfig) (*gtfs.Static, error) {
	b, err := Fetch(ctx, source, config)
	if err != nil {
		return nil, fmt.Errorf("error reading GTFS data: %w", err)
	}

	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}

	for _, warning := range staticData.Warnings {
		logging.FromContext(ctx).Debug("gtfs parse warning",
			slog.String("component", "gtfs_loader"),
			slog.String("warning", fmt.Sprint(warning)))
	}
	return staticData, nil
}

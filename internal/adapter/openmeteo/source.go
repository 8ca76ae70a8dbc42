package openmeteo

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
)

// Source binds a Client to a site and window.
// It implements pipeline.Extractor.
type Source struct {
	client *Client
	lat    float64
	lon    float64
	days   int
}

// NewSource creates an extractor for the given site and trailing day count.
func NewSource(client *Client, lat, lon float64, days int) *Source {
	return &Source{client: client, lat: lat, lon: lon, days: days}
}

// Extract fetches the site's hourly readings from the archive.
func (s *Source) Extract(ctx context.Context) ([]domain.ExternalReading, error) {
	return s.client.FetchHourly(ctx, s.lat, s.lon, s.days)
}

// FileSource serves a previously saved archive response, for offline runs.
// It implements pipeline.Extractor.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates an extractor reading the archive JSON at path.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

// Extract decodes the fixture file.
func (s *FileSource) Extract(_ context.Context) ([]domain.ExternalReading, error) {
	s.logger.Info("loading weather fixture", "path", s.path)

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read weather fixture: %w", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if decoded.Dropped > 0 {
		s.logger.Warn("fixture hours without data skipped", "dropped", decoded.Dropped,
			"first", decoded.FirstDropped.Format(timeLayout),
			"last", decoded.LastDropped.Format(timeLayout))
	}
	return decoded.Readings, nil
}

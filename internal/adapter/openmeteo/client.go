// Package openmeteo fetches hourly weather history from the Open-Meteo
// archive API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
	"github.com/couchcryptid/sustainability-data-etl/internal/observability"
)

// DefaultBaseURL is the public Open-Meteo historical archive host.
const DefaultBaseURL = "https://archive-api.open-meteo.com"

// maxBodyBytes bounds the payload read; a year of hourly data is ~1 MB.
const maxBodyBytes = 16 << 20

// Client fetches hourly observations from the Open-Meteo archive API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an archive client. The timeout bounds the whole request.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchHourly returns the hourly readings for the trailing window of days
// ending today at the given point.
func (c *Client) FetchHourly(ctx context.Context, lat, lon float64, days int) ([]domain.ExternalReading, error) {
	body, err := c.FetchRaw(ctx, lat, lon, days)
	if err != nil {
		return nil, err
	}

	decoded, err := Decode(body)
	if err != nil {
		c.metrics.SchemaErrors.Inc()
		return nil, err
	}
	if decoded.Dropped > 0 {
		c.logger.Warn("archive hours without data skipped", "dropped", decoded.Dropped, "timezone", decoded.Timezone)
		c.logger.Debug("skipped archive hours",
			"first", decoded.FirstDropped.Format(timeLayout),
			"last", decoded.LastDropped.Format(timeLayout))
		c.metrics.ReadingsDropped.Add(float64(decoded.Dropped))
	}
	return decoded.Readings, nil
}

// FetchRaw performs the archive request and returns the undecoded JSON body.
func (c *Client) FetchRaw(ctx context.Context, lat, lon float64, days int) ([]byte, error) {
	start, end := domain.ArchiveWindow(days)
	params := url.Values{
		"latitude":   {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":  {strconv.FormatFloat(lon, 'f', -1, 64)},
		"start_date": {start},
		"end_date":   {end},
		"hourly":     {hourlyFields},
		"timezone":   {"auto"},
	}
	fullURL := c.baseURL + "/v1/archive?" + params.Encode()

	c.logger.Info("fetching public weather data",
		"lat", lat, "lon", lon, "start_date", start, "end_date", end)

	return c.doRequest(ctx, fullURL)
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	began := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchDuration.Observe(time.Since(began).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("archive request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Reason != "" {
			return nil, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, apiErr.Reason)
		}
		return nil, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	c.metrics.FetchRequests.WithLabelValues("success").Inc()
	return body, nil
}

package openmeteo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
	"github.com/couchcryptid/sustainability-data-etl/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

const twoHourPayload = `{
  "latitude": 40.710335,
  "longitude": -73.99307,
  "utc_offset_seconds": -14400,
  "timezone": "America/New_York",
  "timezone_abbreviation": "EDT",
  "hourly": {
    "time": ["2024-04-26T10:00", "2024-04-26T11:00"],
    "temperature_2m": [21.0, 30.0],
    "shortwave_radiation": [0, 500],
    "relative_humidity_2m": [55, 40]
  }
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     discardLogger(),
	}
}

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.May, 26, 12, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func TestClient_FetchHourly_Success(t *testing.T) {
	freezeClock(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/archive", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "40.7128", q.Get("latitude"))
		assert.Equal(t, "-74.006", q.Get("longitude"))
		assert.Equal(t, "2024-04-26", q.Get("start_date"))
		assert.Equal(t, "2024-05-26", q.Get("end_date"))
		assert.Equal(t, "temperature_2m,shortwave_radiation,relative_humidity_2m", q.Get("hourly"))
		assert.Equal(t, "auto", q.Get("timezone"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(twoHourPayload))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	readings, err := c.FetchHourly(context.Background(), 40.7128, -74.0060, 30)
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.Equal(t, 10, readings[0].Timestamp.Hour())
	_, offset := readings[0].Timestamp.Zone()
	assert.Equal(t, -14400, offset)
	assert.Equal(t, time.Friday, readings[1].Timestamp.Weekday())
	assert.Equal(t, 30.0, readings[1].OutsideTempC)
	assert.Equal(t, 500.0, readings[1].SolarIrradianceWm2)
	assert.Equal(t, 40.0, readings[1].HumidityPct)

	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.FetchRequests.WithLabelValues("success")), 0)
}

func TestClient_FetchHourly_APIError(t *testing.T) {
	freezeClock(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Parameter 'start_date' is out of allowed range"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchHourly(context.Background(), 40.7128, -74.0060, 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "out of allowed range")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.FetchRequests.WithLabelValues("error")), 0)
}

func TestClient_FetchHourly_ServerErrorPlainBody(t *testing.T) {
	freezeClock(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchHourly(context.Background(), 0, 0, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestClient_FetchHourly_MalformedPayload(t *testing.T) {
	freezeClock(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hourly": `))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchHourly(context.Background(), 0, 0, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.SchemaErrors), 0)
}

func TestClient_FetchHourly_Timeout(t *testing.T) {
	freezeClock(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.FetchHourly(context.Background(), 0, 0, 1)
	require.Error(t, err)
}

func TestClient_FetchHourly_ContextCancelled(t *testing.T) {
	freezeClock(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).FetchHourly(ctx, 0, 0, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecode_SchemaMismatch(t *testing.T) {
	cases := map[string]string{
		"missing hourly":     `{"utc_offset_seconds":0}`,
		"length mismatch":    `{"hourly":{"time":["2024-04-26T00:00"],"temperature_2m":[1,2],"shortwave_radiation":[0],"relative_humidity_2m":[50]}}`,
		"missing array":      `{"hourly":{"time":["2024-04-26T00:00"],"temperature_2m":[1],"relative_humidity_2m":[50]}}`,
		"unparseable time":   `{"hourly":{"time":["26/04/2024 00:00"],"temperature_2m":[1],"shortwave_radiation":[0],"relative_humidity_2m":[50]}}`,
		"renamed time array": `{"hourly":{"timestamp":["2024-04-26T00:00"],"temperature_2m":[1],"shortwave_radiation":[0],"relative_humidity_2m":[50]}}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(payload))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchemaMismatch), "got %v", err)
		})
	}
}

func TestDecode_DropsNullHours(t *testing.T) {
	payload := `{"utc_offset_seconds":3600,"timezone":"Europe/Berlin","timezone_abbreviation":"CET","hourly":{
		"time":["2024-01-10T00:00","2024-01-10T01:00","2024-01-10T02:00"],
		"temperature_2m":[1.5,null,2.0],
		"shortwave_radiation":[0,0,null],
		"relative_humidity_2m":[80,81,82]}}`

	decoded, err := Decode([]byte(payload))
	require.NoError(t, err)
	require.Len(t, decoded.Readings, 1)
	assert.Equal(t, 2, decoded.Dropped)
	assert.Equal(t, "2024-01-10T01:00", decoded.FirstDropped.Format(timeLayout))
	assert.Equal(t, "2024-01-10T02:00", decoded.LastDropped.Format(timeLayout))
	assert.Equal(t, "Europe/Berlin", decoded.Timezone)
	assert.Equal(t, 1.5, decoded.Readings[0].OutsideTempC)
	assert.True(t, decoded.Readings[0].Timestamp.Equal(time.Date(2024, time.January, 9, 23, 0, 0, 0, time.UTC)))
}

func TestDecode_EmptyHourly(t *testing.T) {
	decoded, err := Decode([]byte(`{"hourly":{"time":[],"temperature_2m":[],"shortwave_radiation":[],"relative_humidity_2m":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, decoded.Readings)
	assert.True(t, decoded.FirstDropped.IsZero())
}

func TestClient_FetchHourly_LogsDroppedWindow(t *testing.T) {
	freezeClock(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"utc_offset_seconds":0,"hourly":{
			"time":["2024-05-20T22:00","2024-05-20T23:00","2024-05-21T00:00"],
			"temperature_2m":[14.2,null,null],
			"shortwave_radiation":[0,null,null],
			"relative_humidity_2m":[70,null,null]}}`))
	}))
	defer srv.Close()

	var logs bytes.Buffer
	c := testClient(srv.URL)
	c.logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	readings, err := c.FetchHourly(context.Background(), 0, 0, 1)
	require.NoError(t, err)
	assert.Len(t, readings, 1)
	assert.Contains(t, logs.String(), "first=2024-05-20T23:00")
	assert.Contains(t, logs.String(), "last=2024-05-21T00:00")
	assert.InDelta(t, 2, testutil.ToFloat64(c.metrics.ReadingsDropped), 0)
}

func TestFileSource_Extract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	require.NoError(t, os.WriteFile(path, []byte(twoHourPayload), 0o600))

	readings, err := NewFileSource(path, discardLogger()).Extract(context.Background())
	require.NoError(t, err)
	assert.Len(t, readings, 2)
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.json"), discardLogger()).Extract(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read weather fixture")
}

func TestSource_Extract(t *testing.T) {
	freezeClock(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-05-19", r.URL.Query().Get("start_date"))
		_, _ = w.Write([]byte(twoHourPayload))
	}))
	defer srv.Close()

	readings, err := NewSource(testClient(srv.URL), 40.7128, -74.0060, 7).Extract(context.Background())
	require.NoError(t, err)
	assert.Len(t, readings, 2)
}

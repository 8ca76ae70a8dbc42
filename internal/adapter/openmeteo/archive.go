package openmeteo

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
)

// ErrSchemaMismatch is returned when the archive payload does not have the
// expected hourly shape.
var ErrSchemaMismatch = errors.New("archive response schema mismatch")

const (
	hourlyFields = "temperature_2m,shortwave_radiation,relative_humidity_2m"
	timeLayout   = "2006-01-02T15:04"
)

// Archive API response types.

type archiveResponse struct {
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	UTCOffsetSeconds     int     `json:"utc_offset_seconds"`
	Timezone             string  `json:"timezone"`
	TimezoneAbbreviation string  `json:"timezone_abbreviation"`
	Hourly               *hourly `json:"hourly"`
}

// hourly holds parallel arrays; values are null for hours the archive has not
// published yet.
type hourly struct {
	Time               []string   `json:"time"`
	Temperature2m      []*float64 `json:"temperature_2m"`
	ShortwaveRadiation []*float64 `json:"shortwave_radiation"`
	RelativeHumidity2m []*float64 `json:"relative_humidity_2m"`
}

type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Decoded is a parsed archive payload.
type Decoded struct {
	Readings []domain.ExternalReading
	Dropped  int // hours skipped because a variable was null
	Timezone string

	// FirstDropped and LastDropped bound the skipped hours; zero when none were.
	FirstDropped time.Time
	LastDropped  time.Time
}

// Decode parses an archive JSON payload into external readings. Timestamps are
// placed in a fixed zone built from the payload's UTC offset so hour-of-day and
// weekday reflect the site's wall clock.
func Decode(data []byte) (Decoded, error) {
	var resp archiveResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Decoded{}, fmt.Errorf("decode response: %w", err)
	}
	if resp.Hourly == nil {
		return Decoded{}, fmt.Errorf("%w: missing hourly object", ErrSchemaMismatch)
	}

	h := resp.Hourly
	n := len(h.Time)
	if len(h.Temperature2m) != n || len(h.ShortwaveRadiation) != n || len(h.RelativeHumidity2m) != n {
		return Decoded{}, fmt.Errorf("%w: hourly arrays differ in length (time=%d temperature_2m=%d shortwave_radiation=%d relative_humidity_2m=%d)",
			ErrSchemaMismatch, n, len(h.Temperature2m), len(h.ShortwaveRadiation), len(h.RelativeHumidity2m))
	}

	zoneName := resp.TimezoneAbbreviation
	if zoneName == "" {
		zoneName = resp.Timezone
	}
	loc := time.FixedZone(zoneName, resp.UTCOffsetSeconds)

	out := Decoded{
		Readings: make([]domain.ExternalReading, 0, n),
		Timezone: resp.Timezone,
	}
	for i, ts := range h.Time {
		at, err := time.ParseInLocation(timeLayout, ts, loc)
		if err != nil {
			return Decoded{}, fmt.Errorf("%w: time[%d] %q: %v", ErrSchemaMismatch, i, ts, err)
		}
		temp, irr, hum := h.Temperature2m[i], h.ShortwaveRadiation[i], h.RelativeHumidity2m[i]
		if temp == nil || irr == nil || hum == nil {
			if out.Dropped == 0 {
				out.FirstDropped = at
			}
			out.LastDropped = at
			out.Dropped++
			continue
		}
		out.Readings = append(out.Readings, domain.ExternalReading{
			Timestamp:          at,
			OutsideTempC:       *temp,
			SolarIrradianceWm2: *irr,
			HumidityPct:        *hum,
		})
	}
	return out, nil
}

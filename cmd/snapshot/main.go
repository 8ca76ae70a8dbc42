// Command snapshot fetches the weather archive once and saves the raw response
// as a fixture. Point WEATHER_FIXTURE at the file to run esgdata offline with
// the same readings.
//
// Usage:
//
//	go run ./cmd/snapshot -lat 40.7128 -lon -74.0060 -days 30 -out testdata/archive.json
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/sustainability-data-etl/internal/adapter/openmeteo"
	"github.com/couchcryptid/sustainability-data-etl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	lat := flag.Float64("lat", 40.7128, "site latitude")
	lon := flag.Float64("lon", -74.0060, "site longitude")
	days := flag.Int("days", 30, "trailing days of history")
	out := flag.String("out", "", "output path for the archive JSON fixture")
	baseURL := flag.String("base-url", openmeteo.DefaultBaseURL, "archive API base URL")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *days < 1 || *days > 366 {
		return fmt.Errorf("-days must be within [1, 366], got %d", *days)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := sharedobs.NewLogger("info", "text")
	client := openmeteo.NewClient(*baseURL, *timeout, observability.NewMetrics(), logger)

	body, err := client.FetchRaw(ctx, *lat, *lon, *days)
	if err != nil {
		return fmt.Errorf("fetch archive: %w", err)
	}

	// Refuse to save a payload the pipeline could not read back.
	decoded, err := openmeteo.Decode(body)
	if err != nil {
		return fmt.Errorf("validate archive: %w", err)
	}
	log.Printf("readings: %d usable, %d without data (%s)", len(decoded.Readings), decoded.Dropped, decoded.Timezone)

	if err := writeFixture(*out, body); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)
	return nil
}

func writeFixture(path string, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

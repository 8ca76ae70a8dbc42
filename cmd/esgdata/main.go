// Command esgdata builds the synthetic sustainability dataset: it fetches the
// site's hourly weather history, simulates building telemetry on top of it,
// derives carbon accounting columns, and exports the result.
//
// Usage:
//
//	SITE_LATITUDE=40.7128 SITE_LONGITUDE=-74.0060 DAYS_OF_DATA=30 go run ./cmd/esgdata
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/sustainability-data-etl/internal/adapter/csvfile"
	kafkaadapter "github.com/couchcryptid/sustainability-data-etl/internal/adapter/kafka"
	"github.com/couchcryptid/sustainability-data-etl/internal/adapter/openmeteo"
	"github.com/couchcryptid/sustainability-data-etl/internal/adapter/parquet"
	"github.com/couchcryptid/sustainability-data-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/sustainability-data-etl/internal/config"
	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
	"github.com/couchcryptid/sustainability-data-etl/internal/observability"
	"github.com/couchcryptid/sustainability-data-etl/internal/pipeline"
	"github.com/couchcryptid/sustainability-data-etl/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, cfg, logger, metrics)
	stop()
	os.Exit(code)
}

// newLogger builds the stdout logger and installs it as the slog default.
func newLogger(cfg *config.Config) *slog.Logger {
	return sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) int {
	var extractor pipeline.Extractor
	if cfg.WeatherFixture != "" {
		extractor = openmeteo.NewFileSource(cfg.WeatherFixture, logger)
	} else {
		client := openmeteo.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout, metrics, logger)
		extractor = openmeteo.NewSource(client, cfg.Latitude, cfg.Longitude, cfg.DaysOfData)
	}

	if cfg.Seed != nil {
		logger.Info("simulation seeded", "seed", *cfg.Seed)
	}
	transformer := pipeline.NewTransformer(
		domain.NewSimulator(domain.DefaultSimulationParams(), cfg.Seed),
		domain.NewCalculator(cfg.EmissionFactor),
		logger,
	)

	loaders := []pipeline.Loader{xlsx.NewWriter(cfg.OutputFile, logger)}
	if cfg.CSVFile != "" {
		loaders = append(loaders, csvfile.NewWriter(cfg.CSVFile, logger))
	}
	if cfg.ParquetFile != "" {
		loaders = append(loaders, parquet.NewWriter(cfg.ParquetFile, logger))
	}
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() {
			if err := closeWithin(cfg.ShutdownTimeout, writer); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, writer)
	}

	p := pipeline.New(extractor, transformer, loaders, logger, metrics)
	res, err := p.Run(ctx)
	writeTextfile(cfg.MetricsTextfile, logger)

	switch {
	case errors.Is(err, pipeline.ErrNoReadings):
		logger.Error("failed to fetch external data, aborting", "run_id", res.RunID)
		return 1
	case err != nil:
		logger.Error("pipeline failed", "run_id", res.RunID, "error", err)
		return 1
	}

	if err := report.RenderSummary(os.Stdout, res.Summary); err != nil {
		logger.Warn("render summary failed", "error", err)
	}
	logger.Info("dataset exported",
		"run_id", res.RunID,
		"rows", res.Rows,
		"path", cfg.OutputFile,
		"duration", res.Duration,
	)
	return 0
}

func writeTextfile(path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	if err := observability.WriteTextfile(path); err != nil {
		logger.Warn("metrics textfile not written", "path", path, "error", err)
	}
}

// closeWithin closes c, giving up after d.
func closeWithin(d time.Duration, c io.Closer) error {
	done := make(chan error, 1)
	go func() { done <- c.Close() }()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("close timed out after %s", d)
	}
}

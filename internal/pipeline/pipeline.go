package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
	"github.com/couchcryptid/sustainability-data-etl/internal/observability"
	"github.com/google/uuid"
)

// ErrNoReadings is returned when the fetch stage yields nothing to simulate.
var ErrNoReadings = errors.New("no external readings fetched")

// Extractor returns the hourly weather readings for the run.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.ExternalReading, error)
}

// Transformer turns weather readings into exported records, one per reading.
type Transformer interface {
	Transform(readings []domain.ExternalReading) []domain.EmissionRecord
}

// Loader writes the finished batch to one destination.
type Loader interface {
	Name() string
	LoadBatch(ctx context.Context, batch domain.Batch) error
}

// Result describes a completed run.
type Result struct {
	RunID    string
	Rows     int
	Summary  domain.Summary
	Duration time.Duration
}

// Pipeline runs extract, transform, and load once, in order.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loaders     []Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline. Loaders run in the order given.
func New(e Extractor, t Transformer, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run executes one pass. A fetch failure is logged and treated as an empty
// fetch, which ends the run with ErrNoReadings before any loader is called.
// The first loader error ends the run.
func (p *Pipeline) Run(ctx context.Context) (res Result, err error) {
	start := domain.Now()
	res.RunID = uuid.NewString()
	logger := p.logger.With("run_id", res.RunID)
	logger.Info("pipeline started", "loaders", len(p.loaders))

	defer func() {
		end := domain.Now()
		res.Duration = end.Sub(start)
		p.metrics.RunDuration.Set(res.Duration.Seconds())
		p.metrics.LastRunTimestamp.Set(float64(end.Unix()))
	}()

	readings, fetchErr := p.extractor.Extract(ctx)
	if fetchErr != nil {
		logger.Error("fetch external data failed", "error", fetchErr)
		readings = nil
	}
	if len(readings) == 0 {
		p.metrics.RunSuccess.Set(0)
		logger.Error("no external data, skipping simulation and export")
		return res, ErrNoReadings
	}
	p.metrics.ReadingsFetched.Add(float64(len(readings)))
	logger.Info("external data fetched", "rows", len(readings))

	batch := domain.Batch{
		RunID:       res.RunID,
		GeneratedAt: start,
		Records:     p.transformer.Transform(readings),
	}

	for _, l := range p.loaders {
		if err = l.LoadBatch(ctx, batch); err != nil {
			p.metrics.LoadErrors.WithLabelValues(l.Name()).Inc()
			p.metrics.RunSuccess.Set(0)
			return res, fmt.Errorf("load %s: %w", l.Name(), err)
		}
		p.metrics.RecordsExported.WithLabelValues(l.Name()).Add(float64(len(batch.Records)))
	}

	res.Rows = len(batch.Records)
	res.Summary = domain.Summarize(batch.Records)
	p.metrics.NetEnergyUsage.Set(res.Summary.Total.NetKWh)
	p.metrics.Scope2Emissions.Set(res.Summary.Total.Scope2KgCO2)
	p.metrics.AvoidedEmissions.Set(res.Summary.Total.AvoidedKgCO2)
	p.metrics.RunSuccess.Set(1)

	logger.Info("pipeline finished", "rows", res.Rows)
	return res, nil
}

// Package parquet exports the sustainability dataset as a Parquet file using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
	"github.com/parquet-go/parquet-go"
)

// Row is one exported record. The schema is inferred from the struct tags.
type Row struct {
	RunID string `parquet:"run_id,snappy,dict"`

	// Timestamp is the hour as an instant; LocalTime keeps the site wall clock.
	Timestamp time.Time `parquet:"timestamp,snappy"`
	LocalTime string    `parquet:"local_time,snappy"`

	Department string `parquet:"department,snappy,dict"`
	SensorID   string `parquet:"sensor_id,snappy,dict"`

	EnergyConsumptionKWh  float64 `parquet:"energy_consumption_kwh,snappy"`
	SolarGenerationKWh    float64 `parquet:"solar_generation_kwh,snappy"`
	NetEnergyUsageKWh     float64 `parquet:"net_energy_usage_kwh,snappy"`
	OccupancyCount        int32   `parquet:"occupancy_count,snappy"`
	OutsideTempC          float64 `parquet:"outside_temp_c,snappy"`
	Scope2EmissionsKgCO2  float64 `parquet:"scope2_emissions_kgco2,snappy"`
	AvoidedEmissionsKgCO2 float64 `parquet:"avoided_emissions_kgco2,snappy"`
}

// ConvertRecords maps emission records to Parquet rows, rounding the
// accounting columns the same way the workbook does.
func ConvertRecords(runID string, records []domain.EmissionRecord) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{
			RunID:                 runID,
			Timestamp:             r.Timestamp.UTC(),
			LocalTime:             r.Timestamp.Format(domain.TimestampLayout),
			Department:            r.Department,
			SensorID:              r.SensorID,
			EnergyConsumptionKWh:  domain.Round2(r.EnergyConsumptionKWh),
			SolarGenerationKWh:    domain.Round2(r.SolarGenerationKWh),
			NetEnergyUsageKWh:     domain.Round2(r.NetEnergyUsageKWh),
			OccupancyCount:        int32(r.OccupancyCount), //nolint:gosec // occupancy is bounded by SimulationParams
			OutsideTempC:          r.OutsideTempC,
			Scope2EmissionsKgCO2:  domain.Round2(r.Scope2EmissionsKgCO2),
			AvoidedEmissionsKgCO2: domain.Round2(r.AvoidedEmissionsKgCO2),
		}
	}
	return rows
}

// Writer writes a batch to a Parquet file.
// It implements pipeline.Loader.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a Parquet loader targeting path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "parquet" }

// LoadBatch writes every record as one row group and renames the temporary
// file into place.
func (w *Writer) LoadBatch(_ context.Context, batch domain.Batch) error {
	rows := ConvertRecords(batch.RunID, batch.Records)

	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".sustainability-*.parquet")
	if err != nil {
		return fmt.Errorf("create temp parquet: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := writeRows(tmp, rows); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close parquet: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("move parquet into place: %w", err)
	}

	w.logger.Info("parquet written", "path", w.path, "rows", len(rows))
	return nil
}

func writeRows(f *os.File, rows []Row) error {
	writer := parquet.NewGenericWriter[Row](f)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize parquet: %w", err)
	}
	return nil
}

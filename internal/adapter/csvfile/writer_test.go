package csvfile

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWriter_LoadBatch(t *testing.T) {
	ts := time.Date(2024, time.April, 26, 11, 0, 0, 0, time.UTC)
	batch := domain.Batch{
		RunID: "run-1",
		Records: domain.NewCalculator(domain.DefaultEmissionFactor).Apply([]domain.SensorRecord{{
			Timestamp:            ts,
			Department:           "Logistics",
			SensorID:             "METER-102",
			EnergyConsumptionKWh: 100.6,
			SolarGenerationKWh:   18,
			NetEnergyUsageKWh:    82.6,
			OccupancyCount:       191,
			OutsideTempC:         30,
		}}),
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	w := NewWriter(path, discardLogger())
	assert.Equal(t, "csv", w.Name())
	require.NoError(t, w.LoadBatch(context.Background(), batch))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.ExportColumns, rows[0])
	assert.Equal(t, []string{
		"2024-04-26T11:00", "Logistics", "METER-102",
		"100.60", "18.00", "82.60", "191", "30.00", "31.80", "6.93",
	}, rows[1])
}

func TestWriter_MissingDirectoryLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.csv")
	require.Error(t, NewWriter(path, discardLogger()).LoadBatch(context.Background(), domain.Batch{}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

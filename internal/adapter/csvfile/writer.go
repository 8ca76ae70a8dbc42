// Package csvfile exports the sustainability dataset as a CSV file with the
// same columns as the workbook.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
)

// Writer writes a batch to a CSV file.
// It implements pipeline.Loader.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a CSV loader targeting path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "csv" }

// LoadBatch writes the header and one line per record, then renames the
// temporary file into place.
func (w *Writer) LoadBatch(_ context.Context, batch domain.Batch) error {
	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".sustainability-*.csv")
	if err != nil {
		return fmt.Errorf("create temp csv: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	cw := csv.NewWriter(tmp)
	if err := cw.Write(domain.ExportColumns); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range batch.Records {
		if err := cw.Write(formatRow(batch.Records[i])); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("move csv into place: %w", err)
	}

	w.logger.Info("csv written", "path", w.path, "rows", len(batch.Records))
	return nil
}

func formatRow(r domain.EmissionRecord) []string {
	out := make([]string, 0, len(domain.ExportColumns))
	for _, v := range r.Values() {
		switch v := v.(type) {
		case string:
			out = append(out, v)
		case int:
			out = append(out, strconv.Itoa(v))
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', 2, 64))
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}

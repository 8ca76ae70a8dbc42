// Package xlsx exports the sustainability dataset as an Excel workbook and
// reads it back for validation.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single worksheet in the exported workbook.
const SheetName = "Sustainability"

// Writer writes a batch to a workbook on disk.
// It implements pipeline.Loader.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a workbook loader targeting path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "xlsx" }

// LoadBatch writes the header row and one row per record. The workbook is
// written to a temporary file in the target directory and renamed into place,
// so a failed run never leaves a partial workbook behind.
func (w *Writer) LoadBatch(_ context.Context, batch domain.Batch) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRows(f, batch.Records); err != nil {
		return err
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       "Company Sustainability Data",
		Identifier:  batch.RunID,
		Created:     batch.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Description: "Synthetic building telemetry derived from Open-Meteo archive data.",
	}); err != nil {
		return fmt.Errorf("set document properties: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".sustainability-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := f.Write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close workbook: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("move workbook into place: %w", err)
	}

	w.logger.Info("workbook written", "path", w.path, "rows", len(batch.Records))
	return nil
}

func writeRows(f *excelize.File, records []domain.EmissionRecord) error {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	header := make([]any, len(domain.ExportColumns))
	for i, col := range domain.ExportColumns {
		header[i] = col
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, r.Values()); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	return nil
}

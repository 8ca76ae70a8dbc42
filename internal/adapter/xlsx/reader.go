package xlsx

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ReadRecords loads an exported workbook back into records. Timestamps are
// wall-clock values and come back in UTC.
func ReadRecords(path string) ([]domain.EmissionRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", SheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", SheetName)
	}
	if !slices.Equal(rows[0], domain.ExportColumns) {
		return nil, fmt.Errorf("unexpected header %v", rows[0])
	}

	records := make([]domain.EmissionRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (domain.EmissionRecord, error) {
	if len(row) < len(domain.ExportColumns) {
		return domain.EmissionRecord{}, fmt.Errorf("expected %d cells, got %d", len(domain.ExportColumns), len(row))
	}

	ts, err := time.Parse(domain.TimestampLayout, strings.TrimSpace(row[0]))
	if err != nil {
		return domain.EmissionRecord{}, fmt.Errorf("timestamp: %w", err)
	}
	occupancy, err := strconv.Atoi(strings.TrimSpace(row[6]))
	if err != nil {
		return domain.EmissionRecord{}, fmt.Errorf("occupancy: %w", err)
	}

	var floats [6]float64
	for i, col := range []int{3, 4, 5, 7, 8, 9} {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			return domain.EmissionRecord{}, fmt.Errorf("%s: %w", domain.ExportColumns[col], err)
		}
		floats[i] = v
	}

	return domain.EmissionRecord{
		SensorRecord: domain.SensorRecord{
			Timestamp:            ts,
			Department:           row[1],
			SensorID:             row[2],
			EnergyConsumptionKWh: floats[0],
			SolarGenerationKWh:   floats[1],
			NetEnergyUsageKWh:    floats[2],
			OccupancyCount:       occupancy,
			OutsideTempC:         floats[3],
		},
		Scope2EmissionsKgCO2:  floats[4],
		AvoidedEmissionsKgCO2: floats[5],
	}, nil
}

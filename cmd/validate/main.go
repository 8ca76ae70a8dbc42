// Command validate re-reads an exported sustainability workbook and checks it
// against the simulation and carbon accounting rules: header and row shape,
// hourly timeline, occupancy policy, sensor identity, energy balance, and
// emissions. It prints PASS/FAIL per phase and exits 1 on any failure.
//
// Usage:
//
//	go run ./cmd/validate -xlsx Company_Sustainability_Data.xlsx -factor 0.385
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/sustainability-data-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
	"github.com/couchcryptid/sustainability-data-etl/internal/report"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("xlsx", "Company_Sustainability_Data.xlsx", "path to the exported workbook")
	factor := flag.Float64("factor", domain.DefaultEmissionFactor, "grid emission factor used for the export (kg CO2e/kWh)")
	flag.Parse()

	if code := run(os.Stdout, *path, *factor); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, path string, factor float64) int {
	fmt.Fprintln(w, "=== Sustainability Data Validation ===")
	fmt.Fprintln(w)

	records, err := xlsx.ReadRecords(path)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load workbook: %v\n", err)
		return 1
	}

	params := domain.DefaultSimulationParams()
	phases := []*phase{
		validateTimeline(records),
		validateIdentity(records, params),
		validateRules(records, params, factor),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d\n", len(records))
	if len(records) > 0 {
		if err := report.RenderSummary(w, domain.Summarize(records)); err != nil {
			fmt.Fprintf(w, "summary unavailable: %v\n", err)
		}
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// validateTimeline checks that the workbook holds at least one row and that
// timestamps are hourly and strictly increasing. Gaps are allowed where the
// archive had no data.
func validateTimeline(records []domain.EmissionRecord) *phase {
	p := &phase{name: "Phase 1: Hourly timeline"}
	if len(records) == 0 {
		p.errorf("workbook has no data rows")
		return p
	}
	for i, r := range records {
		if r.Timestamp.Minute() != 0 || r.Timestamp.Second() != 0 {
			p.errorf("row %d: timestamp %s is not on the hour", i+2, r.Timestamp.Format(domain.TimestampLayout))
		}
		if i > 0 && !r.Timestamp.After(records[i-1].Timestamp) {
			p.errorf("row %d: timestamp %s does not follow %s", i+2,
				r.Timestamp.Format(domain.TimestampLayout), records[i-1].Timestamp.Format(domain.TimestampLayout))
		}
	}
	return p
}

// validateIdentity checks department and sensor ID values.
func validateIdentity(records []domain.EmissionRecord, params domain.SimulationParams) *phase {
	p := &phase{name: "Phase 2: Department and sensor identity"}
	for i, r := range records {
		n, ok := strings.CutPrefix(r.SensorID, params.SensorIDPrefix)
		if !ok {
			p.errorf("row %d: sensor id %q lacks prefix %q", i+2, r.SensorID, params.SensorIDPrefix)
			continue
		}
		id, err := strconv.Atoi(n)
		if err != nil || !params.SensorIDs.Contains(id) {
			p.errorf("row %d: sensor id %q outside %s%d..%d", i+2, r.SensorID,
				params.SensorIDPrefix, params.SensorIDs.Min, params.SensorIDs.Max)
		}
	}
	return p
}

// validateRules applies the record audit: occupancy policy, consumption
// floor, energy balance, and emissions.
func validateRules(records []domain.EmissionRecord, params domain.SimulationParams, factor float64) *phase {
	p := &phase{name: "Phase 3: Simulation and accounting rules"}
	for i, r := range records {
		for _, problem := range domain.Audit(r, params, factor) {
			p.errorf("row %d: %s", i+2, problem)
		}
	}
	return p
}

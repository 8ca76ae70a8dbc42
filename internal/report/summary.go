// Package report renders the per-department run summary for the console.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var summaryHeaders = []string{"Department", "Records", "Consumption kWh", "Solar kWh", "Net kWh", "Scope 2 kgCO2", "Avoided kgCO2"}

// RenderSummary writes one row per department followed by the grand total.
func RenderSummary(w io.Writer, s domain.Summary) error {
	table := tablewriter.NewWriter(w)
	table.Header(summaryHeaders)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(s.Departments)+1)
	for _, d := range s.Departments {
		data = append(data, summaryRow(d))
	}
	data = append(data, summaryRow(s.Total))

	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("build summary table: %w", err)
	}
	return table.Render()
}

func summaryRow(d domain.DepartmentSummary) []string {
	return []string{
		d.Department,
		strconv.Itoa(d.Records),
		formatKWh(d.ConsumptionKWh),
		formatKWh(d.GenerationKWh),
		formatKWh(d.NetKWh),
		formatKWh(d.Scope2KgCO2),
		formatKWh(d.AvoidedKgCO2),
	}
}

func formatKWh(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

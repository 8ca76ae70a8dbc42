package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSummary(t *testing.T) {
	s := domain.Summary{
		Departments: []domain.DepartmentSummary{
			{Department: "HQ", Records: 1, ConsumptionKWh: 72.3, NetKWh: 72.3, Scope2KgCO2: 27.8355},
			{Department: "R&D", Records: 1, ConsumptionKWh: 100.6, GenerationKWh: 18, NetKWh: 82.6, Scope2KgCO2: 31.801, AvoidedKgCO2: 6.93},
		},
		Total: domain.DepartmentSummary{Department: "TOTAL", Records: 2, ConsumptionKWh: 172.9, GenerationKWh: 18, NetKWh: 154.9, Scope2KgCO2: 59.6365, AvoidedKgCO2: 6.93},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, s))
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, strings.ToUpper(out), "DEPARTMENT")
	assert.Contains(t, out, "R&D")
	assert.Contains(t, out, "154.90")
	assert.Contains(t, out, "59.64")

	hq := strings.Index(out, "HQ")
	total := strings.Index(out, "TOTAL")
	require.NotEqual(t, -1, hq)
	require.NotEqual(t, -1, total)
	assert.Less(t, hq, total, "total row should come last")
}

func TestSummaryRow(t *testing.T) {
	row := summaryRow(domain.DepartmentSummary{Department: "Logistics", Records: 3, ConsumptionKWh: 1.004, NetKWh: -2.5})
	assert.Equal(t, []string{"Logistics", "3", "1.00", "0.00", "-2.50", "0.00", "0.00"}, row)
}

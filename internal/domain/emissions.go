package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// DefaultEmissionFactor is the grid emission factor in kg CO2e per kWh,
// approximately the US average.
const DefaultEmissionFactor = 0.385

// Calculator derives carbon accounting columns from simulated energy data.
type Calculator struct {
	factor float64
}

// NewCalculator creates a Calculator for the given grid emission factor.
func NewCalculator(factor float64) Calculator {
	return Calculator{factor: factor}
}

// Factor returns the grid emission factor.
func (c Calculator) Factor() float64 {
	return c.factor
}

// Apply appends Scope 2 and avoided emissions to every record. Row count and
// order are preserved.
func (c Calculator) Apply(records []SensorRecord) []EmissionRecord {
	out := make([]EmissionRecord, len(records))
	for i, r := range records {
		out[i] = EmissionRecord{
			SensorRecord:          r,
			Scope2EmissionsKgCO2:  r.NetEnergyUsageKWh * c.factor,
			AvoidedEmissionsKgCO2: r.SolarGenerationKWh * c.factor,
		}
	}
	return out
}

// DepartmentSummary aggregates the records of one department.
type DepartmentSummary struct {
	Department     string
	Records        int
	ConsumptionKWh float64
	GenerationKWh  float64
	NetKWh         float64
	Scope2KgCO2    float64
	AvoidedKgCO2   float64
}

func (s *DepartmentSummary) add(r EmissionRecord) {
	s.Records++
	s.ConsumptionKWh += r.EnergyConsumptionKWh
	s.GenerationKWh += r.SolarGenerationKWh
	s.NetKWh += r.NetEnergyUsageKWh
	s.Scope2KgCO2 += r.Scope2EmissionsKgCO2
	s.AvoidedKgCO2 += r.AvoidedEmissionsKgCO2
}

// Summary holds per-department totals, sorted by department, and a grand total.
type Summary struct {
	Departments []DepartmentSummary
	Total       DepartmentSummary
}

// Summarize aggregates records by department.
func Summarize(records []EmissionRecord) Summary {
	byDept := make(map[string]*DepartmentSummary)
	total := DepartmentSummary{Department: "TOTAL"}
	for _, r := range records {
		d, ok := byDept[r.Department]
		if !ok {
			d = &DepartmentSummary{Department: r.Department}
			byDept[r.Department] = d
		}
		d.add(r)
		total.add(r)
	}

	depts := make([]DepartmentSummary, 0, len(byDept))
	for _, d := range byDept {
		depts = append(depts, *d)
	}
	slices.SortFunc(depts, func(a, b DepartmentSummary) int {
		return cmp.Compare(a.Department, b.Department)
	})
	return Summary{Departments: depts, Total: total}
}

// Audit checks an exported record against the simulation and accounting
// rules and returns one message per violated rule. Values are compared with
// the two-decimal tolerance of the export format.
func Audit(r EmissionRecord, p SimulationParams, factor float64) []string {
	var problems []string

	if want := p.OccupancyRange(r.Timestamp); !want.Contains(r.OccupancyCount) {
		problems = append(problems, fmt.Sprintf("occupancy %d outside [%d,%d] at %s",
			r.OccupancyCount, want.Min, want.Max, r.Timestamp.Format(TimestampLayout)))
	}
	if net := r.EnergyConsumptionKWh - r.SolarGenerationKWh; !within(r.NetEnergyUsageKWh, net, 0.011) {
		problems = append(problems, fmt.Sprintf("net usage %.2f != consumption %.2f - generation %.2f",
			r.NetEnergyUsageKWh, r.EnergyConsumptionKWh, r.SolarGenerationKWh))
	}
	if want := r.NetEnergyUsageKWh * factor; !within(r.Scope2EmissionsKgCO2, want, 0.011) {
		problems = append(problems, fmt.Sprintf("scope2 %.2f != %.4f", r.Scope2EmissionsKgCO2, want))
	}
	if want := r.SolarGenerationKWh * factor; !within(r.AvoidedEmissionsKgCO2, want, 0.011) {
		problems = append(problems, fmt.Sprintf("avoided %.2f != %.4f", r.AvoidedEmissionsKgCO2, want))
	}
	if floor := p.BaseLoadKWh + p.HVACLoad(r.OutsideTempC); r.EnergyConsumptionKWh < Round2(floor)-0.01 {
		problems = append(problems, fmt.Sprintf("consumption %.2f below base+hvac %.2f", r.EnergyConsumptionKWh, floor))
	}
	if !slices.Contains(p.Departments, r.Department) {
		problems = append(problems, fmt.Sprintf("unknown department %q", r.Department))
	}
	return problems
}

func within(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

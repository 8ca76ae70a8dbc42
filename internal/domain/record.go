package domain

import (
	"math"
	"time"
)

// TimestampLayout is the wall-clock format used for exported timestamps. It
// matches the archive's own "time" values so exports stay joinable with it.
const TimestampLayout = "2006-01-02T15:04"

// ExportColumns is the header row shared by every tabular export.
var ExportColumns = []string{
	"Timestamp",
	"Department",
	"Sensor_ID",
	"Energy_Consumption_kWh",
	"Solar_Generation_kWh",
	"Net_Energy_Usage_kWh",
	"Occupancy_Count",
	"Outside_Temp_C",
	"Scope2_Emissions_kgCO2",
	"Avoided_Emissions_kgCO2",
}

// ExternalReading is one hourly weather observation for the site.
type ExternalReading struct {
	Timestamp          time.Time
	OutsideTempC       float64
	SolarIrradianceWm2 float64
	HumidityPct        float64
}

// SensorRecord is the simulated building telemetry for one hour.
type SensorRecord struct {
	Timestamp            time.Time `json:"timestamp"`
	Department           string    `json:"department"`
	SensorID             string    `json:"sensor_id"`
	EnergyConsumptionKWh float64   `json:"energy_consumption_kwh"`
	SolarGenerationKWh   float64   `json:"solar_generation_kwh"`
	NetEnergyUsageKWh    float64   `json:"net_energy_usage_kwh"`
	OccupancyCount       int       `json:"occupancy_count"`
	OutsideTempC         float64   `json:"outside_temp_c"`
}

// EmissionRecord is a SensorRecord with the carbon accounting columns appended.
// It is the exported shape.
type EmissionRecord struct {
	SensorRecord
	Scope2EmissionsKgCO2  float64 `json:"scope2_emissions_kgco2"`
	AvoidedEmissionsKgCO2 float64 `json:"avoided_emissions_kgco2"`
}

// Batch is the output of one pipeline run handed to every loader.
type Batch struct {
	RunID       string
	GeneratedAt time.Time
	Records     []EmissionRecord
}

// Values returns the record's cells in ExportColumns order. Floats are
// rounded to two decimals for presentation.
func (r EmissionRecord) Values() []any {
	return []any{
		r.Timestamp.Format(TimestampLayout),
		r.Department,
		r.SensorID,
		Round2(r.EnergyConsumptionKWh),
		Round2(r.SolarGenerationKWh),
		Round2(r.NetEnergyUsageKWh),
		r.OccupancyCount,
		r.OutsideTempC,
		Round2(r.Scope2EmissionsKgCO2),
		Round2(r.AvoidedEmissionsKgCO2),
	}
}

// Round2 rounds v to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package domain

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// IntRange is an inclusive integer range.
type IntRange struct {
	Min int
	Max int
}

// Contains reports whether v lies within the range.
func (r IntRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// SimulationParams holds the constants of the building model. Keeping them in
// one place keeps the formulas auditable against the package documentation.
type SimulationParams struct {
	BaseLoadKWh        float64 // servers and lighting
	ComfortSetpointC   float64
	HVACFactorKWh      float64 // per degree of deviation from the setpoint
	OccupancyFactorKWh float64 // per occupant
	PanelAreaM2        float64
	PanelEfficiency    float64

	BusinessStartHour int // inclusive
	BusinessEndHour   int // inclusive
	BusyOccupancy     IntRange
	IdleOccupancy     IntRange

	Departments    []string
	SensorIDs      IntRange
	SensorIDPrefix string
}

// DefaultSimulationParams returns the reference building: a 200 m² array at
// 18% efficiency, a 21°C setpoint, and an office staffed 8am to 6pm on weekdays.
func DefaultSimulationParams() SimulationParams {
	return SimulationParams{
		BaseLoadKWh:        50.0,
		ComfortSetpointC:   21.0,
		HVACFactorKWh:      3.5,
		OccupancyFactorKWh: 0.1,
		PanelAreaM2:        200,
		PanelEfficiency:    0.18,

		BusinessStartHour: 8,
		BusinessEndHour:   18,
		BusyOccupancy:     IntRange{Min: 150, Max: 300},
		IdleOccupancy:     IntRange{Min: 0, Max: 10},

		Departments:    []string{"HQ", "R&D", "Logistics"},
		SensorIDs:      IntRange{Min: 100, Max: 105},
		SensorIDPrefix: "METER-",
	}
}

// Simulator synthesizes building telemetry from weather readings. Rows are
// independent; the only state is the random source.
type Simulator struct {
	params SimulationParams
	rng    *rand.Rand
}

// NewSimulator creates a Simulator. A nil seed draws a random one, so output
// differs between runs; pass a seed for reproducible datasets.
func NewSimulator(params SimulationParams, seed *uint64) *Simulator {
	var s1, s2 uint64
	if seed != nil {
		s1, s2 = *seed, *seed^0x9e3779b97f4a7c15
	} else {
		s1, s2 = rand.Uint64(), rand.Uint64()
	}
	return &Simulator{
		params: params,
		rng:    rand.New(rand.NewPCG(s1, s2)),
	}
}

// Params returns the simulator's model constants.
func (s *Simulator) Params() SimulationParams {
	return s.params
}

// Simulate produces exactly one SensorRecord per reading, in input order.
func (s *Simulator) Simulate(readings []ExternalReading) []SensorRecord {
	records := make([]SensorRecord, len(readings))
	for i, r := range readings {
		records[i] = s.SimulateReading(r)
	}
	return records
}

// SimulateReading derives the telemetry for a single hour.
func (s *Simulator) SimulateReading(r ExternalReading) SensorRecord {
	occupancy := s.occupancy(r.Timestamp)
	consumption := Round2(s.params.EnergyConsumption(r.OutsideTempC, occupancy))
	generation := Round2(s.params.SolarGeneration(r.SolarIrradianceWm2))

	return SensorRecord{
		Timestamp:            r.Timestamp,
		Department:           s.department(),
		SensorID:             s.sensorID(),
		EnergyConsumptionKWh: consumption,
		SolarGenerationKWh:   generation,
		NetEnergyUsageKWh:    consumption - generation,
		OccupancyCount:       occupancy,
		OutsideTempC:         r.OutsideTempC,
	}
}

func (s *Simulator) occupancy(t time.Time) int {
	return s.between(s.params.OccupancyRange(t))
}

func (s *Simulator) department() string {
	if len(s.params.Departments) == 0 {
		return ""
	}
	return s.params.Departments[s.rng.IntN(len(s.params.Departments))]
}

func (s *Simulator) sensorID() string {
	return fmt.Sprintf("%s%d", s.params.SensorIDPrefix, s.between(s.params.SensorIDs))
}

func (s *Simulator) between(r IntRange) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + s.rng.IntN(r.Max-r.Min+1)
}

// IsBusinessHour reports whether t falls in staffed hours: Monday to Friday,
// BusinessStartHour through BusinessEndHour inclusive.
func (p SimulationParams) IsBusinessHour(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	h := t.Hour()
	return h >= p.BusinessStartHour && h <= p.BusinessEndHour
}

// OccupancyRange returns the occupancy range that applies at t.
func (p SimulationParams) OccupancyRange(t time.Time) IntRange {
	if p.IsBusinessHour(t) {
		return p.BusyOccupancy
	}
	return p.IdleOccupancy
}

// HVACLoad is proportional to the distance from the comfort setpoint.
func (p SimulationParams) HVACLoad(outsideTempC float64) float64 {
	return math.Abs(outsideTempC-p.ComfortSetpointC) * p.HVACFactorKWh
}

// EnergyConsumption is base load plus HVAC load plus occupant load, unrounded.
func (p SimulationParams) EnergyConsumption(outsideTempC float64, occupancy int) float64 {
	return p.BaseLoadKWh + p.HVACLoad(outsideTempC) + float64(occupancy)*p.OccupancyFactorKWh
}

// SolarGeneration converts irradiance (W/m²) over one hour to kWh for the array.
func (p SimulationParams) SolarGeneration(irradianceWm2 float64) float64 {
	return irradianceWm2 * 0.001 * p.PanelAreaM2 * p.PanelEfficiency
}

package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
)

// SustainabilityTransformer implements Transformer by running the sensor
// simulator and then the emissions calculator.
type SustainabilityTransformer struct {
	simulator  *domain.Simulator
	calculator domain.Calculator
	logger     *slog.Logger
}

// NewTransformer creates a SustainabilityTransformer.
func NewTransformer(simulator *domain.Simulator, calculator domain.Calculator, logger *slog.Logger) *SustainabilityTransformer {
	return &SustainabilityTransformer{
		simulator:  simulator,
		calculator: calculator,
		logger:     logger,
	}
}

func (t *SustainabilityTransformer) Transform(readings []domain.ExternalReading) []domain.EmissionRecord {
	t.logger.Info("simulating internal sensor data", "rows", len(readings))
	sensors := t.simulator.Simulate(readings)

	t.logger.Info("calculating emission metrics", "factor", t.calculator.Factor())
	return t.calculator.Apply(sensors)
}

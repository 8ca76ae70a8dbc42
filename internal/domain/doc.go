// Package domain models the synthetic sustainability dataset: hourly weather
// observations, the building telemetry simulated from them, and the carbon
// accounting columns derived from that telemetry.
//
// # Data Source
//
// External readings come from the Open-Meteo historical archive
// (https://archive-api.open-meteo.com/v1/archive). The archive returns parallel
// hourly arrays keyed by variable name:
//
//	temperature_2m        °C at 2 m above ground
//	shortwave_radiation   W/m² global horizontal irradiance (preceding-hour mean)
//	relative_humidity_2m  % at 2 m above ground
//
// Timestamps are "YYYY-MM-DDTHH:MM" in the site's local time when the request
// uses timezone=auto. Recent hours are published as null until the reanalysis
// catches up (roughly five days behind real time).
//
// # Simulation Model
//
// Each hour maps to exactly one sensor record:
//
//	occupancy     weekday 08:00–18:59 → uniform [150,300], otherwise uniform [0,10]
//	hvac_load     |outside_temp − 21| × 3.5 kWh
//	consumption   50 + hvac_load + occupancy × 0.1 kWh
//	generation    irradiance × 0.001 × 200 m² × 0.18
//	net           consumption − generation (negative means net export)
//
// Consumption and generation are rounded to two decimals before net metering,
// so the net column always equals the difference of the exported columns.
//
// # Carbon Accounting
//
//	scope2_emissions   net × grid emission factor
//	avoided_emissions  generation × grid emission factor
//
// The default grid factor, 0.385 kg CO2e/kWh, approximates the US average.
package domain

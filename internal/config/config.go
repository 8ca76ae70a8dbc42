package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/sustainability-data-etl/internal/domain"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	// Site and window.
	Latitude   float64
	Longitude  float64
	DaysOfData int

	// Outputs. Only OutputFile is mandatory; the others are written when set.
	OutputFile      string
	CSVFile         string
	ParquetFile     string
	MetricsTextfile string

	EmissionFactor float64
	// Seed makes the simulation reproducible. Nil means a random seed.
	Seed *uint64

	// Weather archive.
	WeatherBaseURL string
	WeatherTimeout time.Duration
	WeatherFixture string

	// Kafka sink, enabled when brokers are configured.
	KafkaBrokers []string
	KafkaTopic   string

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// KafkaEnabled reports whether records should also be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	lat, err := parseFloat("SITE_LATITUDE", "40.7128")
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat("SITE_LONGITUDE", "-74.0060")
	if err != nil {
		return nil, err
	}
	days, err := strconv.Atoi(sharedcfg.EnvOrDefault("DAYS_OF_DATA", "30"))
	if err != nil {
		return nil, errors.New("invalid DAYS_OF_DATA")
	}
	factor, err := parseFloat("EMISSION_FACTOR", strconv.FormatFloat(domain.DefaultEmissionFactor, 'f', -1, 64))
	if err != nil {
		return nil, err
	}
	seed, err := parseSeed()
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("WEATHER_TIMEOUT", "30s"))
	if err != nil || weatherTimeout <= 0 {
		return nil, errors.New("invalid WEATHER_TIMEOUT")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		Latitude:        lat,
		Longitude:       lon,
		DaysOfData:      days,
		OutputFile:      sharedcfg.EnvOrDefault("OUTPUT_FILE", "Company_Sustainability_Data.xlsx"),
		CSVFile:         os.Getenv("CSV_FILE"),
		ParquetFile:     os.Getenv("PARQUET_FILE"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		EmissionFactor:  factor,
		Seed:            seed,
		WeatherBaseURL:  sharedcfg.EnvOrDefault("WEATHER_BASE_URL", "https://archive-api.open-meteo.com"),
		WeatherTimeout:  weatherTimeout,
		WeatherFixture:  os.Getenv("WEATHER_FIXTURE"),
		KafkaBrokers:    brokers,
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "sustainability-records"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.Latitude < -90 || cfg.Latitude > 90 {
		return nil, errors.New("SITE_LATITUDE must be within [-90, 90]")
	}
	if cfg.Longitude < -180 || cfg.Longitude > 180 {
		return nil, errors.New("SITE_LONGITUDE must be within [-180, 180]")
	}
	if cfg.DaysOfData < 1 || cfg.DaysOfData > 366 {
		return nil, errors.New("DAYS_OF_DATA must be within [1, 366]")
	}
	if cfg.EmissionFactor <= 0 {
		return nil, errors.New("EMISSION_FACTOR must be positive")
	}
	if cfg.OutputFile == "" {
		return nil, errors.New("OUTPUT_FILE is required")
	}
	if cfg.KafkaEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parseFloat(key, fallback string) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, fallback), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func parseSeed() (*uint64, error) {
	s := os.Getenv("SIM_SEED")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, errors.New("invalid SIM_SEED")
	}
	return &v, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines application configuration.
type Config struct {
	DB         DBConfig         `yaml:"db"`
	Log        LogConfig        `yaml:"log"`
	Compliance ComplianceConfig `yaml:"compliance"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// ComplianceConfig overrides the continuous-training thresholds. Zero
// fields keep their defaults.
type ComplianceConfig struct {
	WindowYears  int     `yaml:"window_years"`
	RequiredDays float64 `yaml:"required_days"`
	HoursPerDay  float64 `yaml:"hours_per_day"`
	MinLiveRatio float64 `yaml:"min_live_ratio"`
	AtRiskYears  int     `yaml:"at_risk_years"`
	AtRiskDays   float64 `yaml:"at_risk_days"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		DB: DBConfig{
			Path: "skillkeeper.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("SKILLKEEPER_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if dbPath := os.Getenv("SKILLKEEPER_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("SKILLKEEPER_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if days := os.Getenv("SKILLKEEPER_REQUIRED_DAYS"); days != "" {
		parsed, err := strconv.ParseFloat(days, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SKILLKEEPER_REQUIRED_DAYS: %w", err)
		}
		cfg.Compliance.RequiredDays = parsed
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

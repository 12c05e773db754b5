package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Geoclient GeoclientConfig `yaml:"geoclient" mapstructure:"geoclient"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Bulk      BulkConfig      `yaml:"bulk" mapstructure:"bulk"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the raw dataset files.
type DataConfig struct {
	Dir          string `yaml:"dir" mapstructure:"dir"`
	PlutoDir     string `yaml:"pluto_dir" mapstructure:"pluto_dir"`
	EnergyFile   string `yaml:"energy_file" mapstructure:"energy_file"`
	SystemsFile  string `yaml:"systems_file" mapstructure:"systems_file"`
	GradesFile   string `yaml:"grades_file" mapstructure:"grades_file"`
	FallbackFile string `yaml:"fallback_file" mapstructure:"fallback_file"`
}

// GeoclientConfig holds NYC Geoclient API settings.
type GeoclientConfig struct {
	AppID       string  `yaml:"app_id" mapstructure:"app_id"`
	AppKey      string  `yaml:"app_key" mapstructure:"app_key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ScoringConfig holds the opportunity-scoring and projection parameters.
type ScoringConfig struct {
	ReferenceYear     int     `yaml:"reference_year" mapstructure:"reference_year"`
	MinBuildingSize   float64 `yaml:"min_building_size" mapstructure:"min_building_size"`
	EnergyCostPerSqFt float64 `yaml:"energy_cost_per_sqft" mapstructure:"energy_cost_per_sqft"`
	HVACShare         float64 `yaml:"hvac_share" mapstructure:"hvac_share"`
	SensorCost        float64 `yaml:"sensor_cost" mapstructure:"sensor_cost"`
	DiscountRate      float64 `yaml:"discount_rate" mapstructure:"discount_rate"`
	NPVYears          int     `yaml:"npv_years" mapstructure:"npv_years"`
	AHUPerFloors      int     `yaml:"ahu_per_floors" mapstructure:"ahu_per_floors"`
}

// BulkConfig configures bulk address scoring.
type BulkConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	MaxAddresses  int `yaml:"max_addresses" mapstructure:"max_addresses"`
}

// StoreConfig configures the sqlite snapshot cache.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ODCV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.pluto_dir", "data/pluto")
	v.SetDefault("data.energy_file", "data/ll84_monthly.csv")
	v.SetDefault("data.systems_file", "data/ll87_2019_2024.csv")
	v.SetDefault("data.grades_file", "data/ll33_grades.csv")
	v.SetDefault("geoclient.base_url", "https://api.nyc.gov/geo/geoclient/v1")
	v.SetDefault("geoclient.timeout_secs", 5)
	v.SetDefault("geoclient.rate_per_sec", 5.0)
	v.SetDefault("scoring.reference_year", 2025)
	v.SetDefault("scoring.min_building_size", 75000)
	v.SetDefault("scoring.energy_cost_per_sqft", 3.50)
	v.SetDefault("scoring.hvac_share", 0.40)
	v.SetDefault("scoring.sensor_cost", 2000)
	v.SetDefault("scoring.discount_rate", 0.05)
	v.SetDefault("scoring.npv_years", 10)
	v.SetDefault("scoring.ahu_per_floors", 5)
	v.SetDefault("bulk.max_concurrent", 5)
	v.SetDefault("bulk.max_addresses", 50)
	v.SetDefault("store.path", "cache/odcv.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

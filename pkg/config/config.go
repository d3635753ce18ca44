package config

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	SLA      SLAConfig      `mapstructure:"sla"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Port            string `mapstructure:"port"`
	AllowedOrigins  string `mapstructure:"allowedOrigins"`
	ShutdownTimeout int    `mapstructure:"shutdownTimeout"`
}

// DatabaseConfig holds the SQLite storage configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SLAConfig holds the severity resolution windows, in minutes
type SLAConfig struct {
	HighMinutes   int `mapstructure:"highMinutes"`
	MediumMinutes int `mapstructure:"mediumMinutes"`
	LowMinutes    int `mapstructure:"lowMinutes"`
}

// Durations converts the configured windows to time.Durations
func (c SLAConfig) Durations() (high, medium, low time.Duration) {
	return time.Duration(c.HighMinutes) * time.Minute,
		time.Duration(c.MediumMinutes) * time.Minute,
		time.Duration(c.LowMinutes) * time.Minute
}

// MonitorConfig holds the SLA breach sweep configuration
type MonitorConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// IngestConfig holds the detection thresholds for the ingestion path
type IngestConfig struct {
	BruteForceAttempts int     `mapstructure:"bruteForceAttempts"`
	TemperatureMax     float64 `mapstructure:"temperatureMax"`
	TemperatureMin     float64 `mapstructure:"temperatureMin"`
	VibrationMax       float64 `mapstructure:"vibrationMax"`
}

// LoadConfig loads the application configuration from file or environment variables
func LoadConfig(configPath string) (*Config, error) {
	var config Config

	// Set default values
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.allowedOrigins", "*")
	viper.SetDefault("server.shutdownTimeout", 10)
	viper.SetDefault("database.path", "soc.db")
	viper.SetDefault("sla.highMinutes", 15)
	viper.SetDefault("sla.mediumMinutes", 60)
	viper.SetDefault("sla.lowMinutes", 240)
	viper.SetDefault("monitor.enabled", true)
	viper.SetDefault("monitor.schedule", "@every 1m")
	viper.SetDefault("ingest.bruteForceAttempts", 3)
	viper.SetDefault("ingest.temperatureMax", 70)
	viper.SetDefault("ingest.temperatureMin", 0)
	viper.SetDefault("ingest.vibrationMax", 5)

	// Allow environment variables to override config file
	viper.SetEnvPrefix("SOC_ENGINE")
	viper.AutomaticEnv()

	// If config file is provided, read it
	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			logrus.Warnf("Error reading config file: %v", err)
		}
	}

	// Unmarshal config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

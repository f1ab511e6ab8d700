package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	Region     string `mapstructure:"region"`
	BucketName string `mapstructure:"bucket_name"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type Config struct {
	Seed            int       `mapstructure:"seed"`
	StartDate       time.Time `mapstructure:"start_date"`
	EndDate         time.Time `mapstructure:"end_date"`
	Tables          int       `mapstructure:"tables"`
	OccupancyFactor float64   `mapstructure:"occupancy_factor"`
	MinGuests       int       `mapstructure:"min_guests"`
	MaxGuests       int       `mapstructure:"max_guests"`
	CatalogFile     string    `mapstructure:"catalog_file"`
	ProfilePath     string    `mapstructure:"profile_path"`
	DefaultLocale   string    `mapstructure:"default_locale"`
	Continuous      bool      `mapstructure:"continuous"`

	// Catalog generation bounds, used when no catalog file is given
	MinItemsPerCategory int     `mapstructure:"min_items_per_category"`
	MaxItemsPerCategory int     `mapstructure:"max_items_per_category"`
	MinItemPrice        float64 `mapstructure:"min_item_price"`
	MaxItemPrice        float64 `mapstructure:"max_item_price"`

	KafkaEnabled     bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList  string `mapstructure:"kafka_broker_list"`
	SessionTimeoutMs int    `mapstructure:"session_timeout_ms"`

	OutputFormat      string             `mapstructure:"output_format"`
	OutputPath        string             `mapstructure:"output_path"`
	OutputFolder      string             `mapstructure:"output_folder"`
	OutputDestination string             `mapstructure:"output_destination"`
	CloudStorage      CloudStorageConfig `mapstructure:"cloud_storage"`
	Database          DatabaseConfig     `mapstructure:"database"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Default config location
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	viper.SetDefault("start_date", time.Now().Format(time.RFC3339))
	viper.SetDefault("default_locale", "en")
	viper.SetDefault("min_guests", 2)
	viper.SetDefault("max_guests", 6)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}

package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DataDir string        `mapstructure:"data_dir"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Geo     GeoConfig     `mapstructure:"geo"`
}

type CatalogConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	CoversURL string        `mapstructure:"covers_url"`
	PageSize  int           `mapstructure:"page_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type GeoConfig struct {
	CountriesURL string        `mapstructure:"countries_url"`
	IPInfoURL    string        `mapstructure:"ipinfo_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	defaultDataDir := filepath.Join(homeDir, ".shelfmark")

	viper.SetDefault("data_dir", defaultDataDir)
	viper.SetDefault("catalog.base_url", "https://openlibrary.org")
	viper.SetDefault("catalog.covers_url", "https://covers.openlibrary.org")
	viper.SetDefault("catalog.page_size", 10)
	viper.SetDefault("catalog.timeout", 15*time.Second)
	viper.SetDefault("geo.countries_url", "https://api.first.org/data/v1/countries")
	viper.SetDefault("geo.ipinfo_url", "https://ipinfo.io/json")
	viper.SetDefault("geo.timeout", 10*time.Second)

	// Environment variable overrides
	viper.SetEnvPrefix("SHELFMARK")
	viper.AutomaticEnv()
	viper.BindEnv("data_dir", "SHELFMARK_DATA_DIR")
	viper.BindEnv("catalog.base_url", "SHELFMARK_CATALOG_BASE_URL")
	viper.BindEnv("catalog.page_size", "SHELFMARK_CATALOG_PAGE_SIZE")

	// Config file
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultDataDir)

	// Read config file if exists (ignore error if not found)
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "shelfmark.log")
}

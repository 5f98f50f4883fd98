package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env        string
	Locale     string
	Store      StoreConfig
	Shop       ShopConfig
	FileServer FileServerConfig
}

// StoreConfig holds catalog store and flat-file persistence configuration
type StoreConfig struct {
	DataDir      string
	DumpDebounce time.Duration
	DumpRetries  int
}

// ShopConfig holds the demo driver worker-pool configuration
type ShopConfig struct {
	Clients          int
	ReviewsPerClient int
}

// FileServerConfig holds the static file server configuration
type FileServerConfig struct {
	Port            string
	Root            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// Load reads configuration from environment variables and returns a Config struct
func Load() (*Config, error) {
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOCALE", "en-US")

	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("DUMP_DEBOUNCE", "1s")
	viper.SetDefault("DUMP_RETRIES", 3)

	viper.SetDefault("SHOP_CLIENTS", 5)
	viper.SetDefault("SHOP_REVIEWS_PER_CLIENT", 4)

	viper.SetDefault("FILE_SERVER_PORT", "8080")
	viper.SetDefault("FILE_SERVER_ROOT", "public")
	viper.SetDefault("FILE_SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("FILE_SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("FILE_SERVER_SHUTDOWN_TIMEOUT", "30s")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	dumpDebounce, err := time.ParseDuration(viper.GetString("DUMP_DEBOUNCE"))
	if err != nil {
		return nil, fmt.Errorf("invalid DUMP_DEBOUNCE: %w", err)
	}

	readTimeout, err := time.ParseDuration(viper.GetString("FILE_SERVER_READ_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid FILE_SERVER_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(viper.GetString("FILE_SERVER_WRITE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid FILE_SERVER_WRITE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := time.ParseDuration(viper.GetString("FILE_SERVER_SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid FILE_SERVER_SHUTDOWN_TIMEOUT: %w", err)
	}

	allowedOrigins := strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",")
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	config := &Config{
		Env:    viper.GetString("ENV"),
		Locale: viper.GetString("LOCALE"),
		Store: StoreConfig{
			DataDir:      viper.GetString("DATA_DIR"),
			DumpDebounce: dumpDebounce,
			DumpRetries:  viper.GetInt("DUMP_RETRIES"),
		},
		Shop: ShopConfig{
			Clients:          viper.GetInt("SHOP_CLIENTS"),
			ReviewsPerClient: viper.GetInt("SHOP_REVIEWS_PER_CLIENT"),
		},
		FileServer: FileServerConfig{
			Port:            viper.GetString("FILE_SERVER_PORT"),
			Root:            viper.GetString("FILE_SERVER_ROOT"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			AllowedOrigins:  allowedOrigins,
		},
	}

	return config, nil
}

package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// WebServer Configuration
	WebServerPort int `mapstructure:"WEBSERVER_PORT"`

	// Database Configuration
	DatabaseDSN     string `mapstructure:"DATABASE_DSN" validate:"required"`
	DatabaseRetries int    `mapstructure:"DATABASE_RETRIES"`

	// Mux transcoding provider
	MuxTokenID       string `mapstructure:"MUX_TOKEN_ID"`
	MuxTokenSecret   string `mapstructure:"MUX_TOKEN_SECRET"`
	MuxWebhookSecret string `mapstructure:"MUX_WEBHOOK_SECRET"`

	// Raw-upload storage (signed source URLs for the transcoder)
	StorageBaseURL       string `mapstructure:"STORAGE_BASE_URL"`
	StorageSigningSecret string `mapstructure:"STORAGE_SIGNING_SECRET"`
	StorageMediaRoot     string `mapstructure:"STORAGE_MEDIA_ROOT"`

	// Session cookie secret
	SessionSecret string `mapstructure:"SESSION_SECRET"`
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag != "" {
			viper.BindEnv(tag)
		}

		// Handle nested structs
		if field.Type.Kind() == reflect.Struct && tag == "" {
			nestedTyp := fieldVal.Type()
			for j := 0; j < fieldVal.NumField(); j++ {
				nestedField := nestedTyp.Field(j)
				nestedTag := nestedField.Tag.Get("mapstructure")
				if nestedTag != "" {
					viper.BindEnv(nestedTag)
				}
			}
		}
	}
	slog.Info("Environment variables bound")
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("WEBSERVER_PORT", 8080)
	viper.SetDefault("DATABASE_RETRIES", 10)
	viper.SetDefault("STORAGE_BASE_URL", "http://localhost:8080")
	viper.SetDefault("STORAGE_MEDIA_ROOT", "data/media")

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	slog.Info("Loaded configuration", "port", cfg.WebServerPort, "database_retries", cfg.DatabaseRetries)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

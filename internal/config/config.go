package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

type Config struct {
	Primary  Primary        `koanf:"primary" validate:"required"`
	Server   ServerConfig   `koanf:"server" validate:"required"`
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Model    ModelConfig    `koanf:"model" validate:"required"`
	NewRelic NewRelicConfig `koanf:"newrelic"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port           string `koanf:"port" validate:"required"`
	ReadTimeout    int    `koanf:"read_timeout" validate:"required"`
	WriteTimeout   int    `koanf:"write_timeout" validate:"required"`
	IdleTimeout    int    `koanf:"idle_timeout" validate:"required"`
	PersistTimeout int    `koanf:"persist_timeout" validate:"required"`
}

type DatabaseConfig struct {
	URL             string `koanf:"url" validate:"required"`
	MaxConns        int    `koanf:"max_conns" validate:"required"`
	MinConns        int    `koanf:"min_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

type ModelConfig struct {
	// Path to the serialized model bundle. Loaded once at startup;
	// updating the model means redeploying the process.
	Path string `koanf:"path" validate:"required"`
}

type NewRelicConfig struct {
	LicenseKey string `koanf:"license_key"`
}

// Load reads configuration from CHURND_-prefixed environment variables using
// koanf, after sourcing a local .env file if one exists. Invalid
// configuration is fatal.
func Load() *Config {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	_ = godotenv.Load()

	k := koanf.New(".")
	err := k.Load(env.Provider("CHURND_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CHURND_")), "__", ".")
	}), nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not load env variables")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		logger.Fatal().Err(err).Msg("could not unmarshal config")
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	return cfg
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all proxy service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
	CORSOrigins     []string      `envconfig:"CORS_ALLOWED_ORIGINS"`
	DemoMode        bool          `envconfig:"DEMO_MODE" default:"false"`

	// Upstream APIs. Keys are optional; endpoints that need a missing key
	// answer 500 instead of calling upstream.
	UpstreamTimeout      time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s" validate:"gt=0"`
	OpenWeatherKey       string        `envconfig:"OPENWEATHER_KEY"`
	OpenWeatherBaseURL   string        `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org" validate:"url"`
	OpenSkyBaseURL       string        `envconfig:"OPENSKY_BASE_URL" default:"https://opensky-network.org" validate:"url"`
	AviationStackKey     string        `envconfig:"AVIATIONSTACK_KEY"`
	AviationStackBaseURL string        `envconfig:"AVIATIONSTACK_BASE_URL" default:"https://api.aviationstack.com" validate:"url"`

	// Delay report recording. Both sinks are disabled when unset.
	HistoryDBPath string   `envconfig:"HISTORY_DB_PATH"`
	KafkaBrokers  []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic    string   `envconfig:"KAFKA_TOPIC" default:"flight-delay-assessments"`
}

// KafkaEnabled reports whether delay reports are published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from the environment (and a .env file in the
// working directory, if present), applying defaults where unset.
func Load() (*Config, error) {
	_ = godotenv.Load() // a missing .env is fine

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	cfg.KafkaBrokers = trimAll(cfg.KafkaBrokers)

	if err := validate.Struct(&cfg); err != nil {
		return nil, describeValidation(err)
	}
	if cfg.KafkaEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return &cfg, nil
}

// describeValidation rewrites validator errors in terms of environment variables.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("invalid %s: failed %q", envName(fe.StructField()), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func envName(field string) string {
	f, ok := fieldEnv[field]
	if !ok {
		return field
	}
	return f
}

var fieldEnv = map[string]string{
	"HTTPAddr":             "HTTP_ADDR",
	"LogLevel":             "LOG_LEVEL",
	"LogFormat":            "LOG_FORMAT",
	"ShutdownTimeout":      "SHUTDOWN_TIMEOUT",
	"UpstreamTimeout":      "UPSTREAM_TIMEOUT",
	"OpenWeatherBaseURL":   "OPENWEATHER_BASE_URL",
	"OpenSkyBaseURL":       "OPENSKY_BASE_URL",
	"AviationStackBaseURL": "AVIATIONSTACK_BASE_URL",
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

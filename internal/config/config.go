package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/agro-climate/internal/advisor"
	"github.com/i474232898/agro-climate/internal/climate/providers"
)

// FileEnv names the optional YAML file layered between defaults and env.
const FileEnv = "AGROCLIMATE_CONFIG"

const (
	GeocoderLocationIQ = "locationiq"
	GeocoderGoogle     = "google"
)

type AppConfig struct {
	Port string `koanf:"port" validate:"required,numeric"`

	// Geocoding. Keys are optional at start-up; requests that need a
	// missing key fail with a configuration error.
	GeocoderProvider   string `koanf:"geocoder_provider" validate:"oneof=locationiq google"`
	LocationIQKey      string `koanf:"locationiq_key"`
	// LocationIQURL is the full search endpoint, not the API root.
	LocationIQURL      string `koanf:"locationiq_url" validate:"required,url"`
	GoogleGeocodingKey string `koanf:"google_geocoding_key"`

	NASAPowerURL string `koanf:"nasa_power_url" validate:"required,url"`

	GeminiAPIKey string `koanf:"gemini_api_key"`
	GeminiModel  string `koanf:"gemini_model" validate:"required"`

	// HTTPTimeout bounds every outbound call.
	HTTPTimeout  time.Duration `koanf:"http_timeout" validate:"gt=0"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gte=0"`

	// Provider probe. A zero interval disables it.
	ProbeInterval  time.Duration `koanf:"probe_interval" validate:"gte=0"`
	ProbeLatitude  float64       `koanf:"probe_latitude" validate:"latitude"`
	ProbeLongitude float64       `koanf:"probe_longitude" validate:"longitude"`

	// Probe history retention (0 = unlimited).
	ProbeHistory int           `koanf:"probe_history" validate:"gte=0"`
	ProbeMaxAge  time.Duration `koanf:"probe_max_age" validate:"gte=0"`

	LogLevel  string `koanf:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat string `koanf:"log_format" validate:"oneof=json console"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() AppConfig {
	return AppConfig{
		Port:             "3001",
		GeocoderProvider: GeocoderLocationIQ,
		LocationIQURL:    providers.DefaultLocationIQURL,
		NASAPowerURL:     providers.DefaultPowerURL,
		GeminiModel:      advisor.DefaultModel,
		HTTPTimeout:      15 * time.Second,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     60 * time.Second,
		ProbeInterval:    15 * time.Minute,
		ProbeLatitude:    23.8103,
		ProbeLongitude:   90.4125,
		ProbeHistory:     96, // roughly 24h at 15-minute intervals
		ProbeMaxAge:      24 * time.Hour,
		LogLevel:         "info",
		LogFormat:        "json",
	}
}

// Load reads .env, then layers defaults, the optional YAML file named by
// AGROCLIMATE_CONFIG and the environment, in increasing precedence.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Err(err).Msg("no .env file loaded")
	}

	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	// PORT -> port, PROBE_MAX_AGE -> probe_max_age.
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.GeocoderProvider = strings.ToLower(strings.TrimSpace(cfg.GeocoderProvider))

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

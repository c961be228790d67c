package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config drives the demo server.
type Config struct {
	Addr               string
	DatabaseURL        string
	JWTSecret          string
	TokenTTL           time.Duration
	Environment        string
	LogLevel           string
	EmailFrom          string
	EmailEnabled       bool
	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPassword       string
	SMTPUseTLS         bool
	RunMigrations      bool
	SeedDemoData       bool
	MaxBodyBytes       int64
	RateLimitPerMinute int
	MetricsEnabled     bool
	ScheduleInterval   time.Duration
}

// ClientConfig drives hrmctl and anything else embedding the client stack.
type ClientConfig struct {
	APIURL            string
	StatePath         string
	Environment       string
	LogLevel          string
	StaleTime         time.Duration
	GCTime            time.Duration
	RequestTimeout    time.Duration
	RateLimit         float64
	RateBurst         int
	ValidateOnRestore bool
	StateKey          string
}

var serverDefaults = map[string]any{
	"APP_ADDR":                 ":8080",
	"DATABASE_URL":             "",
	"JWT_SECRET":               "",
	"TOKEN_TTL":                "12h",
	"APP_ENV":                  "development",
	"LOG_LEVEL":                "info",
	"EMAIL_FROM":               "no-reply@example.com",
	"EMAIL_ENABLED":            false,
	"SMTP_HOST":                "",
	"SMTP_PORT":                587,
	"SMTP_USER":                "",
	"SMTP_PASSWORD":            "",
	"SMTP_USE_TLS":             true,
	"RUN_MIGRATIONS":           true,
	"SEED_DEMO_DATA":           true,
	"MAX_BODY_BYTES":           1048576,
	"RATE_LIMIT_PER_MINUTE":    60,
	"METRICS_ENABLED":          true,
	"REPORT_SCHEDULE_INTERVAL": "1m",
}

var clientDefaults = map[string]any{
	"HRM_API_URL":             "http://localhost:8080",
	"HRM_STATE_PATH":          defaultStatePath(),
	"APP_ENV":                 "development",
	"LOG_LEVEL":               "warn",
	"HRM_STALE_TIME":          "30s",
	"HRM_GC_TIME":             "5m",
	"HRM_REQUEST_TIMEOUT":     "30s",
	"HRM_RATE_LIMIT":          0,
	"HRM_RATE_BURST":          5,
	"HRM_VALIDATE_ON_RESTORE": true,
	"HRM_STATE_KEY":           "",
}

// Load reads the server configuration from the environment.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile layers the environment over an optional YAML/JSON/TOML file whose
// keys are the environment variable names in any case.
func LoadFile(path string) (Config, error) {
	v, err := newViper(path, serverDefaults)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Addr:               v.GetString("APP_ADDR"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		TokenTTL:           v.GetDuration("TOKEN_TTL"),
		Environment:        v.GetString("APP_ENV"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		EmailFrom:          v.GetString("EMAIL_FROM"),
		EmailEnabled:       v.GetBool("EMAIL_ENABLED"),
		SMTPHost:           v.GetString("SMTP_HOST"),
		SMTPPort:           v.GetInt("SMTP_PORT"),
		SMTPUser:           v.GetString("SMTP_USER"),
		SMTPPassword:       v.GetString("SMTP_PASSWORD"),
		SMTPUseTLS:         v.GetBool("SMTP_USE_TLS"),
		RunMigrations:      v.GetBool("RUN_MIGRATIONS"),
		SeedDemoData:       v.GetBool("SEED_DEMO_DATA"),
		MaxBodyBytes:       v.GetInt64("MAX_BODY_BYTES"),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		MetricsEnabled:     v.GetBool("METRICS_ENABLED"),
		ScheduleInterval:   v.GetDuration("REPORT_SCHEDULE_INTERVAL"),
	}, nil
}

func LoadClient() (ClientConfig, error) {
	return LoadClientFile("")
}

func LoadClientFile(path string) (ClientConfig, error) {
	v, err := newViper(path, clientDefaults)
	if err != nil {
		return ClientConfig{}, err
	}
	return ClientConfig{
		APIURL:            v.GetString("HRM_API_URL"),
		StatePath:         v.GetString("HRM_STATE_PATH"),
		Environment:       v.GetString("APP_ENV"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		StaleTime:         v.GetDuration("HRM_STALE_TIME"),
		GCTime:            v.GetDuration("HRM_GC_TIME"),
		RequestTimeout:    v.GetDuration("HRM_REQUEST_TIMEOUT"),
		RateLimit:         v.GetFloat64("HRM_RATE_LIMIT"),
		RateBurst:         v.GetInt("HRM_RATE_BURST"),
		ValidateOnRestore: v.GetBool("HRM_VALIDATE_ON_RESTORE"),
		StateKey:          v.GetString("HRM_STATE_KEY"),
	}, nil
}

func newViper(path string, defaults map[string]any) (*viper.Viper, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}
	return v, nil
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".", ".hrmctl", "state.db")
	}
	return filepath.Join(dir, "hrmctl", "state.db")
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("APP_ADDR is required")
	}
	if c.Environment == "production" {
		if len(strings.TrimSpace(c.JWTSecret)) < 32 {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.SeedDemoData {
			return fmt.Errorf("SEED_DEMO_DATA must be disabled in production")
		}
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.ScheduleInterval < 0 {
		return fmt.Errorf("REPORT_SCHEDULE_INTERVAL must not be negative")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}

func (c ClientConfig) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("HRM_API_URL must be an http(s) URL")
	}
	if strings.TrimSpace(c.StatePath) == "" {
		return fmt.Errorf("HRM_STATE_PATH is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("HRM_REQUEST_TIMEOUT must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("HRM_RATE_LIMIT must not be negative")
	}
	return nil
}

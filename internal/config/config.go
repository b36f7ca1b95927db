package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	AppEnv   string `mapstructure:"APP_ENV"`
	AppName  string `mapstructure:"APP_NAME"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Meta Conversions API. PixelID and AccessToken are fallbacks for
	// requests that don't carry their own credential headers.
	PixelID         string        `mapstructure:"META_PIXEL_ID"`
	AccessToken     string        `mapstructure:"META_ACCESS_TOKEN"`
	APIBaseURL      string        `mapstructure:"META_API_BASE_URL"`
	APIVersion      string        `mapstructure:"META_API_VERSION"`
	UpstreamTimeout time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`

	// Validation
	EventMaxAge        time.Duration `mapstructure:"EVENT_MAX_AGE"`
	EventMaxFutureSkew time.Duration `mapstructure:"EVENT_MAX_FUTURE_SKEW"`
	PixelIDPattern     string        `mapstructure:"PIXEL_ID_PATTERN"`

	// HTTP
	TrustedIPHeader  string `mapstructure:"TRUSTED_IP_HEADER"`
	CORSAllowOrigins string `mapstructure:"CORS_ALLOW_ORIGINS"`

	// Metrics
	StatsdAddr         string  `mapstructure:"STATSD_ADDR"`
	MetricSamplingRate float64 `mapstructure:"METRIC_SAMPLING_RATE"`
}

var defaults = map[string]any{
	"PORT":                  "8000",
	"APP_ENV":               "development",
	"APP_NAME":              "capi-event-relay",
	"LOG_LEVEL":             "info",
	"META_PIXEL_ID":         "",
	"META_ACCESS_TOKEN":     "",
	"META_API_BASE_URL":     "https://graph.facebook.com",
	"META_API_VERSION":      "v19.0",
	"UPSTREAM_TIMEOUT":      10 * time.Second,
	"EVENT_MAX_AGE":         7 * 24 * time.Hour,
	"EVENT_MAX_FUTURE_SKEW": 10 * time.Minute,
	"PIXEL_ID_PATTERN":      `^[0-9]{1,20}$`,
	"TRUSTED_IP_HEADER":     "X-Forwarded-For",
	"CORS_ALLOW_ORIGINS":    "*",
	"STATSD_ADDR":           "",
	"METRIC_SAMPLING_RATE":  1.0,
}

// LoadConfig reads an optional .env file and the process environment.
func LoadConfig() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.EventMaxAge <= 0 {
		return fmt.Errorf("EVENT_MAX_AGE must be positive")
	}
	if c.EventMaxFutureSkew < 0 {
		return fmt.Errorf("EVENT_MAX_FUTURE_SKEW must not be negative")
	}
	if _, err := regexp.Compile(c.PixelIDPattern); err != nil {
		return fmt.Errorf("PIXEL_ID_PATTERN is invalid: %w", err)
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("META_API_BASE_URL must be an https URL")
	}
	if c.APIVersion == "" {
		return fmt.Errorf("META_API_VERSION is required")
	}
	if c.MetricSamplingRate <= 0 || c.MetricSamplingRate > 1 {
		c.MetricSamplingRate = 1
	}

	return nil
}

// PixelIDRegexp compiles PixelIDPattern; validate has already checked it.
func (c *Config) PixelIDRegexp() *regexp.Regexp {
	return regexp.MustCompile(c.PixelIDPattern)
}

func (c *Config) GetCORSAllowOrigins() string {
	origins := strings.Split(c.CORSAllowOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return strings.Join(origins, ",")
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

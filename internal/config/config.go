package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPort           = 3000
	DefaultCDABaseURL     = "https://cdn.contentful.com"
	DefaultCMABaseURL     = "https://api.contentful.com"
	DefaultDemoDataObject = "demo-data.json"
	DefaultHTTPTimeout    = 10 * time.Second
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port int

	// Live space credentials. All three are needed, otherwise the bundled
	// demo space is served.
	SpaceID  string
	CDAToken string
	CMAToken string

	CDABaseURL  string
	CMABaseURL  string
	HTTPTimeout time.Duration

	DetailedErrors bool
	ClientDir      string

	DemoDataFile            string
	DemoDataBucket          string
	DemoDataObject          string
	FirebaseCredentialsFile string
}

// NewViper returns a viper instance bound to the environment with defaults set.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("CDA_BASE_URL", DefaultCDABaseURL)
	v.SetDefault("CMA_BASE_URL", DefaultCMABaseURL)
	v.SetDefault("HTTP_TIMEOUT", DefaultHTTPTimeout)
	v.SetDefault("DEMO_DATA_OBJECT", DefaultDemoDataObject)
	v.SetDefault("DETAILED_ERRORS", false)
}

// FromEnv loads the configuration straight from environment variables.
func FromEnv() (*Config, error) {
	return Load(NewViper())
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{
		Port:                    v.GetInt("PORT"),
		SpaceID:                 v.GetString("SPACE_ID"),
		CDAToken:                v.GetString("CDA_TOKEN"),
		CMAToken:                v.GetString("CMA_TOKEN"),
		CDABaseURL:              v.GetString("CDA_BASE_URL"),
		CMABaseURL:              v.GetString("CMA_BASE_URL"),
		HTTPTimeout:             v.GetDuration("HTTP_TIMEOUT"),
		DetailedErrors:          v.GetBool("DETAILED_ERRORS"),
		ClientDir:               v.GetString("CLIENT_DIR"),
		DemoDataFile:            v.GetString("DEMO_DATA_FILE"),
		DemoDataBucket:          v.GetString("DEMO_DATA_BUCKET"),
		DemoDataObject:          v.GetString("DEMO_DATA_OBJECT"),
		FirebaseCredentialsFile: v.GetString("FIREBASE_CREDENTIALS_FILE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d: must be between 1 and 65535", c.Port)
	}
	if err := validateBaseURL("CDA_BASE_URL", c.CDABaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("CMA_BASE_URL", c.CMABaseURL); err != nil {
		return err
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("invalid HTTP_TIMEOUT %s: must be positive", c.HTTPTimeout)
	}
	if c.DemoDataFile != "" && c.DemoDataBucket != "" {
		return fmt.Errorf("DEMO_DATA_FILE and DEMO_DATA_BUCKET are mutually exclusive")
	}
	return nil
}

func validateBaseURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s %q: expected an http(s) URL", name, raw)
	}
	return nil
}

// HasSpaceCredentials reports whether a live space can be used.
func (c *Config) HasSpaceCredentials() bool {
	return c.SpaceID != "" && c.CDAToken != "" && c.CMAToken != ""
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

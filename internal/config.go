package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/solace/internal/insight"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth"`
	Insight  InsightConfig     `yaml:"insight"`
	Prompts  PromptsConfig     `yaml:"prompts"`
	Sessions SessionsConfig    `yaml:"sessions"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Insight.Validate(); err != nil {
		return fmt.Errorf("insight: %w", err)
	}
	return c.Sessions.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// InsightConfig configures the text generation provider.
//
// An empty APIKey is valid: every insight call then returns its fallback text.
type InsightConfig struct {
	APIKey          string           `yaml:"api_key"`
	BaseURL         string           `yaml:"base_url"`
	Model           string           `yaml:"model"`
	MaxContentRunes int              `yaml:"max_content_runes"`
	RequestTimeout  time.Duration    `yaml:"request_timeout"`
	RateLimit       float64          `yaml:"rate_limit"`
	RateBurst       int              `yaml:"rate_burst"`
	Summary         GenerationConfig `yaml:"summary"`
	Recommendation  GenerationConfig `yaml:"recommendation"`
}

// GenerationConfig holds the sampling parameters of one operation.
type GenerationConfig struct {
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
}

// Validate validates the generation parameters.
func (c GenerationConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Temperature, validation.Min(float32(0)), validation.Max(float32(2))),
		validation.Field(&c.MaxOutputTokens, validation.Min(int32(0))),
	)
}

// Validate validates the insight configuration.
func (c *InsightConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, is.URL),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.MaxContentRunes, validation.Min(0)),
		validation.Field(&c.RequestTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
		validation.Field(&c.RateBurst, validation.When(c.RateLimit > 0, validation.Required, validation.Min(1))),
		validation.Field(&c.Summary),
		validation.Field(&c.Recommendation),
	)
}

// ServiceConfig converts c into the insight service configuration.
func (c *InsightConfig) ServiceConfig() insight.Config {
	return insight.Config{
		Model:           c.Model,
		MaxContentRunes: c.MaxContentRunes,
		Timeout:         c.RequestTimeout,
		Summary:         insight.Params{Temperature: c.Summary.Temperature, MaxOutputTokens: c.Summary.MaxOutputTokens},
		Recommendation:  insight.Params{Temperature: c.Recommendation.Temperature, MaxOutputTokens: c.Recommendation.MaxOutputTokens},
	}
}

// PromptsConfig points at an optional prompt catalogue file. An empty Path
// uses the built-in prompts.
type PromptsConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// SessionsConfig controls the lifetime of mood and journal views.
type SessionsConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Validate validates the sessions configuration.
func (c *SessionsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.IdleTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.SweepInterval, validation.When(c.IdleTTL > 0, validation.Required, validation.Min(time.Second))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	def := insight.DefaultConfig()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./solace.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Insight: InsightConfig{
			Model:           def.Model,
			MaxContentRunes: def.MaxContentRunes,
			RequestTimeout:  def.Timeout,
			RateLimit:       2,
			RateBurst:       5,
			Summary:         GenerationConfig{Temperature: def.Summary.Temperature, MaxOutputTokens: def.Summary.MaxOutputTokens},
			Recommendation:  GenerationConfig{Temperature: def.Recommendation.Temperature},
		},
		Sessions: SessionsConfig{
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}

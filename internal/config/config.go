package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// ShiftTemplate describes a recurring volunteer shift expanded by defineShifts
type ShiftTemplate struct {
	Title       string `yaml:"title" validate:"required"`
	RRule       string `yaml:"rrule" validate:"required"`
	StartTime   string `yaml:"startTime" validate:"required,datetime=15:04"`
	EndTime     string `yaml:"endTime" validate:"required,datetime=15:04"`
	Location    string `yaml:"location,omitempty"`
	Role        string `yaml:"role,omitempty"`
	SpotsNeeded int    `yaml:"spotsNeeded" validate:"min=1"`
}

// RateLimitConfig bounds public submissions per client IP
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond" validate:"gte=0"`
	Burst             int     `yaml:"burst" validate:"gte=0"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr         string          `yaml:"addr"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
}

// SMTPConfig holds SMTP relay credentials
type SMTPConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required,min=1,max=65535"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// NotificationsConfig selects how outbound email is delivered
type NotificationsConfig struct {
	Provider    string      `yaml:"provider" validate:"omitempty,oneof=log gmail smtp"`
	FromAddress string      `yaml:"fromAddress,omitempty" validate:"omitempty,email"`
	GmailUserID string      `yaml:"gmailUserID,omitempty" validate:"required_if=Provider gmail"`
	SMTP        *SMTPConfig `yaml:"smtp,omitempty" validate:"required_if=Provider smtp"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL    string              `yaml:"databaseURL" validate:"required"`
	Timezone       string              `yaml:"timezone,omitempty"`
	Server         ServerConfig        `yaml:"server"`
	Notifications  NotificationsConfig `yaml:"notifications"`
	ShiftTemplates []ShiftTemplate     `yaml:"shiftTemplates,omitempty" validate:"dive"`
}

const (
	defaultAddr         = ":8080"
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultTimezone     = "Europe/London"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from members_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads members_config.<env>.yaml, falling back to members_config.yaml
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Timezone == "" {
		cfg.Timezone = defaultTimezone
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Notifications.Provider == "" {
		cfg.Notifications.Provider = "log"
	}
}

// Validate validates the configuration struct, the timezone, and each shift template's
// rrule syntax and times
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
	}

	// Validate rrule syntax and times for each template
	for i, tmpl := range cfg.ShiftTemplates {
		if _, err := rrule.StrToROption(tmpl.RRule); err != nil {
			return fmt.Errorf("invalid rrule in shiftTemplates[%d]: %w", i, err)
		}
		// HH:MM strings compare in time order
		if tmpl.StartTime >= tmpl.EndTime {
			return fmt.Errorf("shiftTemplates[%d]: startTime %s must be before endTime %s", i, tmpl.StartTime, tmpl.EndTime)
		}
	}

	return nil
}

// Location returns the configured timezone, defaulting to UTC if unset
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// findConfigFile prefers members_config.<env>.yaml and falls back to members_config.yaml
func findConfigFile(env string) (string, error) {
	if env != "" {
		if path, err := findFile(fmt.Sprintf("members_config.%s.yaml", env)); err == nil {
			return path, nil
		}
	}
	return findFile("members_config.yaml")
}

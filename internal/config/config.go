// Package config loads admin configuration from config.yaml and ADMIN_*
// environment variables.
package config

import (
	"time"

	"github.com/rpattn/adminkit/internal/domain"
)

// Config is the complete admin configuration.
type Config struct {
	API       APIConfig        `mapstructure:"api"`
	Server    ServerConfig     `mapstructure:"server"`
	Database  DatabaseConfig   `mapstructure:"database"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	Resources []ResourceConfig `mapstructure:"resources"`

	// File is the config file that was read, empty when only defaults and
	// environment were used.
	File string `mapstructure:"-"`
}

// APIConfig describes the backend the providers talk to.
type APIConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	PageSize int           `mapstructure:"page_size"`
}

// ServerConfig configures the reference backend.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	Store          string   `mapstructure:"store"`
	PageSize       int      `mapstructure:"page_size"`
	MaxPageSize    int      `mapstructure:"max_page_size"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// ResourceConfig declares one administered resource.
type ResourceConfig struct {
	Name         string                    `mapstructure:"name"`
	URL          string                    `mapstructure:"url"`
	VerboseName  string                    `mapstructure:"verbose_name"`
	Writable     []string                  `mapstructure:"writable_fields"`
	ReadOnly     []string                  `mapstructure:"read_only_fields"`
	Required     []string                  `mapstructure:"required_fields"`
	ListFields   []domain.Column           `mapstructure:"list_fields"`
	DetailFields []domain.FieldDescription `mapstructure:"detail_fields"`
	ListFilters  []domain.Filter           `mapstructure:"list_filters"`
	HideListView bool                      `mapstructure:"hide_list_view"`
	Wizards      []WizardConfig            `mapstructure:"wizards"`
	Seed         []map[string]any          `mapstructure:"seed"`
}

// WizardConfig declares a wizard of a resource.
type WizardConfig struct {
	Name    string                       `mapstructure:"name"`
	Title   string                       `mapstructure:"title"`
	Initial string                       `mapstructure:"initial"`
	Steps   map[string]StepConfig        `mapstructure:"steps"`
	Machine map[string]map[string]string `mapstructure:"machine"`
}

// StepConfig declares the widgets of one wizard state.
type StepConfig struct {
	ResourceName string                    `mapstructure:"resource_name"`
	Widgets      []domain.FieldDescription `mapstructure:"widgets"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:  "http://localhost:8080/",
			Timeout:  15 * time.Second,
			PageSize: 20,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			Store:          "memory",
			PageSize:       20,
			MaxPageSize:    1000,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "admin",
			DBName:   "adminkit",
			SSLMode:  "disable",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Policy returns the field policy of the resource.
func (r ResourceConfig) Policy() domain.FieldPolicy {
	return domain.FieldPolicy{Writable: r.Writable, ReadOnly: r.ReadOnly}
}

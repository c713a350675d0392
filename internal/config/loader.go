package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ADMIN_API_BASE_URL.
const EnvPrefix = "ADMIN"

// Load reads configuration from path, which is either a config file or a
// directory searched for config.yaml. A missing file is not an error:
// defaults and environment variables apply.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if path == "" {
			path = "."
		}
		v.AddConfigPath(path)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"api.base_url", "api.timeout", "api.page_size",
		"server.addr", "server.store", "server.page_size", "server.max_page_size",
		"database.host", "database.port", "database.user", "database.password", "database.dbname", "database.sslmode",
		"logging.level", "logging.development",
	} {
		if err := v.BindEnv(key); err != nil {
			return cfg, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		cfg.File = v.ConfigFileUsed()
	}

	if v.IsSet("api.base_url") {
		cfg.API.BaseURL = v.GetString("api.base_url")
	}
	if v.IsSet("api.timeout") {
		cfg.API.Timeout = v.GetDuration("api.timeout")
	}
	if v.IsSet("api.page_size") {
		cfg.API.PageSize = v.GetInt("api.page_size")
	}
	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("server.store") {
		cfg.Server.Store = v.GetString("server.store")
	}
	if v.IsSet("server.page_size") {
		cfg.Server.PageSize = v.GetInt("server.page_size")
	}
	if v.IsSet("server.max_page_size") {
		cfg.Server.MaxPageSize = v.GetInt("server.max_page_size")
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("logging.level") {
		cfg.Logging.Level = v.GetString("logging.level")
	}
	if v.IsSet("logging.development") {
		cfg.Logging.Development = v.GetBool("logging.development")
	}

	if err := v.UnmarshalKey("resources", &cfg.Resources); err != nil {
		return cfg, fmt.Errorf("failed to decode resources: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks resource declarations for duplicates and missing names.
func (c Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Resources))
	for i, r := range c.Resources {
		if r.Name == "" {
			return fmt.Errorf("resource #%d has no name", i+1)
		}
		if _, ok := seen[r.Name]; ok {
			return fmt.Errorf("resource %q declared twice", r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	return nil
}

// Resource returns the declaration of the named resource.
func (c Config) Resource(name string) (ResourceConfig, bool) {
	for _, r := range c.Resources {
		if r.Name == name {
			return r, true
		}
	}
	return ResourceConfig{}, false
}

// EndpointURL returns the resource endpoint, defaulting to /<name>/.
func (r ResourceConfig) EndpointURL() string {
	if r.URL != "" {
		return r.URL
	}
	return "/" + r.Name + "/"
}

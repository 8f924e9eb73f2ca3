// Package config provides centralized configuration management for the VBR MCP bridge.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete configuration for the application
type Config struct {
	// VBR REST API configuration
	VBR struct {
		// Fallbacks for auth-vbr arguments. Nothing ships by default.
		Host     string
		Username string
		Password string

		Port               int
		APIVersion         string
		InsecureSkipVerify bool
		// Zero leaves requests bounded only by the caller's context.
		RequestTimeout time.Duration
	}

	Log struct {
		Level  string
		Format string
	}

	Telemetry struct {
		// OTLP/HTTP endpoint for traces. Empty keeps spans in-process.
		Endpoint    string
		ServiceName string
	}

	loadErr error
}

var (
	once   sync.Once
	config *Config
)

// Load initializes and loads the configuration once per process. A broken
// configuration file is reported by Validate rather than here.
func Load() *Config {
	once.Do(func() {
		var err error

		if config, err = Read(viper.New()); err != nil {
			config, _ = Read(withoutFile(viper.New()))
			config.loadErr = err
		}
	})

	return config
}

// Read builds a Config from v. Values come from VBR_* environment variables
// and, when present, a vbr-mcp.yaml file.
func Read(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("VBR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("host", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("port", 9419)
	v.SetDefault("api_version", "1.2-rev0")
	v.SetDefault("insecure_skip_verify", false)
	v.SetDefault("request_timeout", "0s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.service_name", "vbr-mcp")

	if !v.IsSet("no_config_file") {
		v.SetConfigName("vbr-mcp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/vbr-mcp")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := &Config{}

	cfg.VBR.Host = v.GetString("host")
	cfg.VBR.Username = v.GetString("username")
	cfg.VBR.Password = v.GetString("password")
	cfg.VBR.Port = v.GetInt("port")
	cfg.VBR.APIVersion = v.GetString("api_version")
	cfg.VBR.InsecureSkipVerify = v.GetBool("insecure_skip_verify")
	cfg.VBR.RequestTimeout = v.GetDuration("request_timeout")

	cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	cfg.Log.Format = strings.ToLower(v.GetString("log.format"))

	cfg.Telemetry.Endpoint = v.GetString("otel.endpoint")
	cfg.Telemetry.ServiceName = v.GetString("otel.service_name")

	return cfg, nil
}

func withoutFile(v *viper.Viper) *viper.Viper {
	v.Set("no_config_file", true)
	return v
}

// Validate checks the configuration for values that will not work or that
// weaken security.
func (c *Config) Validate() error {
	// List of validation errors
	var problems []string

	if c.loadErr != nil {
		problems = append(problems, c.loadErr.Error())
	}

	if c.VBR.Port < 1 || c.VBR.Port > 65535 {
		problems = append(problems, fmt.Sprintf("port %d is out of range", c.VBR.Port))
	}

	if c.VBR.APIVersion == "" {
		problems = append(problems, "API version is empty")
	}

	if c.VBR.RequestTimeout < 0 {
		problems = append(problems, "request timeout must not be negative")
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		problems = append(problems, fmt.Sprintf("unknown log format %q", c.Log.Format))
	}

	if c.VBR.InsecureSkipVerify {
		problems = append(problems, "TLS certificate verification is disabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %v", problems)
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	LogLevel    string            `yaml:"log_level"`
	Development bool              `yaml:"development"`
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	LLM         LLMConfig         `yaml:"llm"`
	Auth        AuthConfig        `yaml:"auth"`
	Session     SessionConfig     `yaml:"session"`
	Interpreter InterpreterConfig `yaml:"interpreter"`
}

// ServerConfig holds listener configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	MetricsPort     int           `yaml:"metrics_port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds the catalog and order archive connection settings
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // sqlite3 or postgres
	DSN      string `yaml:"dsn"`
	MenuFile string `yaml:"menu_file"`
	LogMode  bool   `yaml:"log_mode"`
}

// LLMConfig selects the response generator backend
type LLMConfig struct {
	Provider    string        `yaml:"provider"` // openai, github, azure or none
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Endpoint    string        `yaml:"endpoint"`
	Deployment  string        `yaml:"deployment"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// AuthConfig enables bearer-token auth when JWTSecret is set
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// SessionConfig controls idle session expiry
type SessionConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// InterpreterConfig points at an optional rule table file
type InterpreterConfig struct {
	RulesFile  string `yaml:"rules_file"`
	WatchRules bool   `yaml:"watch_rules"`
}

// ValidationError describes an invalid configuration value
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:            8080,
			MetricsPort:     9090,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "cantina.db",
		},
		LLM: LLMConfig{
			Provider:    "none",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   150,
			Timeout:     15 * time.Second,
		},
		Session: SessionConfig{
			IdleTimeout:   30 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}

// Load reads configuration from a YAML file on top of the defaults.
// An empty path yields the defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills secrets from the environment
func (c *Config) applyEnv() {
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "openai":
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "github":
			c.LLM.APIKey = os.Getenv("GITHUB_TOKEN")
		case "azure":
			c.LLM.APIKey = os.Getenv("AZURE_OPENAI_API_KEY")
		}
	}
	if c.LLM.Provider == "azure" {
		if c.LLM.Endpoint == "" {
			c.LLM.Endpoint = os.Getenv("AZURE_OPENAI_ENDPOINT")
		}
		if c.LLM.Deployment == "" {
			c.LLM.Deployment = os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME")
		}
	}
	if secret := os.Getenv("CANTINA_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if dsn := os.Getenv("CANTINA_DATABASE_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
}

// Validate checks the configuration for values the server cannot start with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return ValidationError{Field: "server.port", Message: "must be between 1 and 65535"}
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		return ValidationError{Field: "server.metrics_port", Message: "must be between 0 and 65535"}
	}

	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return ValidationError{Field: "database.driver", Message: fmt.Sprintf("unsupported driver %q", c.Database.Driver)}
	}
	if c.Database.DSN == "" {
		return ValidationError{Field: "database.dsn", Message: "is required"}
	}

	switch c.LLM.Provider {
	case "none", "":
	case "openai", "github":
		if c.LLM.APIKey == "" {
			return ValidationError{Field: "llm.api_key", Message: "is required for provider " + c.LLM.Provider}
		}
	case "azure":
		if c.LLM.APIKey == "" || c.LLM.Endpoint == "" || c.LLM.Deployment == "" {
			return ValidationError{Field: "llm", Message: "azure requires api_key, endpoint and deployment"}
		}
	default:
		return ValidationError{Field: "llm.provider", Message: fmt.Sprintf("unsupported provider %q", c.LLM.Provider)}
	}

	if c.Session.IdleTimeout < 0 {
		return ValidationError{Field: "session.idle_timeout", Message: "must not be negative"}
	}
	return nil
}

package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// AppConfig is the resolved configuration of a heimdall process.
type AppConfig struct {
	Verbose    bool             `mapstructure:"verbose"`
	Server     ServerConfig     `mapstructure:"server"`
	Rules      RulesConfig      `mapstructure:"rules"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Prompts    PromptsConfig    `mapstructure:"prompts"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Log        LogConfig        `mapstructure:"log"`
	Crash      CrashConfig      `mapstructure:"crash"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port" validate:"min=1,max=65535"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// RulesConfig locates the rules document.
type RulesConfig struct {
	File string `mapstructure:"file" validate:"required"`
	Lock bool   `mapstructure:"lock"`
}

// LLMConfig selects the classification backend.
type LLMConfig struct {
	Provider string        `mapstructure:"provider" validate:"required,oneof=ollama openai anthropic gemini"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"baseURL" validate:"omitempty,url"`
	APIKey   string        `mapstructure:"apiKey"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"min=0"`
}

// PromptsConfig points at optional template overrides.
type PromptsConfig struct {
	TemplatesDir string `mapstructure:"templatesDir"`
}

// ClassifierConfig tunes reply parsing.
type ClassifierConfig struct {
	LenientJSON bool `mapstructure:"lenientJSON"`
}

// LogConfig configures slog.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// CrashConfig configures crash logging.
type CrashConfig struct {
	Dir string `mapstructure:"dir"`
}

// validate is a single instance of Validate, it caches struct info
var validate = validator.New()

// Load unmarshals the global viper state into an AppConfig and validates it.
func Load() (*AppConfig, error) {
	var cfg AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

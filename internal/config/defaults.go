// Package config holds heimdall's configuration keys, defaults and loaders.
// All default values are defined here so there is a single source of truth.
package config

import (
	"strings"

	"github.com/heimdall-ai/heimdall/internal/llm"
	"github.com/heimdall-ai/heimdall/store"
	"github.com/spf13/viper"
)

const (
	// ConfigName is the base name of the config file (.heimdall.yaml).
	ConfigName = ".heimdall"

	// EnvPrefix prefixes environment overrides, e.g. HEIMDALL_SERVER_PORT.
	EnvPrefix = "HEIMDALL"

	// DefaultPort is the HTTP port the API listens on.
	DefaultPort = 8000

	// DefaultCrashDir is where crash logs are kept.
	DefaultCrashDir = ".heimdall"
)

// SetDefaults registers every key with its default value. Keys must be known
// to viper for environment overrides to reach Unmarshal.
func SetDefaults() {
	viper.SetDefault("verbose", false)

	viper.SetDefault("server.host", "")
	viper.SetDefault("server.port", DefaultPort)
	viper.SetDefault("server.allowedOrigins", []string{})

	viper.SetDefault("rules.file", store.DefaultRulesFile)
	viper.SetDefault("rules.lock", true)

	viper.SetDefault("llm.provider", llm.DefaultProvider)
	viper.SetDefault("llm.model", "")
	viper.SetDefault("llm.baseURL", "")
	viper.SetDefault("llm.apiKey", "")
	viper.SetDefault("llm.timeout", "0s")

	viper.SetDefault("prompts.templatesDir", "")
	viper.SetDefault("classifier.lenientJSON", false)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("crash.dir", DefaultCrashDir)
}

// BindEnv routes HEIMDALL_* environment variables to config keys.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

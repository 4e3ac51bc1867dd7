package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/heimdall-ai/heimdall/internal/llm"
	"github.com/spf13/viper"
)

// LoadLLMConfig builds the backend configuration from cfg.
// Precedence: explicit config > provider environment variables > defaults.
func LoadLLMConfig(cfg LLMConfig) (llm.Config, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = llm.DefaultProvider
	}
	llmProvider, err := llm.ValidateProvider(provider)
	if err != nil {
		return llm.Config{}, fmt.Errorf("invalid provider: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = llm.DefaultModelForProvider(string(llmProvider))
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = ResolveAPIKey(llmProvider)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" && llmProvider == llm.ProviderOllama {
		baseURL = strings.TrimSpace(os.Getenv("OLLAMA_HOST"))
		if baseURL != "" && !strings.Contains(baseURL, "://") {
			baseURL = "http://" + baseURL
		}
	}
	if baseURL == "" && llmProvider == llm.ProviderOllama {
		baseURL = llm.DefaultOllamaURL
	}

	return llm.Config{
		Provider: llmProvider,
		Model:    model,
		APIKey:   apiKey,
		BaseURL:  baseURL,
		Timeout:  cfg.Timeout,
	}, nil
}

// ResolveAPIKey returns the API key for provider from the per-provider config
// key llm.apiKeys.<provider>, then from the provider's usual env var.
func ResolveAPIKey(provider llm.Provider) string {
	path := fmt.Sprintf("llm.apiKeys.%s", provider)
	if viper.IsSet(path) {
		if key := strings.TrimSpace(viper.GetString(path)); key != "" {
			return key
		}
	}
	return providerEnvKey(provider)
}

func providerEnvKey(provider llm.Provider) string {
	switch provider {
	case llm.ProviderOpenAI:
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	case llm.ProviderAnthropic:
		return strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	case llm.ProviderGemini:
		key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		if key == "" {
			key = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
		}
		return key
	default:
		return ""
	}
}

package prompts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// PromptKey is a type for identifying specific prompts.
type PromptKey string

const (
	// KeyClassifyEmail is the key for the email intent classification prompt.
	KeyClassifyEmail PromptKey = "ClassifyEmail"
)

// promptConfig defines the default content and filename for a prompt.
type promptConfig struct {
	defaultContent string
	filename       string
}

// promptRegistry maps a PromptKey to its configuration.
var promptRegistry = map[PromptKey]promptConfig{
	KeyClassifyEmail: {
		defaultContent: ClassifyEmailPrompt,
		filename:       "classify_email_prompt.txt",
	},
}

// GetPrompt searches for a user-provided prompt file in templatesDir. If found,
// it returns the content of that file. Otherwise, it returns the built-in prompt.
func GetPrompt(key PromptKey, templatesDir string) (string, error) {
	config, ok := promptRegistry[key]
	if !ok {
		return "", fmt.Errorf("unrecognized prompt key: %s", key)
	}

	if strings.TrimSpace(templatesDir) == "" {
		return config.defaultContent, nil
	}

	customPromptPath := filepath.Join(templatesDir, config.filename)

	content, err := os.ReadFile(customPromptPath)
	if err == nil {
		slog.Debug("using custom prompt", "key", key, "path", customPromptPath)
		return string(content), nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("read custom prompt file at %s: %w", customPromptPath, err)
	}

	return config.defaultContent, nil
}

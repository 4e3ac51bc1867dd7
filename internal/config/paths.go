package config

import (
	"os"
	"path/filepath"
	"strings"
)

// UserHomeDir is a variable to allow overriding in tests.
var UserHomeDir = os.UserHomeDir

// ExpandPath resolves a leading ~ against the user's home directory and
// cleans the result. Relative paths stay relative to the working directory.
func ExpandPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return filepath.Clean(p)
}

// RulesFilePath returns the rules document location.
func (c *AppConfig) RulesFilePath() string {
	return ExpandPath(c.Rules.File)
}

// CrashDir returns the directory crash logs are written under.
func (c *AppConfig) CrashDir() string {
	if c.Crash.Dir == "" {
		return DefaultCrashDir
	}
	return ExpandPath(c.Crash.Dir)
}

// TemplatesDir returns the prompt override directory, or "" when unset.
func (c *AppConfig) TemplatesDir() string {
	return ExpandPath(c.Prompts.TemplatesDir)
}

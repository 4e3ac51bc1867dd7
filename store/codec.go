package store

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/heimdall-ai/heimdall/models"
	yaml "gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s. Supported formats are json, yaml", s)
	}
}

// Export writes db to w in the given format.
func Export(db models.RuleDatabase, format string, w io.Writer) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}
	switch format {
	case FormatYAML:
		if db.Categories == nil {
			db.Categories = []models.Category{}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(db); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		if err := enc.Encode(db); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		return nil
	}
}

// Import reads a document in the given format from r. Every category is validated.
func Import(format string, r io.Reader) (models.RuleDatabase, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return models.RuleDatabase{}, err
	}

	var db models.RuleDatabase
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&db); err != nil && err != io.EOF {
			return models.RuleDatabase{}, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&db); err != nil && err != io.EOF {
			return models.RuleDatabase{}, fmt.Errorf("decode JSON: %w", err)
		}
	}

	seen := make(map[string]bool, len(db.Categories))
	for i, c := range db.Categories {
		if err := models.ValidateStruct(c); err != nil {
			return models.RuleDatabase{}, fmt.Errorf("category %d (%q): %w", i, c.RequestType, err)
		}
		if seen[c.RequestType] {
			return models.RuleDatabase{}, fmt.Errorf("duplicate category %q", c.RequestType)
		}
		seen[c.RequestType] = true
	}
	return db, nil
}

package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/heimdall-ai/heimdall/internal/classify"
	"github.com/heimdall-ai/heimdall/models"
)

// FormatError returns a Markdown error block.
func FormatError(message string) string {
	return fmt.Sprintf("## Error\n\n**Details**: %s", message)
}

// FormatValidationError returns a Markdown error for validation failures.
func FormatValidationError(field, message string) string {
	return fmt.Sprintf("## Validation Error\n\n**Field**: `%s`\n**Details**: %s", field, message)
}

// FormatErr renders err, listing every failing field of a validation error.
func FormatErr(err error) string {
	var ve *models.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		parts := make([]string, len(ve.Fields))
		for i, f := range ve.Fields {
			parts[i] = FormatValidationError(f.Field, f.Message)
		}
		return strings.Join(parts, "\n\n")
	}
	return FormatError(err.Error())
}

// FormatRules renders the rule set as a Markdown list.
func FormatRules(db models.RuleDatabase) string {
	if len(db.Categories) == 0 {
		return "No categories defined."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Rules (%d categories)\n", len(db.Categories))
	for _, c := range db.Categories {
		fmt.Fprintf(&sb, "\n### %s\n", c.RequestType)
		if len(c.SubRequestTypes) == 0 {
			sb.WriteString("_no sub-categories_\n")
		}
		for _, sub := range c.SubRequestTypes {
			fmt.Fprintf(&sb, "- **%s**: %s\n", sub.Name, strings.Join(sub.Keywords, ", "))
		}
	}
	return sb.String()
}

// FormatOutcome renders the API answer body for a classification as JSON.
func FormatOutcome(o classify.Outcome) (string, error) {
	b, err := json.MarshalIndent(o.Response(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode classification: %w", err)
	}
	return string(b), nil
}

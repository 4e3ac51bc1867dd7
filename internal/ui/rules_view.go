package ui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/heimdall-ai/heimdall/models"
)

// RulesTable lays out one row per sub-category. A category without
// sub-categories still gets a row so it is visible.
func RulesTable(db models.RuleDatabase) *Table {
	t := &Table{Headers: []string{"CATEGORY", "SUB-CATEGORY", "KEYWORDS"}, MaxWidth: 48}
	for _, c := range db.Categories {
		if len(c.SubRequestTypes) == 0 {
			t.Rows = append(t.Rows, []string{c.RequestType, "-", "-"})
			continue
		}
		for i, sub := range c.SubRequestTypes {
			name := c.RequestType
			if i > 0 {
				name = ""
			}
			t.Rows = append(t.Rows, []string{name, sub.Name, strings.Join(sub.Keywords, ", ")})
		}
	}
	return t
}

// RenderRules renders the rule set with a one-line summary.
func RenderRules(db models.RuleDatabase, source string) string {
	if len(db.Categories) == 0 {
		return StyleWarning.Render("No categories defined") + StyleSubtle.Render(" ("+source+")") + "\n"
	}
	subs := 0
	for _, c := range db.Categories {
		subs += len(c.SubRequestTypes)
	}
	summary := StyleSubtle.Render(fmt.Sprintf("%d categories, %d sub-categories in %s", len(db.Categories), subs, source))
	return RulesTable(db).Render() + "\n" + summary + "\n"
}

// RenderVerdict renders a classification answer body in a box.
func RenderVerdict(result models.ClassificationResult) string {
	lines := []string{
		StyleTitle.Render("Request type:     ") + rawText(result.RequestType),
		StyleTitle.Render("Sub-request type: ") + rawText(result.SubRequestType),
		StyleTitle.Render("Confidence:       ") + rawText(result.ConfidenceScore),
	}
	return StyleVerdictBox.Render(strings.Join(lines, "\n"))
}

// RenderNoIntent renders the no-intent answer.
func RenderNoIntent(resp models.NoIntentResponse) string {
	return StyleNoIntentBox.Render(StyleTitle.Render(resp.Classification) + "\n" + StyleSubtle.Render(resp.Reason))
}

// rawText shows JSON strings without quotes and anything else verbatim.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

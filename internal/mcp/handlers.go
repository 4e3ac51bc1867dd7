// Package mcp implements heimdall's Model Context Protocol tools
// independently of the transport that serves them.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/heimdall-ai/heimdall/internal/classify"
	"github.com/heimdall-ai/heimdall/models"
)

// RuleService is the subset of rules administration the tools use.
type RuleService interface {
	List(ctx context.Context) (models.RuleDatabase, error)
	Add(ctx context.Context, c models.Category) error
	Delete(ctx context.Context, name string) error
}

// Analyzer classifies one email.
type Analyzer interface {
	Analyze(ctx context.Context, req models.ClassificationRequest) (classify.Outcome, error)
}

// Handlers binds the tools to their services.
type Handlers struct {
	Rules    RuleService
	Analyzer Analyzer
}

func failure(err error) (*ToolResult, error) {
	return &ToolResult{Text: FormatErr(err), IsError: true}, nil
}

// AnalyzeEmail classifies an email against the current rules.
func (h *Handlers) AnalyzeEmail(ctx context.Context, p AnalyzeEmailParams) (*ToolResult, error) {
	if strings.TrimSpace(p.Subject) == "" && strings.TrimSpace(p.EmailContent) == "" {
		return &ToolResult{Text: FormatValidationError("email_content", "subject or email_content is required"), IsError: true}, nil
	}
	out, err := h.Analyzer.Analyze(ctx, models.ClassificationRequest{Subject: p.Subject, EmailContent: p.EmailContent})
	if err != nil {
		return failure(err)
	}
	text, err := FormatOutcome(out)
	if err != nil {
		return nil, err
	}
	return &ToolResult{Text: text}, nil
}

// ListRules returns the rule set as Markdown or as the raw JSON document.
func (h *Handlers) ListRules(ctx context.Context, p ListRulesParams) (*ToolResult, error) {
	db, err := h.Rules.List(ctx)
	if err != nil {
		return failure(err)
	}
	switch strings.ToLower(p.Format) {
	case "", "markdown":
		return &ToolResult{Text: FormatRules(db)}, nil
	case "json":
		b, err := json.MarshalIndent(db, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("encode rules: %w", err)
		}
		return &ToolResult{Text: string(b)}, nil
	default:
		return &ToolResult{Text: FormatValidationError("format", "must be markdown or json"), IsError: true}, nil
	}
}

// AddRule creates a category.
func (h *Handlers) AddRule(ctx context.Context, p AddRuleParams) (*ToolResult, error) {
	subs := p.SubRequestTypes
	if subs == nil {
		subs = []models.SubCategory{}
	}
	if err := h.Rules.Add(ctx, models.Category{RequestType: p.RequestType, SubRequestTypes: subs}); err != nil {
		return failure(err)
	}
	return &ToolResult{Text: "Rule added successfully"}, nil
}

// DeleteRule removes a category.
func (h *Handlers) DeleteRule(ctx context.Context, p DeleteRuleParams) (*ToolResult, error) {
	if strings.TrimSpace(p.RequestType) == "" {
		return &ToolResult{Text: FormatValidationError("request_type", "This field is required."), IsError: true}, nil
	}
	if err := h.Rules.Delete(ctx, p.RequestType); err != nil {
		return failure(err)
	}
	return &ToolResult{Text: fmt.Sprintf("Rule for '%s' deleted successfully", p.RequestType)}, nil
}

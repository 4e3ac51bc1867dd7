package mcp

import "github.com/heimdall-ai/heimdall/models"

// AnalyzeEmailParams are the arguments of the analyze_email tool.
type AnalyzeEmailParams struct {
	Subject      string `json:"subject"`
	EmailContent string `json:"email_content"`
}

// ListRulesParams are the arguments of the list_rules tool.
type ListRulesParams struct {
	// Format is "markdown" (default) or "json".
	Format string `json:"format,omitempty"`
}

// AddRuleParams are the arguments of the add_rule tool.
type AddRuleParams struct {
	RequestType     string               `json:"request_type"`
	SubRequestTypes []models.SubCategory `json:"sub_request_types"`
}

// DeleteRuleParams are the arguments of the delete_rule tool.
type DeleteRuleParams struct {
	RequestType string `json:"request_type"`
}

// ToolResult is the transport-neutral outcome of a tool call. Errors the
// caller can act on are reported here with IsError rather than returned.
type ToolResult struct {
	Text    string
	IsError bool
}

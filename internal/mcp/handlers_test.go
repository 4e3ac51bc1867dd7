package mcp

import (
	"context"
	"testing"

	"github.com/heimdall-ai/heimdall/internal/classify"
	"github.com/heimdall-ai/heimdall/internal/llm"
	"github.com/heimdall-ai/heimdall/internal/llm/llmtest"
	"github.com/heimdall-ai/heimdall/internal/rules"
	"github.com/heimdall-ai/heimdall/models"
	"github.com/heimdall-ai/heimdall/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlers(t *testing.T, reply string) *Handlers {
	t.Helper()
	st := store.NewFileRuleStore(afero.NewMemMapFs(), "/rules.json")
	t.Cleanup(func() { _ = st.Close() })
	return &Handlers{
		Rules:    rules.NewService(st),
		Analyzer: classify.NewService(st, llm.NewClassifier(llmtest.Reply(reply))),
	}
}

var refund = []models.SubCategory{{Name: "Refund", Keywords: []string{"refund"}}}

func TestAddListDelete(t *testing.T) {
	ctx := context.Background()
	h := newHandlers(t, "")

	res, err := h.AddRule(ctx, AddRuleParams{RequestType: "Billing", SubRequestTypes: refund})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "Rule added successfully", res.Text)

	res, err = h.ListRules(ctx, ListRulesParams{})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "### Billing")
	assert.Contains(t, res.Text, "- **Refund**: refund")

	res, err = h.ListRules(ctx, ListRulesParams{Format: "json"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"categories":[{"request_type":"Billing","sub_request_types":[{"name":"Refund","keywords":["refund"]}]}]}`, res.Text)

	res, err = h.DeleteRule(ctx, DeleteRuleParams{RequestType: "Billing"})
	require.NoError(t, err)
	assert.Equal(t, "Rule for 'Billing' deleted successfully", res.Text)

	res, err = h.ListRules(ctx, ListRulesParams{})
	require.NoError(t, err)
	assert.Equal(t, "No categories defined.", res.Text)
}

func TestAddRule_Errors(t *testing.T) {
	ctx := context.Background()
	h := newHandlers(t, "")
	_, err := h.AddRule(ctx, AddRuleParams{RequestType: "Billing", SubRequestTypes: refund})
	require.NoError(t, err)

	res, err := h.AddRule(ctx, AddRuleParams{RequestType: "Billing", SubRequestTypes: refund})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "Category already exists")

	res, err = h.AddRule(ctx, AddRuleParams{
		RequestType:     "Shipping",
		SubRequestTypes: []models.SubCategory{{Name: "Delay", Keywords: []string{" "}}},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "Each keyword must be a non-empty string.")
}

func TestDeleteRule_Errors(t *testing.T) {
	h := newHandlers(t, "")

	res, err := h.DeleteRule(context.Background(), DeleteRuleParams{})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.DeleteRule(context.Background(), DeleteRuleParams{RequestType: "Nope"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "Category not found")
}

func TestAnalyzeEmail(t *testing.T) {
	ctx := context.Background()
	h := newHandlers(t, `{"request_type":"Billing","sub_request_type":"Refund","confidence_score":0.8}`)
	_, err := h.AddRule(ctx, AddRuleParams{RequestType: "Billing", SubRequestTypes: refund})
	require.NoError(t, err)

	res, err := h.AnalyzeEmail(ctx, AnalyzeEmailParams{Subject: "Refund", EmailContent: "Please refund me"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"classification":{"request_type":"Billing","sub_request_type":"Refund","confidence_score":0.8}}`, res.Text)

	res, err = h.AnalyzeEmail(ctx, AnalyzeEmailParams{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestAnalyzeEmail_NoRules(t *testing.T) {
	h := newHandlers(t, `{}`)
	res, err := h.AnalyzeEmail(context.Background(), AnalyzeEmailParams{Subject: "s", EmailContent: "c"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, classify.NoRulesMessage)
}

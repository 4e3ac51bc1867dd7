package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/heimdall-ai/heimdall/internal/apperr"
	"github.com/heimdall-ai/heimdall/internal/config"
	mcptools "github.com/heimdall-ai/heimdall/internal/mcp"
	"github.com/heimdall-ai/heimdall/models"
	"github.com/heimdall-ai/heimdall/store"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command against an in-memory rules file.
func execute(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	viper.Set("rules.file", "/data/rules.json")
	ruleFs = fs
	t.Cleanup(func() { ruleFs = afero.NewOsFs() })

	b := bytes.NewBufferString("")
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	rootCmd.SetArgs(args)
	_, err := rootCmd.ExecuteC()
	return b.String(), err
}

func TestRootCmd(t *testing.T) {
	out, err := execute(t, afero.NewMemMapFs(), "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Heimdall classifies the intent of incoming emails")
	assert.Contains(t, out, "rules")
	assert.Contains(t, out, "serve")
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "1.0.0", GetVersion())
}

func TestRulesAddThenList(t *testing.T) {
	fs := afero.NewMemMapFs()

	out, err := execute(t, fs, "rules", "add", "--category", "Loan Request",
		"--sub", "Payment:loan, payment,due date", "--sub", "Closure:close")
	require.NoError(t, err)
	assert.Contains(t, out, "Rule added successfully")

	s := store.NewFileRuleStore(fs, "/data/rules.json")
	db, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, db.Categories, 1)
	assert.Equal(t, models.Category{
		RequestType: "Loan Request",
		SubRequestTypes: []models.SubCategory{
			{Name: "Payment", Keywords: []string{"loan", "payment", "due date"}},
			{Name: "Closure", Keywords: []string{"close"}},
		},
	}, db.Categories[0])

	out, err = execute(t, fs, "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Loan Request")
	assert.Contains(t, out, "1 categories, 2 sub-categories")
}

func TestRulesDelete_NotFound(t *testing.T) {
	_, err := execute(t, afero.NewMemMapFs(), "rules", "delete", "Nope")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "Error: Category not found", userMessage(err))
}

func TestPrompt_NoRules(t *testing.T) {
	_, err := execute(t, afero.NewMemMapFs(), "prompt", "-s", "hi", "--content", "body")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNoRules, apperr.KindOf(err))
}

func TestParseSubFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    models.SubCategory
		wantErr bool
	}{
		{in: "Reset:password, reset", want: models.SubCategory{Name: "Reset", Keywords: []string{"password", "reset"}}},
		{in: " Unlock :locked out", want: models.SubCategory{Name: "Unlock", Keywords: []string{"locked out"}}},
		{in: "Empty:", want: models.SubCategory{Name: "Empty", Keywords: []string{}}},
		{in: "Blank:a,,b", want: models.SubCategory{Name: "Blank", Keywords: []string{"a", "", "b"}}},
		{in: "no-colon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSubFlag(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Error: Category already exists",
		userMessage(apperr.New(apperr.KindConflict, "Category already exists")))
	assert.Equal(t, "Error: boom", userMessage(errors.New("boom")))

	ve := &models.ValidationError{Fields: []models.FieldError{{Field: "sub_request_types[0].keywords", Message: "Keywords cannot be empty."}}}
	assert.Equal(t, "Error: invalid rule:\n  sub_request_types[0].keywords: Keywords cannot be empty.", userMessage(ve))
}

func TestFormatFromExt(t *testing.T) {
	assert.Equal(t, store.FormatYAML, formatFromExt("rules.yaml"))
	assert.Equal(t, store.FormatYAML, formatFromExt("rules.yml"))
	assert.Equal(t, store.FormatJSON, formatFromExt("rules.json"))
	assert.Equal(t, store.FormatJSON, formatFromExt("-"))
}

func TestToolResponse(t *testing.T) {
	res, err := toolResponse(&mcptools.ToolResult{Text: "ok"}, nil)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "ok", res.Content[0].(*mcpsdk.TextContent).Text)

	res, err = toolResponse(nil, errors.New("disk gone"))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].(*mcpsdk.TextContent).Text, "disk gone")
}

func TestLoadConfig_ReportsMissingConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("config", "/nonexistent/heimdall.yaml")

	InitConfig()
	_, err := loadConfig(rulesListCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestNewClassifier_DefaultProvider(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	c, err := newClassifier(context.Background(), &config.AppConfig{LLM: config.LLMConfig{Provider: "ollama"}})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

package prompts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heimdall-ai/heimdall/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules() models.RuleDatabase {
	return models.RuleDatabase{Categories: []models.Category{
		{
			RequestType: "Password management",
			SubRequestTypes: []models.SubCategory{
				{Name: "Reset", Keywords: []string{"password", "reset"}},
				{Name: "Unlock", Keywords: []string{"locked out"}},
			},
		},
		{
			RequestType: "Loan Request",
			SubRequestTypes: []models.SubCategory{
				{Name: "Payment", Keywords: []string{"loan", "payment", "due date"}},
			},
		},
		{
			RequestType:     "Empty",
			SubRequestTypes: []models.SubCategory{},
		},
	}}
}

func TestBuild_ExactLayout(t *testing.T) {
	got, err := Build(context.Background(), "Locked out", "I cannot log in.", testRules())
	require.NoError(t, err)

	want := "Classify the intent of the following email into predefined categories:\n" +
		" - 'Password management': Reset (keywords: password, reset), Unlock (keywords: locked out).\n" +
		" - 'Loan Request': Payment (keywords: loan, payment, due date).\n" +
		" - 'Empty':.\n" +
		"If the email matches none of the above categories, classify it as 'No intent identified'.\n" +
		"Provide a confidence score for the classification. Make sure the response is always in the following JSON format, which should adhere to the rules mentioned above: " +
		`{"request_type": "value", "sub_request_type": "value", "confidence_score": "value"}` + "\n\n" +
		"Subject: Locked out\n\nContent: I cannot log in."
	assert.Equal(t, want, got)
}

func TestBuild_EveryLabelOnceInDocumentOrder(t *testing.T) {
	db := models.RuleDatabase{}
	labels := []string{}
	for _, cat := range []string{"Zulu", "Alpha", "Mike"} {
		c := models.Category{RequestType: "cat-" + cat}
		labels = append(labels, c.RequestType)
		for _, sub := range []string{"one", "two"} {
			name := "sub-" + cat + "-" + sub
			c.SubRequestTypes = append(c.SubRequestTypes, models.SubCategory{Name: name, Keywords: []string{"kw"}})
			labels = append(labels, name)
		}
		db.Categories = append(db.Categories, c)
	}

	got, err := Build(context.Background(), "hello", "world", db)
	require.NoError(t, err)

	last := -1
	for _, label := range labels {
		assert.Equal(t, 1, strings.Count(got, label), "label %q should appear once", label)
		idx := strings.Index(got, label)
		assert.Greater(t, idx, last, "label %q out of order", label)
		last = idx
	}
}

func TestBuild_EmptyRules(t *testing.T) {
	got, err := Build(context.Background(), "s", "c", models.RuleDatabase{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "Classify the intent of the following email into predefined categories:\nIf the email"))
}

func TestBuild_TemplateSyntaxInEmailIsLiteral(t *testing.T) {
	got, err := Build(context.Background(), "{{.no_intent}}", "{{ oops", testRules())
	require.NoError(t, err)
	assert.Contains(t, got, "Subject: {{.no_intent}}\n\nContent: {{ oops")
}

func TestNewBuilder_CustomTemplate(t *testing.T) {
	dir := t.TempDir()
	custom := "Rules:\n{{.categories}}Fallback={{.no_intent}}\n{{.email}}"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classify_email_prompt.txt"), []byte(custom), 0o644))

	b, err := NewBuilder(dir)
	require.NoError(t, err)

	got, err := b.Build(context.Background(), "s", "c", testRules())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "Rules:\n - 'Password management'"))
	assert.Contains(t, got, "Fallback=No intent identified\nSubject: s")
}

func TestGetPrompt(t *testing.T) {
	p, err := GetPrompt(KeyClassifyEmail, "")
	require.NoError(t, err)
	assert.Equal(t, ClassifyEmailPrompt, p)

	p, err = GetPrompt(KeyClassifyEmail, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ClassifyEmailPrompt, p, "missing override falls back to the default")

	_, err = GetPrompt("Unknown", "")
	assert.Error(t, err)
}

func TestRenderCategories_TrimsTrailingSeparator(t *testing.T) {
	out := RenderCategories(models.RuleDatabase{Categories: []models.Category{{
		RequestType:     "A",
		SubRequestTypes: []models.SubCategory{{Name: "x", Keywords: []string{"k"}}},
	}}})
	assert.Equal(t, " - 'A': x (keywords: k).\n", out)
}

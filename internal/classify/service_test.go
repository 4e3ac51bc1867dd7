package classify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/heimdall-ai/heimdall/internal/apperr"
	"github.com/heimdall-ai/heimdall/internal/classify"
	"github.com/heimdall-ai/heimdall/internal/llm"
	"github.com/heimdall-ai/heimdall/internal/llm/llmtest"
	"github.com/heimdall-ai/heimdall/models"
	"github.com/heimdall-ai/heimdall/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var billing = models.Category{
	RequestType: "Billing",
	SubRequestTypes: []models.SubCategory{
		{Name: "Refund", Keywords: []string{"refund", "money back"}},
	},
}

func newStore(t *testing.T, cats ...models.Category) store.RuleStore {
	t.Helper()
	s := store.NewFileRuleStore(afero.NewMemMapFs(), "/rules.json")
	require.NoError(t, s.Save(context.Background(), models.RuleDatabase{Categories: cats}))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func analyze(t *testing.T, svc *classify.Service) (classify.Outcome, error) {
	t.Helper()
	return svc.Analyze(context.Background(), models.ClassificationRequest{
		Subject:      "Refund",
		EmailContent: "I want my money back.",
	})
}

func TestAnalyze_Classified(t *testing.T) {
	mock := llmtest.Reply(`{"request_type":"Billing","sub_request_type":"Refund","confidence_score":"0.92"}`)
	svc := classify.NewService(newStore(t, billing), llm.NewClassifier(mock))

	out, err := analyze(t, svc)
	require.NoError(t, err)
	assert.False(t, out.NoIntent)

	body, err := json.Marshal(out.Response())
	require.NoError(t, err)
	assert.JSONEq(t, `{"classification":{"request_type":"Billing","sub_request_type":"Refund","confidence_score":"0.92"}}`, string(body))

	require.Equal(t, 1, mock.Calls())
	p := mock.LastInput()[0].Content
	assert.Contains(t, p, " - 'Billing': Refund (keywords: refund, money back).\n")
	assert.Contains(t, p, "Subject: Refund\n\nContent: I want my money back.")
}

func TestAnalyze_NoIntent(t *testing.T) {
	for _, reply := range []string{
		`{"request_type":"No intent identified"}`,
		"No intent identified",
	} {
		svc := classify.NewService(newStore(t, billing), llm.NewClassifier(llmtest.Reply(reply)))

		out, err := analyze(t, svc)
		require.NoError(t, err, reply)
		assert.True(t, out.NoIntent)

		body, err := json.Marshal(out.Response())
		require.NoError(t, err)
		assert.JSONEq(t, `{"classification":"No request identified","reason":"No actionable intent in the email."}`, string(body))
	}
}

func TestAnalyze_Unparseable(t *testing.T) {
	svc := classify.NewService(newStore(t, billing), llm.NewClassifier(llmtest.Reply("It is about billing.")))

	out, err := analyze(t, svc)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnparseableResponse, apperr.KindOf(err))
	assert.Equal(t, "It is about billing.", out.Raw)
}

func TestAnalyze_LenientRecovers(t *testing.T) {
	svc := classify.NewService(newStore(t, billing),
		llm.NewClassifier(llmtest.Reply("```json\n{\"request_type\": \"Billing\"}\n```")),
		classify.WithLenientJSON(true))

	out, err := analyze(t, svc)
	require.NoError(t, err)
	assert.Equal(t, models.RawString(models.MissingSubRequestType), out.Verdict.Result().SubRequestType)
}

func TestAnalyze_NoRulesSkipsModel(t *testing.T) {
	mock := llmtest.Reply(`{}`)
	svc := classify.NewService(newStore(t), llm.NewClassifier(mock))

	_, err := analyze(t, svc)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNoRules, apperr.KindOf(err))
	assert.Equal(t, classify.NoRulesMessage, err.Error())
	assert.Zero(t, mock.Calls())
}

func TestAnalyze_BackendDown(t *testing.T) {
	svc := classify.NewService(newStore(t, billing), llm.NewClassifier(llmtest.Fail(errors.New("dial tcp: connection refused"))))

	_, err := analyze(t, svc)
	require.Error(t, err)
	assert.Equal(t, apperr.KindBackendUnavailable, apperr.KindOf(err))
}

func TestAnalyze_CorruptRules(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/rules.json", []byte("{not json"), 0o644))
	svc := classify.NewService(store.NewFileRuleStore(fs, "/rules.json"), llm.NewClassifier(llmtest.Reply(`{}`)))

	_, err := analyze(t, svc)
	require.Error(t, err)
	assert.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
	assert.ErrorIs(t, err, store.ErrCorruptRules)
}

func TestAnalyze_SeesRuleChangesImmediately(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, billing)
	mock := llmtest.Reply(`{"request_type":"Billing"}`)
	svc := classify.NewService(s, llm.NewClassifier(mock))

	_, err := analyze(t, svc)
	require.NoError(t, err)
	assert.NotContains(t, mock.LastInput()[0].Content, "Shipping")

	require.NoError(t, s.Update(ctx, func(db *models.RuleDatabase) error {
		db.Categories = append(db.Categories, models.Category{
			RequestType:     "Shipping",
			SubRequestTypes: []models.SubCategory{{Name: "Delay", Keywords: []string{"late"}}},
		})
		return nil
	}))

	_, err = analyze(t, svc)
	require.NoError(t, err)
	assert.Contains(t, mock.LastInput()[0].Content, " - 'Shipping': Delay (keywords: late).\n")
}

func TestPrompt_DoesNotCallModel(t *testing.T) {
	mock := llmtest.Reply(`{}`)
	svc := classify.NewService(newStore(t, billing), llm.NewClassifier(mock))

	p, err := svc.Prompt(context.Background(), models.ClassificationRequest{Subject: "s", EmailContent: "c"})
	require.NoError(t, err)
	assert.Contains(t, p, "'No intent identified'")
	assert.Zero(t, mock.Calls())
}

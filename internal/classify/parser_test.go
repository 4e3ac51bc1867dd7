package classify

import (
	"encoding/json"
	"testing"

	"github.com/heimdall-ai/heimdall/internal/apperr"
	"github.com/heimdall-ai/heimdall/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_AllFields(t *testing.T) {
	r := Parse(`{"request_type":"Billing","sub_request_type":"Refund","confidence_score":"0.92"}`)
	require.True(t, r.Parsed())

	for _, f := range []string{FieldRequestType, FieldSubRequestType, FieldConfidenceScore} {
		assert.True(t, r.Verdict.Has(f), f)
	}

	out, err := json.Marshal(r.Verdict.Result())
	require.NoError(t, err)
	assert.JSONEq(t, `{"request_type":"Billing","sub_request_type":"Refund","confidence_score":"0.92"}`, string(out))
}

func TestParse_NumericScoreKeptVerbatim(t *testing.T) {
	r := Parse(`{"request_type":"Billing","sub_request_type":"Refund","confidence_score":0.75}`)
	require.True(t, r.Parsed())
	assert.Equal(t, json.RawMessage(`0.75`), r.Verdict.Result().ConfidenceScore)
}

func TestParse_MissingFieldsGetSentinels(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "only request type",
			raw:  `{"request_type":"Billing"}`,
			want: `{"request_type":"Billing","sub_request_type":"No sub-request type found","confidence_score":"No confidence score found"}`,
		},
		{
			name: "only score",
			raw:  `{"confidence_score":0.4}`,
			want: `{"request_type":"No request type found","sub_request_type":"No sub-request type found","confidence_score":0.4}`,
		},
		{
			name: "empty object",
			raw:  `{}`,
			want: `{"request_type":"No request type found","sub_request_type":"No sub-request type found","confidence_score":"No confidence score found"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Parse(tt.raw)
			require.True(t, r.Parsed())
			out, err := json.Marshal(r.Verdict.Result())
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(out))
		})
	}
}

func TestParse_AbsentDistinguishedFromSentinelValue(t *testing.T) {
	r := Parse(`{"request_type":"No request type found"}`)
	require.True(t, r.Parsed())
	assert.True(t, r.Verdict.Has(FieldRequestType))
	assert.False(t, r.Verdict.Has(FieldSubRequestType))
	assert.False(t, r.Verdict.Has("unknown"))
}

func TestParse_NullValueIsPresent(t *testing.T) {
	r := Parse(`{"request_type":null}`)
	require.True(t, r.Parsed())
	assert.True(t, r.Verdict.Has(FieldRequestType))
	assert.Equal(t, json.RawMessage(`null`), r.Verdict.Result().RequestType)
}

func TestParse_Failures(t *testing.T) {
	for _, raw := range []string{
		"The email is about billing.",
		"",
		`["Billing","Refund"]`,
		`"Billing"`,
		`null`,
		`{"request_type":"Billing"} thanks!`,
		"```json\n{\"request_type\":\"Billing\"}\n```",
		`{"request_type": 'Billing'}`,
	} {
		r := Parse(raw)
		require.True(t, r.Failed(), "%q should fail", raw)
		assert.Equal(t, apperr.KindUnparseableResponse, apperr.KindOf(r.Err))

		var ae *apperr.Error
		require.ErrorAs(t, r.Err, &ae)
		assert.Equal(t, ParseFailureMessage, ae.Message)
	}
}

func TestParse_SurroundingWhitespaceAccepted(t *testing.T) {
	r := Parse("\n  {\"request_type\":\"Billing\"}\n")
	assert.True(t, r.Parsed())
}

func TestParse_Lenient(t *testing.T) {
	r := Parse("Sure! ```json\n{'request_type': 'Billing', 'sub_request_type': 'Refund',}\n```", Lenient(true))
	require.True(t, r.Parsed())
	assert.Equal(t, models.RawString("Billing"), r.Verdict.Result().RequestType)
	assert.Equal(t, models.RawString("Refund"), r.Verdict.Result().SubRequestType)

	r = Parse("no json here", Lenient(true))
	assert.True(t, r.Failed())
}

func TestIsNoIntent(t *testing.T) {
	assert.True(t, IsNoIntent(`{"request_type":"No intent identified"}`))
	assert.True(t, IsNoIntent("I'd say: No intent identified, the email is spam."))
	assert.False(t, IsNoIntent(`{"request_type":"Billing"}`))
	assert.False(t, IsNoIntent("no intent identified"))
}

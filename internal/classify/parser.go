// Package classify turns an email into a verdict: it builds the prompt from
// the current rules, asks the model, and decodes the reply.
package classify

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/heimdall-ai/heimdall/internal/apperr"
	"github.com/heimdall-ai/heimdall/internal/utils"
	"github.com/heimdall-ai/heimdall/models"
)

// ParseFailureMessage is reported whenever a reply is not a JSON object.
const ParseFailureMessage = "Error: Unable to extract message content from response."

// Verdict fields, as named in the reply contract.
const (
	FieldRequestType     = "request_type"
	FieldSubRequestType  = "sub_request_type"
	FieldConfidenceScore = "confidence_score"
)

// Verdict holds the three expected fields of a decoded reply. A nil field was
// absent from the reply; a present field keeps the model's JSON value verbatim.
type Verdict struct {
	RequestType     json.RawMessage
	SubRequestType  json.RawMessage
	ConfidenceScore json.RawMessage
}

// Has reports whether the model supplied field.
func (v Verdict) Has(field string) bool {
	switch field {
	case FieldRequestType:
		return v.RequestType != nil
	case FieldSubRequestType:
		return v.SubRequestType != nil
	case FieldConfidenceScore:
		return v.ConfidenceScore != nil
	}
	return false
}

// Result fills every absent field with its sentinel, independently.
func (v Verdict) Result() models.ClassificationResult {
	return models.ClassificationResult{
		RequestType:     orSentinel(v.RequestType, models.MissingRequestType),
		SubRequestType:  orSentinel(v.SubRequestType, models.MissingSubRequestType),
		ConfidenceScore: orSentinel(v.ConfidenceScore, models.MissingConfidenceScore),
	}
}

func orSentinel(raw json.RawMessage, sentinel string) json.RawMessage {
	if raw == nil {
		return models.RawString(sentinel)
	}
	return raw
}

// ParseResult is either Parsed, carrying a Verdict, or Failed, carrying Err.
type ParseResult struct {
	Verdict Verdict
	Err     error
}

// Parsed reports whether the reply decoded.
func (r ParseResult) Parsed() bool { return r.Err == nil }

// Failed reports whether the reply could not be decoded.
func (r ParseResult) Failed() bool { return r.Err != nil }

// ParseOption configures Parse.
type ParseOption func(*parseOptions)

type parseOptions struct {
	lenient bool
}

// Lenient lets Parse dig a JSON object out of surrounding prose, markdown
// fences or slightly malformed syntax when the strict decode fails.
func Lenient(on bool) ParseOption {
	return func(o *parseOptions) { o.lenient = on }
}

// Parse decodes raw as a single JSON object and extracts the verdict fields.
func Parse(raw string, opts ...ParseOption) ParseResult {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}

	fields, err := decodeObject(raw)
	if err != nil && o.lenient {
		fields, err = utils.ExtractJSONObject[map[string]json.RawMessage](raw)
		if err == nil && fields == nil {
			err = errors.New("reply is null")
		}
	}
	if err != nil {
		return ParseResult{Err: apperr.Wrap(apperr.KindUnparseableResponse, ParseFailureMessage, err)}
	}

	return ParseResult{Verdict: Verdict{
		RequestType:     fields[FieldRequestType],
		SubRequestType:  fields[FieldSubRequestType],
		ConfidenceScore: fields[FieldConfidenceScore],
	}}
}

func decodeObject(raw string) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("reply is null")
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON object")
	}
	return fields, nil
}

// IsNoIntent reports whether the model declined to pick a category. The
// fallback label anywhere in the reply counts, even when the reply is not JSON.
func IsNoIntent(raw string) bool {
	return strings.Contains(raw, models.NoIntentLabel)
}

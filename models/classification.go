package models

import "encoding/json"

// Sentinel values substituted when the model omits a field.
const (
	MissingRequestType     = "No request type found"
	MissingSubRequestType  = "No sub-request type found"
	MissingConfidenceScore = "No confidence score found"
)

// NoIntentLabel is the category the model is told to answer with when nothing matches.
const NoIntentLabel = "No intent identified"

// ClassificationRequest is the payload of POST /analyze-email.
type ClassificationRequest struct {
	Subject      string `json:"subject"`
	EmailContent string `json:"email_content"`
}

// ClassificationResult is the verdict returned to callers. Values are kept as
// raw JSON because models answer confidence_score as either a string or a number.
type ClassificationResult struct {
	RequestType     json.RawMessage `json:"request_type"`
	SubRequestType  json.RawMessage `json:"sub_request_type"`
	ConfidenceScore json.RawMessage `json:"confidence_score"`
}

// RawString encodes s as a JSON string value.
func RawString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

// Answer returned to callers when the model found no intent.
const (
	NoRequestLabel = "No request identified"
	NoIntentReason = "No actionable intent in the email."
)

// NoIntentResponse is the body of /analyze-email when nothing matched.
type NoIntentResponse struct {
	Classification string `json:"classification"`
	Reason         string `json:"reason"`
}

// ClassificationResponse is the body of /analyze-email for a matched intent.
type ClassificationResponse struct {
	Classification ClassificationResult `json:"classification"`
}

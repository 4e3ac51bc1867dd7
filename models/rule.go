package models

import "encoding/json"

// SubCategory is a finer-grained intent under a category. Keywords are hints
// rendered into the prompt; they are never matched against the email locally.
type SubCategory struct {
	Name     string   `json:"name" yaml:"name" validate:"required"`
	Keywords []string `json:"keywords" yaml:"keywords" validate:"required,min=1,dive,notblank"`
}

// Category is a top-level intent label. RequestType is the unique key.
type Category struct {
	RequestType     string        `json:"request_type" yaml:"request_type" validate:"required"`
	SubRequestTypes []SubCategory `json:"sub_request_types" yaml:"sub_request_types" validate:"required,dive"`
}

// RuleDatabase is the single persisted rules document.
type RuleDatabase struct {
	Categories []Category `json:"categories" yaml:"categories"`
}

// Find returns the index of the category whose RequestType matches exactly.
func (db *RuleDatabase) Find(requestType string) (int, bool) {
	for i, c := range db.Categories {
		if c.RequestType == requestType {
			return i, true
		}
	}
	return -1, false
}

// MarshalJSON keeps "categories" an array for empty documents.
func (db RuleDatabase) MarshalJSON() ([]byte, error) {
	type alias RuleDatabase
	out := alias{Categories: make([]Category, len(db.Categories))}
	copy(out.Categories, db.Categories)
	for i := range out.Categories {
		if out.Categories[i].SubRequestTypes == nil {
			out.Categories[i].SubRequestTypes = []SubCategory{}
		}
	}
	return json.Marshal(out)
}

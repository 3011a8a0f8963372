package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// FieldValue is the value of one extracted field. Most fields carry a
// single string, but the aggregate keys (extracted_dates,
// extracted_amounts) carry every match found, so the value is a tagged
// text-or-list union rather than an interface{}.
type FieldValue struct {
	text   string
	list   []string
	isList bool
}

// TextValue returns a single-string field value.
func TextValue(s string) FieldValue {
	return FieldValue{text: s}
}

// ListValue returns a list-of-strings field value.
func ListValue(vs []string) FieldValue {
	return FieldValue{list: vs, isList: true}
}

// IsList reports whether the value carries a list of matches.
func (v FieldValue) IsList() bool { return v.isList }

// Text returns the single value, or "" for list values.
func (v FieldValue) Text() string { return v.text }

// List returns the matched values, or nil for single values.
func (v FieldValue) List() []string { return v.list }

// MarshalJSON emits a bare string for single values and an array for
// list values, matching the stored extracted_data shape.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.isList {
		return json.Marshal(v.list)
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON accepts either wire shape.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = TextValue(s)
		return nil
	}
	var vs []string
	if err := json.Unmarshal(data, &vs); err == nil {
		*v = ListValue(vs)
		return nil
	}
	return fmt.Errorf("field value must be a string or an array of strings: %s", data)
}

// FieldMap holds the key-value pairs detected in a document's text.
type FieldMap map[string]FieldValue

// ExtractionMetadata describes one pipeline run.
type ExtractionMetadata struct {
	ProcessedAt    time.Time `json:"processing_time"`
	PagesProcessed int       `json:"pages_processed"`
}

// ExtractionResult is the output of one pipeline run. It lives only
// until the lifecycle manager persists it as a document's
// extracted_data payload.
type ExtractionResult struct {
	FullText  string             `json:"full_text"`
	KeyValues FieldMap           `json:"key_value_pairs"`
	Metadata  ExtractionMetadata `json:"metadata"`
}

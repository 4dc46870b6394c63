package appform

import (
	"encoding/json"
	"strings"
)

// Confidence grades how certain the recognition provider was about one
// extracted value.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// confidenceRanks orders the grades for merge arbitration. Unknown grades
// rank 0 and lose against everything.
var confidenceRanks = map[Confidence]int{
	ConfidenceHigh:   3,
	ConfidenceMedium: 2,
	ConfidenceLow:    1,
}

// Rank returns the numeric ordering of a confidence grade.
func (c Confidence) Rank() int {
	return confidenceRanks[c]
}

// Valid reports whether c is one of the three known grades.
func (c Confidence) Valid() bool {
	_, ok := confidenceRanks[c]
	return ok
}

// Field is one extracted string value with its recognition metadata. Fields
// are immutable value objects: every "mutation" returns a new Field.
type Field struct {
	Value      *string    `json:"value"`
	Confidence Confidence `json:"confidence"`
	Flagged    bool       `json:"flagged"`
	RawText    string     `json:"raw_text,omitempty"`
}

// BoolField is the boolean-valued variant of Field with the same metadata.
type BoolField struct {
	Value      *bool      `json:"value"`
	Confidence Confidence `json:"confidence"`
	Flagged    bool       `json:"flagged"`
	RawText    string     `json:"raw_text,omitempty"`
}

// NewField returns an empty low-confidence field.
func NewField() Field {
	return Field{Confidence: ConfidenceLow}
}

// NewFieldWith returns a field holding v at the given confidence.
func NewFieldWith(v string, c Confidence) Field {
	return Field{Value: &v, Confidence: c}
}

// NewBoolField returns an empty low-confidence boolean field.
func NewBoolField() BoolField {
	return BoolField{Confidence: ConfidenceLow}
}

// NewBoolFieldWith returns a boolean field holding v at the given confidence.
func NewBoolFieldWith(v bool, c Confidence) BoolField {
	return BoolField{Value: &v, Confidence: c}
}

// IsNull reports whether the field carries no value.
func (f Field) IsNull() bool {
	return f.Value == nil
}

// ValueOr returns the field value, or def when the field is null.
func (f Field) ValueOr(def string) string {
	if f.Value == nil {
		return def
	}
	return *f.Value
}

// WithValue returns the field as edited by a reviewer: the new value at high
// confidence, flag cleared, extracted raw text dropped.
func (f Field) WithValue(v string) Field {
	return Field{Value: &v, Confidence: ConfidenceHigh}
}

// Cleared returns the field with its value removed and the flag raised.
// Confidence and raw text are kept so the review surface can still show
// what was originally extracted.
func (f Field) Cleared() Field {
	return Field{Confidence: f.Confidence, Flagged: true, RawText: f.RawText}
}

// Flag returns the field with its uncertainty flag raised.
func (f Field) Flag() Field {
	f.Flagged = true
	return f
}

func (f BoolField) IsNull() bool {
	return f.Value == nil
}

// WithValue returns the boolean field as edited by a reviewer.
func (f BoolField) WithValue(v bool) BoolField {
	return BoolField{Value: &v, Confidence: ConfidenceHigh}
}

// Cleared returns the boolean field with its value removed and the flag
// raised.
func (f BoolField) Cleared() BoolField {
	return BoolField{Confidence: f.Confidence, Flagged: true, RawText: f.RawText}
}

// UnmarshalJSON normalizes provider output: confidence strings are
// lower-cased, and an unknown grade on a present value becomes low with the
// flag raised rather than an error.
func (f *Field) UnmarshalJSON(data []byte) error {
	type alias Field
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	a.Confidence = normalizeConfidence(a.Confidence, a.Value != nil, &a.Flagged)
	*f = Field(a)
	return nil
}

// UnmarshalJSON applies the same normalization as Field.UnmarshalJSON.
func (f *BoolField) UnmarshalJSON(data []byte) error {
	type alias BoolField
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	a.Confidence = normalizeConfidence(a.Confidence, a.Value != nil, &a.Flagged)
	*f = BoolField(a)
	return nil
}

func normalizeConfidence(c Confidence, hasValue bool, flagged *bool) Confidence {
	norm := Confidence(strings.ToLower(strings.TrimSpace(string(c))))
	if norm.Valid() {
		return norm
	}
	if hasValue {
		*flagged = true
	}
	return ConfidenceLow
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunRef points at a formatting run inside a parsed document. Fill output
// copies character formatting from the referenced run.
type RunRef struct {
	Block int `json:"block"`
	Run   int `json:"run"`
}

// Occurrence is a single detected placeholder site in a document.
type Occurrence struct {
	// RawText is the placeholder exactly as it appears, delimiters included.
	RawText string `json:"raw_text"`
	// Name is the inner text with delimiters stripped and whitespace trimmed.
	// For blank fields it is the label preceding the underscores.
	Name string `json:"name"`
	Kind DetectionKind `json:"kind"`
	// BlockIndex addresses the paragraph the occurrence lives in.
	BlockIndex int `json:"block_index"`
	// CharOffset and EndOffset delimit the replacement span within the
	// block's plain text, end exclusive.
	CharOffset int `json:"char_offset"`
	EndOffset  int `json:"end_offset"`
	// FormatRef is the run whose character formatting a filled value adopts.
	FormatRef RunRef `json:"format_ref"`
	// Context is the surrounding text, up to 100 characters on each side.
	Context string `json:"context"`
}

// FieldSchema is the disambiguated description of one logical field. Several
// occurrences may map to a single field when they ask for the same value.
type FieldSchema struct {
	// FieldID is the raw text of the placeholder, suffixed with "#<i>" when
	// occurrences sharing raw text were judged to be distinct fields.
	FieldID  string   `json:"field_id"`
	Label    string   `json:"label"`
	DataType DataType `json:"data_type"`
	// Question is a human-readable prompt for collecting the value.
	Question string `json:"question"`
	// Example is a plausible sample value in the field's expected format.
	Example  string `json:"example,omitempty"`
	Required bool   `json:"required"`
	// Occurrences are indices into the document's occurrence list.
	Occurrences []int `json:"occurrences"`
	// Source records whether the schema came from the oracle or the
	// heuristic fallback.
	Source string `json:"source"`
}

const (
	SchemaSourceOracle    = "oracle"
	SchemaSourceHeuristic = "heuristic"
)

// ValidationAttempt is the persisted validation state for one field.
type ValidationAttempt struct {
	FieldID string        `json:"field_id" db:"field_id"`
	Status  AttemptStatus `json:"status" db:"status"`
	// SubmittedValue is the most recent raw submission.
	SubmittedValue string `json:"submitted_value" db:"submitted_value"`
	// AcceptedValue is set once the attempt reaches a terminal status.
	AcceptedValue string `json:"accepted_value,omitempty" db:"accepted_value"`
	// ProposedValue is the normalized alternative offered while the attempt
	// is awaiting confirmation.
	ProposedValue string `json:"proposed_value,omitempty" db:"proposed_value"`
	// Confidence is the normalizer's confidence in the proposed value.
	Confidence float64 `json:"confidence,omitempty" db:"confidence"`
	// RejectionReason is the stable reason string of the last rejection.
	RejectionReason string `json:"rejection_reason,omitempty" db:"rejection_reason"`
	// RejectionCount is the streak of consecutive rejections with the same
	// reason. A rejection with a different reason resets it to 1.
	RejectionCount int       `json:"rejection_count" db:"rejection_count"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentAnalysis is the full result of running detection and
// disambiguation over a document.
type DocumentAnalysis struct {
	Occurrences []Occurrence  `json:"occurrences"`
	Fields      []FieldSchema `json:"fields"`
	// Assessment is a short human-readable note, set when the document
	// contains no placeholders at all.
	Assessment string `json:"assessment,omitempty"`
}

// FillReport summarizes a fill pass over a document.
type FillReport struct {
	// Filled lists field IDs whose occurrences were replaced.
	Filled []string `json:"filled"`
	// Skipped lists field IDs left verbatim because no value was supplied.
	Skipped []string `json:"skipped"`
	// Orphaned lists value-map keys that matched no detected field.
	Orphaned []string `json:"orphaned"`
}

// FillSession is a persisted multi-step fill workflow over one document.
type FillSession struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	FileName  string        `json:"file_name" db:"file_name"`
	Status    SessionStatus `json:"status" db:"status"`
	// SourceKey and FilledKey locate the original and the finalized
	// document in object storage.
	SourceKey string        `json:"source_key" db:"source_key"`
	FilledKey string        `json:"filled_key,omitempty" db:"filled_key"`
	Fields    []FieldSchema `json:"fields" db:"-"`
	Assessment string       `json:"assessment,omitempty" db:"assessment"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

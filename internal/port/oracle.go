package port

import (
	"context"

	"docfill/internal/domain"
)

// OracleRequest carries everything a semantic oracle needs to disambiguate
// a document's placeholders.
type OracleRequest struct {
	// DocumentText is the full plain text of the document.
	DocumentText string
	Occurrences  []domain.Occurrence
}

// OracleField is one field judgment returned by an oracle.
type OracleField struct {
	// Occurrence indexes into the request's occurrence list.
	Occurrence int
	Label      string
	DataType   domain.DataType
	Question   string
	Example    string
	Required   bool
	// SameFieldAs points at an earlier occurrence asking for the same
	// value, or -1 when the occurrence is a distinct field.
	SameFieldAs int
}

// SemanticOracle judges what each placeholder occurrence represents and
// which occurrences share a value. Implementations call an external
// language model.
type SemanticOracle interface {
	Disambiguate(ctx context.Context, req OracleRequest) ([]OracleField, error)
	Name() string
}

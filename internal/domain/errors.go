package domain

import "errors"

var (
	// ErrMalformedDocument means the uploaded file could not be parsed as a
	// word processing document. Detection cannot proceed past it.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrOracleUnavailable means no semantic oracle could be reached. The
	// caller falls back to heuristic disambiguation.
	ErrOracleUnavailable = errors.New("semantic oracle unavailable")

	ErrSessionNotFound   = errors.New("session not found")
	ErrFieldNotFound     = errors.New("field not found")
	ErrSessionFinalized  = errors.New("session already finalized")
	ErrSessionIncomplete = errors.New("session has unresolved required fields")

	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum size")
	ErrEmptyFile           = errors.New("file is empty")
)

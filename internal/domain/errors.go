package domain

import "errors"

var (
	// ErrValidation indicates malformed caller input (query length, bad
	// enum value). Never retried.
	ErrValidation = errors.New("invalid input")

	// ErrExtraction indicates the criteria extractor was unreachable or
	// returned output that could not be decoded into Criteria.
	ErrExtraction = errors.New("criteria extraction failed")

	// ErrStore indicates the persistence layer was unavailable.
	ErrStore = errors.New("store unavailable")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the record belongs to a different agent.
	ErrForbidden = errors.New("forbidden")
)

package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrAnalysisFailed is wrapped by every failure of the sentiment analyzer.
	// Callers of the ingestion pipeline never see it.
	ErrAnalysisFailed = errors.New("sentiment analysis failed")
)

// ValidationError reports malformed or referentially invalid input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

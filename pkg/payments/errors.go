package payments

import "fmt"

// ValidationError rejects malformed input before any persistence. Field
// names the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SubmissionError records a chain rejection of a submit call. It is written
// to the transaction and surfaced through batch counts, never thrown at the
// batch caller.
type SubmissionError struct {
	TransactionID string
	Err           error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission of transaction %s rejected: %v", e.TransactionID, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

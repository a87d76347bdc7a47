package publish

import "fmt"

// ErrSignInRequired is returned when an anonymous actor attempts to publish.
type signInRequiredError struct{}

func (signInRequiredError) Error() string {
	return "sign in before publishing a fragment"
}

// ErrSignInRequired marks a publish attempt without a session.
var ErrSignInRequired error = signInRequiredError{}

// ValidationError wraps a moderation rejection. The draft stays local; the
// caller can edit and resubmit.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// SafetyRejection is a classifier verdict against the content itself, with
// the rationale the classifier gave.
type SafetyRejection struct {
	Reason string
}

func (e *SafetyRejection) Error() string {
	if e.Reason == "" {
		return "fragment rejected by content safety review"
	}
	return fmt.Sprintf("fragment rejected by content safety review: %s", e.Reason)
}

// TransportFailure is a classification round trip that never produced a
// verdict. Nothing was persisted and no rate limit was consumed.
type TransportFailure struct {
	Err error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("classification unavailable: %v", e.Err)
}

func (e *TransportFailure) Unwrap() error {
	return e.Err
}

// PersistenceFailure is a failed storage write after a successful
// classification. The draft keeps its verdict so a retry skips the
// classifier when the text is unchanged.
type PersistenceFailure struct {
	Err error
}

func (e *PersistenceFailure) Error() string {
	return fmt.Sprintf("fragment could not be stored: %v", e.Err)
}

func (e *PersistenceFailure) Unwrap() error {
	return e.Err
}

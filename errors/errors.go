package errors

import "errors"

// Sentinel errors for common error conditions
var (
	// ErrRoutingAmbiguous indicates the classifier could not decide a route
	ErrRoutingAmbiguous = errors.New("routing ambiguous")

	// ErrEvidenceUnavailable indicates every evidence source came back empty
	ErrEvidenceUnavailable = errors.New("evidence unavailable")

	// ErrGenerationFailure indicates the generative step itself failed;
	// fatal for the current turn, conversation state must stay unmodified
	ErrGenerationFailure = errors.New("generation failure")

	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput indicates that input validation failed
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

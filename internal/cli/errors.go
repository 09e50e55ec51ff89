// Package cli implements the command-line interface.
package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Repository errors
	ErrRepoNotFound     = "REPO_NOT_FOUND"
	ErrRepoNotSpecified = "REPO_NOT_SPECIFIED"
	ErrConfigInvalid    = "CONFIG_INVALID"

	// Artifact errors
	ErrArtifactNotFound  = "ARTIFACT_NOT_FOUND"
	ErrMalformedArtifact = "MALFORMED_ARTIFACT"
	ErrWriteFailed       = "WRITE_ERROR"

	// Clone errors
	ErrMissingIdentifiers = "MISSING_IDENTIFIER_NODES"

	// Input errors
	ErrInvalidInput = "INVALID_INPUT"

	// Check errors
	ErrCheckFailed = "CHECK_FAILED"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Relay errors
	ErrValidation    = errors.New("validation failed")
	ErrConfiguration = errors.New("backend configuration is missing")
	ErrUpstream      = errors.New("upstream backend failed")
	ErrParse         = errors.New("malformed upstream payload")

	// Conversation errors
	ErrConversationNotFound = errors.New("conversation not found")

	// File errors
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrFileNotFound    = errors.New("file not found")

	// RAG errors
	ErrInvalidAction = errors.New("invalid action")

	// Auth errors
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")

	// Validation errors
	ErrMissingField  = errors.New("required field is missing")
	ErrInvalidFormat = errors.New("invalid format")
)

// ErrorResponse is the JSON body of every non-2xx API answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UpstreamError is a failed call to a chat backend. StatusCode is zero when
// the request never got an HTTP answer.
type UpstreamError struct {
	Backend    string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s responded with status %d: %s", e.Backend, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s unreachable: %v", e.Backend, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstream, e.Err}
}

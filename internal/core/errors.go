package core

import "errors"

var (
	// ErrAccessDenied is returned when a collaborator capability is not granted
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound is returned when a requested document or folder does not exist
	ErrNotFound = errors.New("not found")

	// ErrEmptyResponse is returned when the summarizer produced no text
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrMalformedSummary is returned when a summary lacks the expected structure
	ErrMalformedSummary = errors.New("malformed summary")
)

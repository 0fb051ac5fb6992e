package engine

import "errors"

var (
	// ErrScriptNotFound is returned when the script path does not exist
	ErrScriptNotFound = errors.New("script not found")

	// ErrScriptUnreadable is returned when the script exists but cannot be read
	// or is not a regular file
	ErrScriptUnreadable = errors.New("script is not a readable file")
)

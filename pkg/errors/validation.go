package errors

import (
	"strings"
	"unicode"
)

// ValidateSpecName validates a stored spec name for safety and correctness.
// Spec names become file names in the file-backed store and document keys in
// the mongo-backed store, so names that could be used for path traversal or
// injection are rejected.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateSpecName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "spec name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "spec name too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "spec name contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
		"/",    // Path separator
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "spec name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateChannelName validates an encoding channel name.
// Arbitrary caller-defined channels are allowed, but a channel must be a
// non-empty identifier-like token so it survives serialization round trips.
func ValidateChannelName(channel string) error {
	if channel == "" {
		return New(ErrCodeInvalidSpec, "channel name cannot be empty")
	}
	for _, r := range channel {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidSpec, "channel name %q contains whitespace or control characters", channel)
		}
	}
	return nil
}

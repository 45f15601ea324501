package errors

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// maxNodeIDLength bounds node IDs accepted from clients.
const maxNodeIDLength = 512

// ValidateNodeID validates a node ID received from a client.
//
// Node IDs are derived from group names, so spaces, parentheses and
// punctuation are allowed. Rejected are:
//   - empty IDs
//   - control characters and null bytes
//   - IDs longer than 512 bytes
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node ID cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidInput, "node ID too long (max %d characters)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node ID contains invalid control characters")
		}
	}

	return nil
}

// ValidateMode validates a layout mode name.
func ValidateMode(mode string) error {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "graph", "tree":
		return nil
	case "":
		return New(ErrCodeInvalidMode, "mode cannot be empty")
	default:
		return New(ErrCodeInvalidMode, "invalid mode %q: must be graph or tree", mode)
	}
}

// ValidateFormat validates an output format against the allowed set.
func ValidateFormat(format string, allowed ...string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, strings.ToLower(format)) {
		return New(ErrCodeInvalidFormat, "invalid format %q: must be one of %s", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateRowSource validates the path of a row file by its extension.
func ValidateRowSource(path string) error {
	if path == "" {
		return New(ErrCodeInvalidRowSource, "row source path cannot be empty")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".json", ".yaml", ".yml":
		return nil
	default:
		return New(ErrCodeInvalidRowSource, "unsupported row source %q: expected .csv, .json or .yaml", filepath.Base(path))
	}
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

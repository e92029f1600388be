package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// networkNameRegex matches valid stored-network names.
var networkNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateNetworkName validates a name used to identify a stored network.
// Names become store keys (and, for the file backend, path fragments), so
// the rules are intentionally conservative:
//   - No empty names
//   - Maximum length of 128 characters
//   - Letters, digits, dots, dashes, underscores only
//   - No leading dot (hidden files on the file backend)
func ValidateNetworkName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "network name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidName, "network name too long (max 128 characters)")
	}
	if !networkNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid network name: %q", name)
	}
	return nil
}

// ValidateOutputPath validates a file path supplied for output.
// It prevents path traversal into unexpected locations and rejects
// control characters.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateFormat checks a format name against the set of supported formats.
// The supported set is passed in by the caller (the codec registry owns it)
// to avoid an import cycle between errors and codec.
func ValidateFormat(format string, supported []string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	for _, s := range supported {
		if strings.EqualFold(format, s) {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format: %s (supported: %s)",
		format, strings.Join(supported, ", "))
}

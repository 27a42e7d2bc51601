package errors

import (
	"strings"
	"unicode"
)

// maxFragmentIDLength bounds fragment identifiers. UUIDs are 36 characters;
// the extra room covers store-specific prefixes.
const maxFragmentIDLength = 128

// ValidateFragmentID validates a fragment identifier.
//
// Identifiers are used as map keys in position patches, as file names by the
// file store, and as URL path segments by the API, so the rules are
// conservative:
//   - No empty IDs
//   - No control characters or whitespace
//   - No path separators
//   - Maximum length of 128 characters
func ValidateFragmentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidFragment, "fragment id cannot be empty")
	}

	if len(id) > maxFragmentIDLength {
		return New(ErrCodeInvalidFragment, "fragment id too long (max %d characters)", maxFragmentIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidFragment, "fragment id contains invalid characters: %q", id)
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidFragment, "fragment id cannot contain path separators: %q", id)
	}

	return nil
}

// maxPathLength bounds store locations.
const maxPathLength = 4096

// ValidatePath validates a store location on disk. Absolute and relative
// paths are both accepted; the caller cleans the path afterwards.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 bytes
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

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

// ValidateURL validates a backend connection URL.
// It ensures the URL uses one of the given schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URL cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "URL must use one of the schemes: %s", strings.Join(schemes, ", "))
}

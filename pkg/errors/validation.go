package errors

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLabelLength bounds a single bubble label in bytes.
const MaxLabelLength = 256

// ValidateLabel rejects labels that cannot be shown in a bubble.
//
// Rules:
//   - not empty or whitespace-only
//   - valid UTF-8
//   - no control characters
//   - at most MaxLabelLength bytes
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidLabel, "label cannot be empty")
	}
	if len(label) > MaxLabelLength {
		return New(ErrCodeInvalidLabel, "label too long (max %d bytes)", MaxLabelLength)
	}
	if !utf8.ValidString(label) {
		return New(ErrCodeInvalidLabel, "label is not valid UTF-8")
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLabel, "label %q contains control characters", label)
		}
	}
	return nil
}

// ValidateWeight rejects weights the engine would silently treat as zero.
func ValidateWeight(label string, w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return New(ErrCodeInvalidInput, "weight for %q must be finite", label)
	}
	if w < 0 {
		return New(ErrCodeInvalidInput, "weight for %q cannot be negative", label)
	}
	return nil
}

// ValidateFormat checks format against the set of supported output formats.
func ValidateFormat(format string, valid map[string]bool) error {
	if !valid[format] {
		return New(ErrCodeInvalidFormat, "invalid format %q (must be one of: %s)", format, keys(valid))
	}
	return nil
}

// ValidateStyle checks style against the set of registered render styles.
func ValidateStyle(style string, valid map[string]bool) error {
	if !valid[style] {
		return New(ErrCodeInvalidStyle, "invalid style %q (must be one of: %s)", style, keys(valid))
	}
	return nil
}

// ValidateSource checks source against the frequency tables a report carries.
func ValidateSource(source string, valid map[string]bool) error {
	if !valid[source] {
		return New(ErrCodeInvalidSource, "invalid source %q (must be one of: %s)", source, keys(valid))
	}
	return nil
}

// ValidatePath validates a user-supplied output path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

func keys(m map[string]bool) string {
	out := make([]string, 0, len(m))
	for k, ok := range m {
		if ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}

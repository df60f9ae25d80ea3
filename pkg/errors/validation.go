package errors

import (
	"strings"
	"unicode"
)

// ValidateProjectName validates a board or project base name for safety.
// It rejects names that could be used for path traversal or injection when
// the name is later combined into output paths.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
//
// Characters that are merely awkward in filenames are not rejected here;
// the plot filename builder replaces those with underscores.
func ValidateProjectName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidProject, "project name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidProject, "project name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidProject, "project name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidProject, "project name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateOutputDir validates a requested output directory for safety.
// Absolute paths are allowed for local use; traversal sequences are not,
// so a directory taken from an API request cannot escape its sandbox.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateOutputDir(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output directory cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output directory too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output directory contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "output directory cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "output directory cannot contain backslashes")
	}

	return nil
}

// ValidateCopperCount validates a board copper layer count.
// Real boards carry an even number of copper layers between 2 and 32.
func ValidateCopperCount(count int) error {
	if count < 2 || count > 32 {
		return New(ErrCodeInvalidProject, "copper layer count must be between 2 and 32, got %d", count)
	}
	if count%2 != 0 {
		return New(ErrCodeInvalidProject, "copper layer count must be even, got %d", count)
	}
	return nil
}

// ValidatePenSize validates an HPGL pen diameter in millimeters.
func ValidatePenSize(mm float64) error {
	const (
		minPenMM = 0.05
		maxPenMM = 2.0
	)
	if mm < minPenMM || mm > maxPenMM {
		return New(ErrCodeInvalidInput, "pen size must be between %.2f and %.2f mm, got %g", minPenMM, maxPenMM, mm)
	}
	return nil
}

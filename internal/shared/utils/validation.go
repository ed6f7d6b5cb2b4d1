// Package utils provides input validation shared across the backend.
package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String length limits
const (
	MaxIDLength          = 128
	MaxTitleLength       = 256
	MaxCategoryLength    = 64
	MaxDescriptionLength = 2048
	MaxSessionNameLength = 128
)

// Regular expressions for validation
var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// CategoryPattern allows lowercase letters, numbers, and hyphens
	CategoryPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil // Optional field, empty is OK
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Check for null bytes (security issue)
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateAppID validates an application identifier
func ValidateAppID(id string) error {
	if err := ValidateString(id, "application id", 1, MaxIDLength, true); err != nil {
		return err
	}

	if !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("application id contains invalid characters (only alphanumeric, hyphens, and underscores allowed)")
	}

	return nil
}

// ValidateTitle validates a window or application title
func ValidateTitle(title string, required bool) error {
	return ValidateString(title, "title", 1, MaxTitleLength, required)
}

// ValidateCategory validates a category field
func ValidateCategory(category string, required bool) error {
	if err := ValidateString(category, "category", 0, MaxCategoryLength, required); err != nil {
		return err
	}

	if category != "" && !CategoryPattern.MatchString(category) {
		return fmt.Errorf("category must contain only lowercase letters, numbers, and hyphens")
	}

	return nil
}

// ValidateSessionName validates a saved-session name. Names double as
// file names, so they use the safe id character set.
func ValidateSessionName(name string) error {
	if err := ValidateString(name, "session name", 1, MaxSessionNameLength, true); err != nil {
		return err
	}
	if !SafeIDPattern.MatchString(name) {
		return fmt.Errorf("session name contains invalid characters (only alphanumeric, hyphens, and underscores allowed)")
	}
	return nil
}

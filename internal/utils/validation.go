package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateFileExtension checks if a file has one of the allowed extensions
func ValidateFileExtension(filePath string, allowedExts []string) error {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, allowedExt := range allowedExts {
		if ext == allowedExt {
			return nil
		}
	}
	return &ValidationError{
		Field:   "extension",
		Message: fmt.Sprintf("file extension %s not allowed. Allowed extensions: %v", ext, allowedExts),
	}
}

// ValidateRelativePath rejects empty and absolute paths, and paths escaping the root
func ValidateRelativePath(field, path string) error {
	if path == "" {
		return &ValidationError{Field: field, Message: "path is required"}
	}
	if filepath.IsAbs(path) {
		return &ValidationError{Field: field, Message: fmt.Sprintf("path must be relative to the pipeline root: %s", path)}
	}
	clean := filepath.Clean(path)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return &ValidationError{Field: field, Message: fmt.Sprintf("path escapes the pipeline root: %s", path)}
	}
	return nil
}

// EnsureDirs creates every directory under root if it does not exist yet
func EnsureDirs(root string, dirs []string) error {
	for _, d := range dirs {
		full := filepath.Join(root, d)
		if err := os.MkdirAll(full, 0755); err != nil {
			return &ValidationError{
				Field:   d,
				Message: "failed to create directory",
				Err:     err,
			}
		}
	}
	return nil
}

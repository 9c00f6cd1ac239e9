// Package errors provides actionable error messages for the CLI surface.
package errors

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// UserFriendlyError pairs what went wrong with how to fix it.
type UserFriendlyError struct {
	Message    string
	Suggestion string
	Details    error // original error, kept for logs
}

func (e *UserFriendlyError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Suggestion != "" {
		sb.WriteString("\n\nHow to fix:\n")
		sb.WriteString(e.Suggestion)
	}
	return sb.String()
}

func (e *UserFriendlyError) Unwrap() error { return e.Details }

// CatalogError explains failures loading the JSON catalog export.
func CatalogError(path string, err error) *UserFriendlyError {
	msg := fmt.Sprintf("Cannot load catalog: %s", path)
	suggestion := "Check the path and that the file is a JSON catalog export"
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "no such file or directory") {
			msg = fmt.Sprintf("Catalog file does not exist: %s", path)
			suggestion = "Point --catalog at a JSON export, or set general.catalog_path in the config"
		}
		if strings.Contains(errStr, "decode catalog") || strings.Contains(errStr, "invalid character") {
			msg = fmt.Sprintf("Catalog file is not valid JSON: %s", path)
			suggestion = "The export may be truncated. Re-export the catalog and retry."
		}
	}
	return &UserFriendlyError{Message: msg, Suggestion: suggestion, Details: err}
}

// DatabaseError explains sqlite cache failures with recovery steps.
func DatabaseError(err error) *UserFriendlyError {
	msg := "Cache database error"
	suggestion := "Re-run 'modbrowse import' to rebuild the cache"
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "locked") || strings.Contains(errStr, "busy") {
			msg = "Cache database is locked by another process"
			suggestion = "Close other modbrowse instances and try again"
		}
		if strings.Contains(errStr, "corrupt") || strings.Contains(errStr, "malformed") {
			msg = "Cache database is corrupted"
			suggestion = "Delete catalog.db under general.data_root and re-run 'modbrowse import'"
		}
	}
	return &UserFriendlyError{Message: msg, Suggestion: suggestion, Details: err}
}

// ConfigError explains a rejected configuration field.
func ConfigError(field, issue string) *UserFriendlyError {
	return &UserFriendlyError{
		Message:    fmt.Sprintf("Configuration error in field '%s': %s", field, issue),
		Suggestion: "Run 'modbrowse config validate' to check your configuration",
	}
}

// DiskSpaceError explains an out-of-space condition in concrete numbers.
func DiskSpaceError(availableBytes, requiredBytes uint64) *UserFriendlyError {
	short := requiredBytes - availableBytes
	return &UserFriendlyError{
		Message: fmt.Sprintf("Insufficient disk space: need %s but only %s available",
			humanize.Bytes(requiredBytes), humanize.Bytes(availableBytes)),
		Suggestion: fmt.Sprintf("Free up at least %s of disk space and try again", humanize.Bytes(short)),
	}
}

// PathError explains file and directory access failures.
func PathError(path string, err error) *UserFriendlyError {
	msg := fmt.Sprintf("Path error: %s", path)
	suggestion := "Check that the path exists and you have permission to access it"
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "permission denied") {
			msg = fmt.Sprintf("Permission denied: %s", path)
			suggestion = fmt.Sprintf("Ensure you have write permission:\n  chmod u+w %s", path)
		}
		if strings.Contains(errStr, "no such file or directory") {
			msg = fmt.Sprintf("Directory does not exist: %s", path)
			suggestion = fmt.Sprintf("Create the directory:\n  mkdir -p %s", path)
		}
	}
	return &UserFriendlyError{Message: msg, Suggestion: suggestion, Details: err}
}

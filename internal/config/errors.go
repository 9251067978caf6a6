package config

import (
	"errors"
	"fmt"

	"github.com/dshills/markstorm/internal/config/loader"
)

// Errors returned by configuration operations.
var (
	// ErrSettingNotFound indicates the setting path doesn't exist.
	ErrSettingNotFound = errors.New("config: setting not found")

	// ErrTypeMismatch indicates the value type doesn't match the expected type.
	ErrTypeMismatch = errors.New("config: type mismatch")

	// ErrValidationFailed indicates a setting holds an unacceptable value.
	ErrValidationFailed = errors.New("config: validation failed")

	// ErrNoConfigFile indicates an operation needs a configuration file
	// but none was given.
	ErrNoConfigFile = errors.New("config: no configuration file")

	// ErrClosed indicates the configuration has been closed.
	ErrClosed = errors.New("config: closed")
)

// ParseError represents an error while parsing a configuration file.
type ParseError = loader.ParseError

// ValidationError describes a validation failure for a setting.
type ValidationError struct {
	// Path is the setting path that failed validation.
	Path string
	// Message describes the validation error.
	Message string
	// Value is the invalid value.
	Value any
	// Code categorizes the validation error.
	Code ValidationErrorCode
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Is reports whether target is ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// ValidationErrorCode categorizes validation errors.
type ValidationErrorCode uint8

const (
	// ErrCodeUnknownSetting indicates an unrecognized setting path.
	ErrCodeUnknownSetting ValidationErrorCode = iota
	// ErrCodeTypeMismatch indicates the value type is wrong.
	ErrCodeTypeMismatch
	// ErrCodeOutOfRange indicates a numeric value is out of range.
	ErrCodeOutOfRange
	// ErrCodeInvalidEnum indicates the value is not in the allowed enum.
	ErrCodeInvalidEnum
	// ErrCodePatternMismatch indicates the value doesn't match the required pattern.
	ErrCodePatternMismatch
	// ErrCodeRequiredMissing indicates a required setting is missing.
	ErrCodeRequiredMissing
)

// String returns a human-readable name for the error code.
func (c ValidationErrorCode) String() string {
	switch c {
	case ErrCodeUnknownSetting:
		return "unknown_setting"
	case ErrCodeTypeMismatch:
		return "type_mismatch"
	case ErrCodeOutOfRange:
		return "out_of_range"
	case ErrCodeInvalidEnum:
		return "invalid_enum"
	case ErrCodePatternMismatch:
		return "pattern_mismatch"
	case ErrCodeRequiredMissing:
		return "required_missing"
	default:
		return "unknown"
	}
}

// TypeError is returned when a typed accessor finds a value of another type.
type TypeError struct {
	// Path is the setting path.
	Path string
	// Expected is the expected type name.
	Expected string
	// Actual is the actual type name.
	Actual string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("config: type error for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// Is implements error matching for TypeError.
func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}

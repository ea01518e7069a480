// Package errors provides standardized error handling for the fitsview
// application. It defines common error types, constants, and helper functions
// for consistent error creation, wrapping, and handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// Common error constants for frequently occurring errors
var (
	ErrFileNotFound  = NewFileError("file not found", "", FileNotFound, nil)
	ErrFileAccess    = NewFileError("file access denied", "", FileAccessDenied, nil)
	ErrNotFITS       = NewFormatError("not a FITS file", "", 0, InvalidHeader, nil)
	ErrInvalidConfig = NewConfigError("invalid configuration", "", InvalidConfig, nil)
	ErrNoWCS         = NewWCSError("no celestial transform in header", MissingWCS, nil)
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	// Format error kinds
	InvalidHeader
	TruncatedData
	UnsupportedBitpix
	UnsupportedColumn
	ScaledMapping
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// WCS error kinds
	MissingWCS
	InvalidWCS
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// FormatError represents errors in the structure of a FITS container:
// malformed header cards, truncated data segments, unsupported encodings.
type FormatError struct {
	ApplicationError
	path string
	hdu  int
}

// NewFormatError creates a new format error scoped to an extension index
func NewFormatError(msg string, path string, hdu int, kind ErrorKind, err error) *FormatError {
	return &FormatError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
		hdu:  hdu,
	}
}

// Error returns the format error message
func (e *FormatError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s (HDU #%d): %v", e.msg, e.path, e.hdu, e.err)
		}
		return fmt.Sprintf("%s: %s (HDU #%d)", e.msg, e.path, e.hdu)
	}
	return e.ApplicationError.Error()
}

// HDU returns the extension index associated with the error
func (e *FormatError) HDU() int {
	return e.hdu
}

// Path returns the file path associated with the error
func (e *FormatError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// WCSError represents a missing or unusable world coordinate system. These
// are recoverable: callers fall back to raw pixel coordinates.
type WCSError struct {
	ApplicationError
}

// NewWCSError creates a new WCS error
func NewWCSError(msg string, kind ErrorKind, err error) *WCSError {
	return &WCSError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
	}
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileNotFound
	}
	return false
}

// IsScaledMapping checks if the error is the scaling-header conflict raised
// when BSCALE/BZERO/BLANK cards are hit while serving memory-mapped data
func IsScaledMapping(err error) bool {
	var fmtErr *FormatError
	if errors.As(err, &fmtErr) {
		return fmtErr.Kind() == ScaledMapping
	}
	return false
}

// IsFormatError checks if the error concerns the FITS container structure
func IsFormatError(err error) bool {
	var fmtErr *FormatError
	return errors.As(err, &fmtErr)
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// IsWCSUnavailable checks if the error means no usable WCS could be derived
// from a header
func IsWCSUnavailable(err error) bool {
	var wcsErr *WCSError
	if errors.As(err, &wcsErr) {
		return wcsErr.Kind() == MissingWCS || wcsErr.Kind() == InvalidWCS
	}
	return false
}

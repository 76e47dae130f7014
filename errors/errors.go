package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified bootstrapper error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Fatal indicates the bootstrap cannot continue.
	Fatal bool `json:"fatal"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with fatality derived from the code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Fatal:   IsFatalCode(code),
	}
}

// --- Discovery ---

// ResolutionTimeout creates an error for a lookup that exceeded its deadline.
func ResolutionTimeout(name string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeResolutionTimeout, Message: fmt.Sprintf("lookup of %s timed out", name),
		Details: map[string]any{"name": name}, Cause: cause,
	}
}

// NoAddress creates an error for a lookup whose answer had no usable address.
func NoAddress(name string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeNoAddress, Message: fmt.Sprintf("no address found for %s", name),
		Details: map[string]any{"name": name}, Cause: cause,
	}
}

// RegistryError creates an error for a failed service registry call.
func RegistryError(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeRegistry, Message: fmt.Sprintf("registry %s failed", operation),
		Details: map[string]any{"operation": operation}, Cause: cause,
	}
}

// HostResolutionFailed creates an error for a member whose address could not be resolved.
func HostResolutionFailed(host string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeHostResolution, Message: fmt.Sprintf("could not resolve address of host %s", host),
		Details: map[string]any{"host": host}, Cause: cause,
	}
}

// --- Bootstrap ---

// TemplateRead creates an error for an unreadable template file.
func TemplateRead(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTemplateRead, Message: fmt.Sprintf("failed to read template %s", path),
		Fatal: true, Details: map[string]any{"path": path}, Cause: cause,
	}
}

// MissingPlaceholder creates an error listing placeholders without a value.
func MissingPlaceholder(keys []string) *AppError {
	return &AppError{
		Code: ErrCodeMissingPlaceholder, Message: fmt.Sprintf("no value for placeholders: %s", strings.Join(keys, ", ")),
		Fatal: true, Details: map[string]any{"keys": keys},
	}
}

// ConfigWrite creates an error for a rendered config that could not be written.
func ConfigWrite(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConfigWrite, Message: fmt.Sprintf("failed to write config %s", path),
		Fatal: true, Details: map[string]any{"path": path}, Cause: cause,
	}
}

// Spawn creates an error for a broker process that could not be started.
func Spawn(binary string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSpawn, Message: fmt.Sprintf("failed to start %s", binary),
		Fatal: true, Details: map[string]any{"binary": binary}, Cause: cause,
	}
}

// InvalidConfig creates an error for invalid bootstrapper settings.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: message, Fatal: true,
	}
}

// --- Inspection ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsFatal reports whether err must abort the bootstrap.
// Errors that are not AppErrors are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	appErr, ok := AsAppError(err)
	if !ok {
		return true
	}
	return appErr.Fatal
}

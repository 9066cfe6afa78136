package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeStylesheet ErrorType = "stylesheet"
	ErrorTypeMarkup     ErrorType = "markup"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// PrerenderError is a structured error type with context.
type PrerenderError struct {
	Type      ErrorType
	Code      string
	Message   string
	Cause     error
	Context   map[string]interface{}
	Component string
	// Stack holds the goroutine stack captured when a template panicked.
	Stack []byte
}

// Error implements the error interface.
func (e *PrerenderError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *PrerenderError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *PrerenderError) Is(target error) bool {
	var t *PrerenderError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *PrerenderError) WithContext(key string, value interface{}) *PrerenderError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithComponent adds component context.
func (e *PrerenderError) WithComponent(component string) *PrerenderError {
	e.Component = component

	return e
}

// WithStack attaches a captured stack trace.
func (e *PrerenderError) WithStack(stack []byte) *PrerenderError {
	e.Stack = stack

	return e
}

// Error creation functions

// NewRenderError creates an error for a markup template that failed to evaluate.
func NewRenderError(component string, cause error) *PrerenderError {
	return &PrerenderError{
		Type:      ErrorTypeRender,
		Code:      ErrCodeRender,
		Message:   "template render failed",
		Cause:     cause,
		Component: component,
	}
}

// NewStylesheetError creates an error for CSS text rejected by the stylesheet parser.
func NewStylesheetError(component string, index int, cssText string, cause error) *PrerenderError {
	return (&PrerenderError{
		Type:      ErrorTypeStylesheet,
		Code:      ErrCodeStylesheetParse,
		Message:   fmt.Sprintf("stylesheet %d could not be parsed", index),
		Cause:     cause,
		Component: component,
	}).WithContext("css", cssText).WithContext("index", index)
}

// NewMarkupError creates an error for rendered markup the parser rejected.
func NewMarkupError(component string, cause error) *PrerenderError {
	return &PrerenderError{
		Type:      ErrorTypeMarkup,
		Code:      ErrCodeMarkupParse,
		Message:   "markup could not be parsed",
		Cause:     cause,
		Component: component,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *PrerenderError {
	return &PrerenderError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *PrerenderError {
	return &PrerenderError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *PrerenderError {
	return &PrerenderError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsRenderError checks if an error comes from template evaluation.
func IsRenderError(err error) bool {
	return HasErrorType(err, ErrorTypeRender)
}

// IsStylesheetError checks if an error comes from the stylesheet parser.
func IsStylesheetError(err error) bool {
	return HasErrorType(err, ErrorTypeStylesheet)
}

// IsValidationError checks if an error is a validation failure.
func IsValidationError(err error) bool {
	return HasErrorType(err, ErrorTypeValidation)
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs an error with fields derived from its taxonomy.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var pe *PrerenderError
	if !errors.As(err, &pe) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	switch pe.Type {
	case ErrorTypeValidation, ErrorTypeConfig:
		h.logger.Warn(ctx, err, "Validation error occurred",
			"type", pe.Type,
			"code", pe.Code,
			"component", pe.Component)
	default:
		h.logger.Error(ctx, err, "Render aborted",
			"type", pe.Type,
			"code", pe.Code,
			"component", pe.Component)
	}
}

// Common error codes.
const (
	ErrCodeRender            = "ERR_RENDER"
	ErrCodeStylesheetParse   = "ERR_STYLESHEET_PARSE"
	ErrCodeMarkupParse       = "ERR_MARKUP_PARSE"
	ErrCodeRootUnnamedSlot   = "ERR_ROOT_UNNAMED_SLOT"
	ErrCodeInvalidDescriptor = "ERR_INVALID_DESCRIPTOR"
	ErrCodeInvalidTagName    = "ERR_INVALID_TAG_NAME"
	ErrCodeMarkerCollision   = "ERR_MARKER_COLLISION"
	ErrCodeConfigInvalid     = "ERR_CONFIG_INVALID"
	ErrCodeInternalError     = "ERR_INTERNAL"
)

// Helper functions for common errors

// ErrRootUnnamedSlot reports a root expansion that asks for unnamed slot content.
func ErrRootUnnamedSlot(tagName string) *PrerenderError {
	return NewValidationError(
		ErrCodeRootUnnamedSlot,
		"root element cannot declare a top-level unnamed slot",
	).WithComponent(tagName)
}

// ErrInvalidTagName reports a custom tag name without a hyphen.
func ErrInvalidTagName(tagName string) *PrerenderError {
	return NewValidationError(
		ErrCodeInvalidTagName,
		"custom element names must contain a hyphen: "+tagName,
	)
}

// ErrInvalidDescriptor reports a descriptor that cannot be expanded.
func ErrInvalidDescriptor(message string) *PrerenderError {
	return NewValidationError(ErrCodeInvalidDescriptor, message)
}

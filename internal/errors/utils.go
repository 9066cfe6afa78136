package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating a PrerenderError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *PrerenderError {
	if err == nil {
		return nil
	}

	// If it's already a PrerenderError, preserve its properties but update the message
	var pe *PrerenderError
	if errors.As(err, &pe) {
		return &PrerenderError{
			Type:      errType,
			Code:      code,
			Message:   message,
			Cause:     pe,
			Context:   pe.Context,
			Component: pe.Component,
			Stack:     pe.Stack,
		}
	}

	return &PrerenderError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, message string) *PrerenderError {
	return Wrap(err, ErrorTypeConfig, ErrCodeConfigInvalid, message)
}

// AsPrerenderError returns the outermost PrerenderError in the chain.
func AsPrerenderError(err error) (*PrerenderError, bool) {
	var pe *PrerenderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// GetRootCause returns the innermost error of a chain.
func GetRootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// HasErrorCode checks whether any PrerenderError in the chain carries code.
func HasErrorCode(err error, code string) bool {
	for err != nil {
		var pe *PrerenderError
		if !errors.As(err, &pe) {
			return false
		}
		if pe.Code == code {
			return true
		}
		err = pe.Cause
	}
	return false
}

// HasErrorType checks whether any PrerenderError in the chain has the given type.
func HasErrorType(err error, errType ErrorType) bool {
	for err != nil {
		var pe *PrerenderError
		if !errors.As(err, &pe) {
			return false
		}
		if pe.Type == errType {
			return true
		}
		err = pe.Cause
	}
	return false
}

package common

import (
	"errors"
	"fmt"
)

// Code classifies a failure crossing the pipeline boundary.
type Code string

const (
	CodeModelFailure      Code = "MODEL_FAILURE"
	CodeMalformedResponse Code = "MALFORMED_RESPONSE"
	CodeTemplateMissing   Code = "TEMPLATE_MISSING"
	CodeRenderFailed      Code = "RENDER_FAILED"
	CodeInvalidInput      Code = "INVALID_INPUT"
	CodeInternal          Code = "INTERNAL"
)

// AppError represents application-specific errors.
// Detail carries diagnostics that must not be shown as the message itself:
// the raw model text for MALFORMED_RESPONSE, the template id for TEMPLATE_MISSING.
type AppError struct {
	Code    Code
	Message string
	Detail  string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(code Code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// ModelFailure wraps an error raised while calling the external model.
func ModelFailure(cause error) *AppError {
	msg := "model call failed"
	if cause != nil {
		msg = cause.Error()
	}
	return NewAppError(CodeModelFailure, msg, cause)
}

// MalformedResponse keeps the raw model text for diagnostics.
func MalformedResponse(raw string, cause error) *AppError {
	return NewAppError(CodeMalformedResponse, "model response is not valid extraction JSON", cause).WithDetail(raw)
}

func TemplateMissing(name string) *AppError {
	return NewAppError(CodeTemplateMissing, fmt.Sprintf("template %s not found", name), nil).WithDetail(name)
}

func RenderFailed(cause error) *AppError {
	return NewAppError(CodeRenderFailed, "failed to generate document", cause)
}

func InvalidInput(message string) *AppError {
	return NewAppError(CodeInvalidInput, message, nil)
}

// CodeOf returns the Code of the first AppError in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// DetailOf returns the Detail of the first AppError in err's chain.
func DetailOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Detail
	}
	return ""
}

// UserMessage is what a caller is shown: the AppError message, or a generic text.
func UserMessage(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal error"
}

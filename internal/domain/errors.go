package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"

	// Persistence errors
	CodeMalformed        ErrorCode = "MALFORMED"
	CodeAssetUnavailable ErrorCode = "ASSET_UNAVAILABLE"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_FAILED"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeDuplicateID   ErrorCode = "DUPLICATE_ID"

	// Account errors
	CodeDuplicateAccount   ErrorCode = "DUPLICATE_ACCOUNT"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"

	// Quiz session errors
	CodeNoCurrentQuestion ErrorCode = "NO_CURRENT_QUESTION"
	CodeQuizNotStarted    ErrorCode = "QUIZ_NOT_STARTED"
	CodeQuizNotFinished   ErrorCode = "QUIZ_NOT_FINISHED"
	CodeQuizNotPrepared   ErrorCode = "QUIZ_NOT_PREPARED"
	CodeEmptyBank         ErrorCode = "EMPTY_BANK"
	CodeSessionNotFound   ErrorCode = "SESSION_NOT_FOUND"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Context: e.Context,
	})
}

// WithContext attaches a key/value pair that is surfaced to clients as details.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Sentinel values usable with errors.Is; they match any DomainError of the same code.
var (
	ErrNotFound           = &DomainError{Code: CodeNotFound}
	ErrMalformed          = &DomainError{Code: CodeMalformed}
	ErrValidation         = &DomainError{Code: CodeValidation}
	ErrDuplicateAccount   = &DomainError{Code: CodeDuplicateAccount}
	ErrInvalidCredentials = &DomainError{Code: CodeInvalidCredentials}
	ErrNoCurrentQuestion  = &DomainError{Code: CodeNoCurrentQuestion}
	ErrQuizNotStarted     = &DomainError{Code: CodeQuizNotStarted}
	ErrQuizNotFinished    = &DomainError{Code: CodeQuizNotFinished}
	ErrQuizNotPrepared    = &DomainError{Code: CodeQuizNotPrepared}
	ErrEmptyBank          = &DomainError{Code: CodeEmptyBank}
	ErrSessionNotFound    = &DomainError{Code: CodeSessionNotFound}
)

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewMalformedError(message string, cause error) *DomainError {
	return NewError(CodeMalformed, message, cause)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(CodeForbidden, message, nil)
}

func NewDuplicateAccountError(username string) *DomainError {
	return NewError(CodeDuplicateAccount, "Username already exists", nil).WithContext("username", username)
}

func NewInvalidCredentialsError() *DomainError {
	return NewError(CodeInvalidCredentials, "Invalid username or password", nil)
}

func NewAssetUnavailableError(questionID, path string, cause error) *DomainError {
	return NewError(CodeAssetUnavailable,
		fmt.Sprintf("Failed to load image for question %s", questionID), cause).
		WithContext("question_id", questionID).
		WithContext("image_path", path)
}

func NewNoCurrentQuestionError() *DomainError {
	return NewError(CodeNoCurrentQuestion, "The quiz has no current question", nil)
}

func NewQuizNotStartedError() *DomainError {
	return NewError(CodeQuizNotStarted, "The quiz has not been started", nil)
}

func NewQuizNotFinishedError() *DomainError {
	return NewError(CodeQuizNotFinished, "The quiz is not finished yet", nil)
}

func NewQuizNotPreparedError() *DomainError {
	return NewError(CodeQuizNotPrepared, "No quiz has been prepared for this session", nil)
}

func NewEmptyBankError(source string) *DomainError {
	return NewError(CodeEmptyBank, fmt.Sprintf("No questions available in %s", source), nil).
		WithContext("source", source)
}

func NewSessionNotFoundError(sessionID string) *DomainError {
	return NewError(CodeSessionNotFound, "Player session not found", nil).
		WithContext("session_id", sessionID)
}

// FieldError describes one invalid field of a submitted record or request.
type FieldError struct {
	Code    ErrorCode `json:"code"`
	Field   string    `json:"field"`
	Message string    `json:"message"`
}

func (e FieldError) Error() string {
	return e.Message
}

// ValidationErrors is a list of field errors returned together.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Is lets errors.Is(err, ErrValidation) match a ValidationErrors value.
func (v ValidationErrors) Is(target error) bool {
	var t *DomainError
	return errors.As(target, &t) && t.Code == CodeValidation
}

func NewMissingFieldError(field string) FieldError {
	return FieldError{
		Code:    CodeMissingField,
		Field:   field,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewInvalidFormatError(field string, value interface{}) FieldError {
	return FieldError{
		Code:    CodeInvalidFormat,
		Field:   field,
		Message: fmt.Sprintf("%s has invalid value: %v", field, value),
	}
}

func NewDuplicateIDError(id string) FieldError {
	return FieldError{
		Code:    CodeDuplicateID,
		Field:   "id",
		Message: fmt.Sprintf("question id %s already exists", id),
	}
}

package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Domain Error Types
// ============================================================================

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so sentinel comparisons work for wrapped copies
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ============================================================================
// Common Domain Errors
// ============================================================================

var (
	// User Errors
	ErrUserNotFound = &DomainError{
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
	}
	ErrUsernameTaken = &DomainError{
		Code:    "USERNAME_TAKEN",
		Message: "name already taken",
	}
	ErrUnauthorized = &DomainError{
		Code:    "UNAUTHORIZED",
		Message: "not authorized",
	}

	// Conversation Errors
	ErrConversationNotFound = &DomainError{
		Code:    "CONVERSATION_NOT_FOUND",
		Message: "conversation not found",
	}
	ErrNotAGroup = &DomainError{
		Code:    "NOT_A_GROUP",
		Message: "not a group conversation",
	}
	ErrNotAMember = &DomainError{
		Code:    "NOT_A_MEMBER",
		Message: "not a member of the conversation",
	}
	ErrForbidden = &DomainError{
		Code:    "FORBIDDEN",
		Message: "forbidden",
	}

	// Message Errors
	ErrMessageNotFound = &DomainError{
		Code:    "MESSAGE_NOT_FOUND",
		Message: "message not found",
	}
	ErrCommentNotFound = &DomainError{
		Code:    "COMMENT_NOT_FOUND",
		Message: "comment not found",
	}

	// Validation Errors
	ErrValidationFailed = &DomainError{
		Code:    "VALIDATION_FAILED",
		Message: "validation failed",
	}

	// Infrastructure Errors
	ErrDatabaseOperation = &DomainError{
		Code:    "DATABASE_OPERATION_FAILED",
		Message: "database operation failed",
	}
	ErrFileSystem = &DomainError{
		Code:    "FILESYSTEM_ERROR",
		Message: "filesystem operation failed",
	}
)

// ============================================================================
// Error Wrapping Helpers
// ============================================================================

// WrapValidationError wraps an error as a validation failure on field
func WrapValidationError(field string, cause error) error {
	msg := fmt.Sprintf("validation failed for %s", field)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &DomainError{
		Code:    ErrValidationFailed.Code,
		Message: msg,
		Cause:   cause,
	}
}

// WrapDatabaseOperation wraps an error as a database operation failure
func WrapDatabaseOperation(operation string, cause error) error {
	return &DomainError{
		Code:    ErrDatabaseOperation.Code,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Cause:   cause,
	}
}

// WrapFileSystem wraps an error as a filesystem failure
func WrapFileSystem(operation string, cause error) error {
	return &DomainError{
		Code:    ErrFileSystem.Code,
		Message: fmt.Sprintf("filesystem operation failed: %s", operation),
		Cause:   cause,
	}
}

// WrapNotFound copies a not-found sentinel with the missing id in the message
func WrapNotFound(sentinel *DomainError, id any) error {
	return &DomainError{
		Code:    sentinel.Code,
		Message: fmt.Sprintf("%s: %v", sentinel.Message, id),
	}
}

// ============================================================================
// Error Checking Helpers
// ============================================================================

func hasCode(err error, codes ...string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	for _, c := range codes {
		if domainErr.Code == c {
			return true
		}
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return hasCode(err,
		ErrUserNotFound.Code,
		ErrConversationNotFound.Code,
		ErrMessageNotFound.Code,
		ErrCommentNotFound.Code,
	)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return hasCode(err,
		ErrValidationFailed.Code,
		ErrUsernameTaken.Code,
		ErrNotAGroup.Code,
	)
}

// IsForbiddenError checks if an error is an authorization failure on an existing resource
func IsForbiddenError(err error) bool {
	return hasCode(err, ErrForbidden.Code, ErrNotAMember.Code)
}

// IsUnauthorizedError checks if the caller could not be identified
func IsUnauthorizedError(err error) bool {
	return hasCode(err, ErrUnauthorized.Code)
}

// IsInfrastructureError checks if an error is an infrastructure error
func IsInfrastructureError(err error) bool {
	return hasCode(err, ErrDatabaseOperation.Code, ErrFileSystem.Code)
}

// PublicMessage returns the message safe to show to API callers
func PublicMessage(err error) string {
	var domainErr *DomainError
	if err == nil || !errors.As(err, &domainErr) {
		return "An error occurred"
	}
	if IsInfrastructureError(err) {
		return "internal error"
	}
	return domainErr.Message
}

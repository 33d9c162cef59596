package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// FieldError carries field-level detail for validation failures.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a typed domain error with HTTP awareness. The wrapped Err never
// reaches a response body; it is only logged.
type Error struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"-"`
	Fields  []FieldError `json:"fields,omitempty"`
	Err     error        `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Error codes used across the portal.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeAuthentication      = "AUTHENTICATION_ERROR"
	CodeAuthorization       = "AUTHORIZATION_ERROR"
	CodeForbiddenSelfAction = "FORBIDDEN_SELF_ACTION"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeResourceInUse       = "RESOURCE_IN_USE"
	CodeDependency          = "DEPENDENCY_ERROR"
)

// Validation reports malformed or out-of-range input.
func Validation(message string, fields ...FieldError) *Error {
	return &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: message, Fields: fields}
}

// Authentication reports a missing, invalid or expired credential.
func Authentication(message string) *Error {
	return &Error{Code: CodeAuthentication, Status: http.StatusUnauthorized, Message: message}
}

// Authorization reports an authenticated caller with insufficient privilege.
func Authorization(message string) *Error {
	return &Error{Code: CodeAuthorization, Status: http.StatusForbidden, Message: message}
}

// ForbiddenSelfAction reports an admin operating on their own account where
// that is explicitly disallowed (self delete, self role change).
func ForbiddenSelfAction(message string) *Error {
	return &Error{Code: CodeForbiddenSelfAction, Status: http.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Status: http.StatusNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Status: http.StatusConflict, Message: message}
}

// ResourceInUse reports a delete blocked by dependent state.
func ResourceInUse(message string) *Error {
	return &Error{Code: CodeResourceInUse, Status: http.StatusBadRequest, Message: message}
}

// Dependency reports an unreachable storage or external service. The outward
// message stays generic; the cause is kept only for logging.
func Dependency(err error) *Error {
	return &Error{Code: CodeDependency, Status: http.StatusInternalServerError, Message: "internal server error", Err: err}
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Dependency(err)
}

// FromValidation converts validator.v10 failures into a Validation error with
// per-field detail.
func FromValidation(err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Validation(err.Error())
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
		})
	}
	return Validation("request validation failed", fields...)
}

// IsCode reports whether err is an *Error carrying the given code.
func IsCode(err error, code string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

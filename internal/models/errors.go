package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures surfaced to API callers
type ErrorKind string

const (
	KindUnauthenticated         ErrorKind = "UNAUTHENTICATED"
	KindForbidden               ErrorKind = "FORBIDDEN"
	KindValidation              ErrorKind = "VALIDATION_ERROR"
	KindInvalidImageType        ErrorKind = "INVALID_IMAGE_TYPE"
	KindImageIngestionFailed    ErrorKind = "IMAGE_INGESTION_FAILED"
	KindAllergenDetectionFailed ErrorKind = "ALLERGEN_DETECTION_FAILED"
	KindNotFound                ErrorKind = "NOT_FOUND"
	KindInternal                ErrorKind = "INTERNAL_ERROR"
)

// AppError is an error with a kind that API layers map onto status codes
type AppError struct {
	Code    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Extensions exposes the error kind to GraphQL clients
func (e *AppError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(e.Code)}
}

// HTTPStatus maps the error kind onto an HTTP status code
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation, KindInvalidImageType:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindImageIngestionFailed, KindAllergenDetectionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func NewUnauthenticatedError() *AppError {
	return &AppError{Code: KindUnauthenticated, Message: "Unauthorized. Please log in."}
}

func NewForbiddenError() *AppError {
	return &AppError{Code: KindForbidden, Message: "Not authorized to make changes to this recipe"}
}

func NewValidationError(message string, err error) *AppError {
	return &AppError{Code: KindValidation, Message: message, Err: err}
}

func NewInvalidImageTypeError(message string) *AppError {
	return &AppError{Code: KindInvalidImageType, Message: message}
}

func NewImageIngestionError(err error) *AppError {
	return &AppError{Code: KindImageIngestionFailed, Message: "Image upload failed", Err: err}
}

func NewAllergenDetectionError(err error) *AppError {
	return &AppError{Code: KindAllergenDetectionFailed, Message: "Allergen detection failed", Err: err}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Code: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: KindInternal, Message: "Internal server error", Err: err}
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return KindInternal
}

// AsAppError returns err as an AppError, wrapping unknown errors as internal
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

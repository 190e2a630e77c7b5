// Package errors defines the service error type shared by all HTTP services.
package errors

import (
	"errors"
	"net/http"
)

// Category classifies a service error for HTTP status mapping and logging.
type Category int

const (
	// CategoryNoError marks the absence of an error.
	CategoryNoError Category = iota
	// CategoryDataError covers missing or malformed request data:
	// absent required fields, unknown status values, non-integer amounts.
	CategoryDataError
	// CategoryResourceNotFound covers lookups by id, request id, username or
	// transaction hash that match no record.
	CategoryResourceNotFound
	// CategoryDataConflict covers writes that would violate uniqueness or
	// re-apply a transition on a request already in a terminal state.
	CategoryDataConflict
	// CategoryDependencyFailure covers failures of an upstream service,
	// e.g. the rewards attribution API returning a non-2xx response.
	CategoryDependencyFailure
	// CategoryGeneralError covers unexpected internal failures, including
	// persistence errors.
	CategoryGeneralError
)

func (c Category) String() string {
	switch c {
	case CategoryDataError:
		return "CategoryDataError"
	case CategoryResourceNotFound:
		return "CategoryResourceNotFound"
	case CategoryDataConflict:
		return "CategoryDataConflict"
	case CategoryDependencyFailure:
		return "CategoryDependencyFailure"
	default:
		return "CategoryGeneralError"
	}
}

// ServiceError is the error type every service method returns for failures
// that have a caller-visible meaning. The Message is sent to the caller;
// the wrapped Err is only logged.
type ServiceError struct {
	Category Category
	Message  string
	Err      error
}

func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error.
func (err ServiceError) Unwrap() error {
	return err.Err
}

// Is checks that the provided error is a ServiceError with the given category.
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Category == cat {
		return true
	}
	return false
}

// StatusCode returns the HTTP status code for the error category.
func (err ServiceError) StatusCode() int {
	switch err.Category {
	case CategoryDataError:
		return http.StatusBadRequest
	case CategoryResourceNotFound:
		return http.StatusNotFound
	case CategoryDataConflict:
		return http.StatusConflict
	case CategoryDependencyFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// BadRequestError returns an error with category DataError.
// The message is returned to the caller, the wrapped error is logged.
func BadRequestError(err error, message string) error {
	if err == nil {
		err = errors.New("bad request: " + message)
	}
	return &ServiceError{
		Category: CategoryDataError,
		Message:  message,
		Err:      err,
	}
}

// ResourceNotFoundError returns an error with category ResourceNotFound.
func ResourceNotFoundError(err error, message string) error {
	if err == nil {
		err = errors.New("resource not found: " + message)
	}
	return &ServiceError{
		Category: CategoryResourceNotFound,
		Message:  message,
		Err:      err,
	}
}

// ConflictError returns an error with category DataConflict.
func ConflictError(err error, message string) error {
	if err == nil {
		err = errors.New("conflict: " + message)
	}
	return &ServiceError{
		Category: CategoryDataConflict,
		Message:  message,
		Err:      err,
	}
}

// UpstreamError returns an error with category DependencyFailure.
func UpstreamError(err error, message string) error {
	if err == nil {
		err = errors.New("upstream failure: " + message)
	}
	return &ServiceError{
		Category: CategoryDependencyFailure,
		Message:  message,
		Err:      err,
	}
}

// GeneralError returns an internal error. The caller-visible message is
// always "Internal Server Error"; the wrapped error is logged.
func GeneralError(err error) error {
	if err == nil {
		err = errors.New("internal server error")
	}
	return &ServiceError{
		Category: CategoryGeneralError,
		Message:  "Internal Server Error",
		Err:      err,
	}
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrPartitionUnavailable = errors.New("partition unavailable")
	ErrTableMissing         = errors.New("auxiliary table missing")
	ErrContractViolation    = errors.New("upstream contract violation")
	ErrInvalidInput         = errors.New("invalid input")
	ErrBusy                 = errors.New("pre-ranker busy")
	ErrInternal             = errors.New("internal error")
	ErrTimeout              = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// IsDegradable reports whether err describes missing auxiliary data that the
// pipeline replaces with neutral defaults instead of failing.
func IsDegradable(err error) bool {
	return errors.Is(err, ErrPartitionUnavailable) || errors.Is(err, ErrTableMissing)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrContractViolation):
		return http.StatusBadRequest
	case errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.Is(err, ErrPartitionUnavailable), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTableMissing):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

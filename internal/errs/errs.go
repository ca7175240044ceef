// Package errs holds the user-facing error taxonomy. Every error a handler can
// show to a shopper is an AppError; anything else is reported as a generic failure.
package errs

import (
	"net/http"

	"github.com/pkg/errors"
)

// AppError is an error that knows how it should be surfaced.
type AppError interface {
	error
	HTTPCode() int
	ErrorCode() string
	Message() string
}

type BaseError struct {
	httpCode int
	code     string
	message  string
}

func New(httpCode int, code, message string) *BaseError {
	return &BaseError{httpCode: httpCode, code: code, message: message}
}

func (e *BaseError) Error() string     { return e.message }
func (e *BaseError) HTTPCode() int     { return e.httpCode }
func (e *BaseError) ErrorCode() string { return e.code }
func (e *BaseError) Message() string   { return e.message }

// Validation builds a 400 error for a rejected form field.
func Validation(message string) *BaseError {
	return New(http.StatusBadRequest, "validation", message)
}

var (
	ErrUnauthorized = New(http.StatusUnauthorized, "unauthorized", "Sessão expirada ou acesso negado. Faça login novamente.")
	ErrForbidden    = New(http.StatusForbidden, "forbidden", "Acesso negado.")
	ErrNotFound     = New(http.StatusNotFound, "not_found", "Recurso não encontrado.")
	ErrUpstream     = New(http.StatusBadGateway, "upstream", "Não foi possível conectar ao servidor.")
	ErrInternal     = New(http.StatusInternalServerError, "internal", "Algo deu errado. Tente novamente.")
)

// From extracts the AppError carried by err. Errors outside the taxonomy map
// to ErrInternal and ok is false.
func From(err error) (ae AppError, ok bool) {
	if err == nil {
		return nil, false
	}
	if errors.As(err, &ae) {
		return ae, true
	}
	return ErrInternal, false
}

// Is reports whether err carries target anywhere in its chain.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

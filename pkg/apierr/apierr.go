// Package apierr carries one error type across the HTTP boundary. Handlers
// classify failures by kind; the boundary maps the kind to a status code and
// keeps the {"success": false, "error": ...} body shape.
package apierr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Kind int

const (
	KindAuth Kind = iota
	KindValidation
	KindNotFound
	KindStorage
)

func (k Kind) Status() int {
	switch k {
	case KindAuth:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Storage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// Respond writes err as JSON and the status code its kind maps to. Wrapped
// causes stay server-side; the client only sees the message.
func Respond(c *gin.Context, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Storage("server error", err)
	}
	c.JSON(apiErr.Kind.Status(), gin.H{
		"success": false,
		"error":   apiErr.Message,
	})
}

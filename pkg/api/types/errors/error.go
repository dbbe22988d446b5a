package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
)

// ErrorMessage is the body of error responses.
type ErrorMessage struct {
	Reason string `json:"reason"`
	Advice string `json:"advice,omitempty"`

	// Cause is kept in the server side.
	Cause error `json:"-"`
}

func (em *ErrorMessage) UnmarshalJSON(b []byte) error {
	var f struct {
		Reason *string `json:"reason"`
		Advice string  `json:"advice"`
	}
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	if f.Reason == nil {
		return fmt.Errorf(`required field missing: "reason"`)
	}
	*em = ErrorMessage{Reason: *f.Reason, Advice: f.Advice}
	return nil
}

func (e ErrorMessage) Error() string {
	lines := []string{e.Reason}
	if e.Advice != "" {
		lines = append(lines, e.Advice)
	}
	if e.Cause != nil {
		lines = append(lines, " caused by: "+e.Cause.Error())
	}
	return strings.Join(lines, "\n")
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}

type Option func(*ErrorMessage)

func WithAdvice(advice string) Option {
	return func(em *ErrorMessage) { em.Advice = advice }
}

func WithError(err error) Option {
	return func(em *ErrorMessage) { em.Cause = err }
}

func NewErrorMessage(code int, reason string, opts ...Option) *echo.HTTPError {
	msg := ErrorMessage{Reason: reason}
	for _, opt := range opts {
		opt(&msg)
	}
	return echo.NewHTTPError(code, msg).SetInternal(msg)
}

func BadRequest(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusBadRequest, "bad request", WithAdvice(advice), WithError(err))
}

func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusInternalServerError, "unexpected error", WithError(err))
}

// FromDomain converts errors of catalog operations to responses.
func FromDomain(err error) *echo.HTTPError {
	respond := func(code int, reason string) *echo.HTTPError {
		return NewErrorMessage(code, reason, WithAdvice(err.Error()), WithError(err))
	}

	switch {
	case errors.Is(err, domerr.ErrValidation), errors.Is(err, domerr.ErrMissingPartitionKey):
		return BadRequest(err.Error(), err)
	case errors.Is(err, domerr.ErrMissing), errors.Is(err, domerr.ErrUnknownGroup):
		return respond(http.StatusNotFound, "not found")
	case errors.Is(err, domerr.ErrAlreadyExists):
		return respond(http.StatusConflict, "already exists")
	case errors.Is(err, domerr.ErrInvalidTransition):
		return respond(http.StatusConflict, "invalid status transition")
	case errors.Is(err, domerr.ErrCyclicLineage):
		return respond(http.StatusConflict, "cyclic lineage")
	case errors.Is(err, domerr.ErrDuplicateVersion):
		return NewErrorMessage(
			http.StatusServiceUnavailable, "service unavailable temporarily",
			WithAdvice("registrations of the same partition are racing. retry later."), WithError(err),
		)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewErrorMessage(
			http.StatusServiceUnavailable, "service unavailable temporarily",
			WithAdvice("request is canceled or timed out."), WithError(err),
		)
	default:
		return InternalServerError(err)
	}
}

// Package apperr defines the error taxonomy shared across the mesh and its
// RFC 7807 problem-details rendering at the HTTP edge, re-expressing the
// per-domain error enums the original implementation scattered across
// errors/app.rs, errors/database.rs, errors/auth.rs, and errors/s3.rs as a
// single Go error type with a status code attached.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind identifies the category of failure, independent of which backend
// produced it.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindUpstream     Kind = "upstream_unavailable"
	KindInternal     Kind = "internal"
)

// httpStatus maps each Kind to the status code its problem-details document
// carries.
var httpStatus = map[Kind]int{
	KindNotFound:     http.StatusNotFound,
	KindValidation:   http.StatusBadRequest,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
	KindConflict:     http.StatusConflict,
	KindUpstream:     http.StatusBadGateway,
	KindInternal:     http.StatusInternalServerError,
}

// grpcCode maps each Kind to the gRPC status code a message-contract server
// returns for the same failure.
var grpcCode = map[Kind]codes.Code{
	KindNotFound:     codes.NotFound,
	KindValidation:   codes.InvalidArgument,
	KindUnauthorized: codes.Unauthenticated,
	KindForbidden:    codes.PermissionDenied,
	KindConflict:     codes.AlreadyExists,
	KindUpstream:     codes.Unavailable,
	KindInternal:     codes.Internal,
}

// Error is the mesh-wide application error type. It wraps an underlying
// cause while attaching a Kind that downstream transports use to pick a
// status code.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// HTTPStatus returns the status code err should be rendered with, defaulting
// to 500 for errors not constructed via this package.
func HTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		if status, ok := httpStatus[appErr.Kind]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// GRPCCode returns the gRPC status code err should be rendered with,
// defaulting to Internal for errors not constructed via this package.
func GRPCCode(err error) codes.Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		if code, ok := grpcCode[appErr.Kind]; ok {
			return code
		}
	}
	return codes.Internal
}

// Problem is an RFC 7807 problem-details document.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	TraceID  string `json:"traceId,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// ToProblem renders err as a Problem document, stamping traceID (from the
// active span, see the tracing package) so operators can correlate a
// returned error with the trace that produced it.
func ToProblem(err error, instance, traceID string) Problem {
	status := HTTPStatus(err)
	title := http.StatusText(status)

	detail := err.Error()
	var appErr *Error
	if errors.As(err, &appErr) {
		detail = appErr.Message
	}

	return Problem{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		TraceID:  traceID,
		Instance: instance,
	}
}

// IsNotFound reports whether err (or any error it wraps) is a KindNotFound
// application error.
func IsNotFound(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == KindNotFound
}

// FromDownstream maps the error returned by a critical leg of a fan-out
// composition to the mesh-wide taxonomy, per the downstream-RPC-code-to-HTTP
// table: invalid-argument/already-exists/unknown map to validation,
// not-found maps to not-found, unavailable/deadline-exceeded map to
// upstream (502), and everything else maps to internal.
func FromDownstream(service string, err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return Wrap(KindInternal, fmt.Sprintf("%s unavailable", service), err)
	}
	switch st.Code() {
	case codes.InvalidArgument, codes.AlreadyExists, codes.Unknown:
		return Wrap(KindValidation, st.Message(), err)
	case codes.NotFound:
		return Wrap(KindNotFound, st.Message(), err)
	case codes.Unavailable, codes.DeadlineExceeded:
		return Wrap(KindUpstream, fmt.Sprintf("%s unavailable", service), err)
	default:
		return Wrap(KindInternal, fmt.Sprintf("%s failed", service), err)
	}
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hashicorp-forge/docgate/internal/server"
	"github.com/hashicorp-forge/docgate/pkg/backend"
)

// ErrorKind classifies a failure surfaced to the caller.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindUnauthorized
	KindValidation
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k ErrorKind) Status() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// genericInternalDetail replaces internal error details outside debug mode.
const genericInternalDetail = "An unexpected error occurred"

// Error is a gateway error carrying the caller-facing message.
type Error struct {
	Kind    ErrorKind
	Message string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func validationError(err error) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "Invalid request",
		Detail:  err.Error(),
		Err:     err,
	}
}

func notFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func internalError(msg string, err error) *Error {
	e := &Error{Kind: KindInternal, Message: msg, Err: err}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

// classifyBackendError maps a backing store failure onto an error kind. The
// mapping depends only on the error chain.
func classifyBackendError(op string, err error) *Error {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, backend.ErrNotFound):
		// The backend error names the scoped storage key; it is logged, not returned.
		e := notFound("Resource not found")
		e.Err = err
		return e
	case errors.Is(err, backend.ErrInvalidArgument):
		return validationError(err)
	case errors.Is(err, backend.ErrUnauthorized):
		return &Error{
			Kind:    KindUnauthorized,
			Message: "Credential rejected",
			Err:     err,
		}
	default:
		return internalError("Failed to "+op, err)
	}
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// respondError writes err as a JSON error body. Internal details are only
// exposed when the server runs in debug mode.
func respondError(w http.ResponseWriter, r *http.Request, srv server.Server, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = internalError("Internal server error", err)
	}

	body := errorBody{Error: e.Message, Detail: e.Detail}
	if e.Kind == KindNotFound && e.Err != nil {
		srv.Logger.Debug(e.Message,
			"error", e.Err,
			"path", r.URL.Path,
			"method", r.Method,
		)
	}
	if e.Kind == KindInternal {
		srv.Logger.Error(e.Message,
			"error", e.Err,
			"path", r.URL.Path,
			"method", r.Method,
		)
		if srv.Config == nil || !srv.Config.Debug() {
			body.Detail = genericInternalDetail
		}
	}

	respondJSON(w, e.Kind.Status(), body)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

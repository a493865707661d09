package types

import (
	"errors"
	"net/http"
)

// ListResponse is the wire envelope for a collection listing.
type ListResponse[E any] struct {
	Items []E `json:"items"`
	Total int `json:"total"`
}

// ProblemDetail is an RFC 9457 problem details body.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// RemoteError is a failure reported by a remote collection service.
// Message is the human-readable text the service returned.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return "remote error"
}

// Is maps the HTTP status onto this package's sentinel errors so callers can
// use errors.Is without inspecting status codes.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrInvalidData:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case ErrConflict:
		return e.Status == http.StatusConflict || e.Status == http.StatusPreconditionFailed
	case ErrUnavailable:
		return e.Status >= http.StatusInternalServerError
	}
	return false
}

// ProblemFromError builds the problem details a service returns for err.
func ProblemFromError(err error) ProblemDetail {
	status := StatusFromError(err)
	return ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: err.Error(),
	}
}

// StatusFromError maps a sentinel error chain onto an HTTP status.
func StatusFromError(err error) int {
	var remote *RemoteError
	switch {
	case errors.As(err, &remote) && remote.Status != 0:
		return remote.Status
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidData), errors.Is(err, ErrInvalidID):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrBackendDetached):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

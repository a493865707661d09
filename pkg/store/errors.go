package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/mesh-intelligence/concierge/pkg/types"
)

// Op names a store operation.
type Op string

// Store operations.
const (
	OpFetch  Op = "fetch"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Kind classifies a failure for programmatic handling. The UI only ever needs
// the message; Kind lets callers branch without parsing it.
type Kind int

// Failure kinds.
const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalid
	KindConflict
	KindUnavailable
	KindCanceled
)

var kindNames = map[Kind]string{
	KindUnknown:     "unknown",
	KindNotFound:    "not_found",
	KindInvalid:     "invalid",
	KindConflict:    "conflict",
	KindUnavailable: "unavailable",
	KindCanceled:    "canceled",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the failure recorded in State.Err after an operation fails.
// Message is the display text: the remote's message, or a fixed fallback
// such as "Failed to fetch residents" when the remote gave none.
type Error struct {
	Op      Op
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// newError converts a remote failure into the store's error slot value.
func newError(name types.CollectionName, op Op, err error) *Error {
	msg := messageOf(err)
	if msg == "" {
		msg = fallbackMessage(name, op)
	}
	return &Error{
		Op:      op,
		Kind:    classify(err),
		Message: msg,
		Err:     err,
	}
}

// fallbackMessage is used when the remote error carries no text.
func fallbackMessage(name types.CollectionName, op Op) string {
	if op == OpFetch {
		return fmt.Sprintf("Failed to fetch %s", name.Plural)
	}
	return fmt.Sprintf("Failed to %s %s", op, name.Singular)
}

func messageOf(err error) string {
	if err == nil {
		return ""
	}
	var remote *types.RemoteError
	if errors.As(err, &remote) && strings.TrimSpace(remote.Message) != "" {
		return strings.TrimSpace(remote.Message)
	}
	return strings.TrimSpace(err.Error())
}

func classify(err error) Kind {
	var netErr net.Error
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, types.ErrNotFound):
		return KindNotFound
	case errors.Is(err, types.ErrInvalidData), errors.Is(err, types.ErrInvalidID):
		return KindInvalid
	case errors.Is(err, types.ErrConflict):
		return KindConflict
	case errors.Is(err, types.ErrUnavailable), errors.Is(err, types.ErrBackendDetached):
		return KindUnavailable
	case errors.As(err, &netErr):
		return KindUnavailable
	default:
		return KindUnknown
	}
}

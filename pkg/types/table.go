package types

import (
	"context"
	"errors"
	"time"
)

// Entity is a record of a managed collection. Identity is the
// server-assigned ID.
type Entity interface {
	EntityID() string
}

// Collection is the remote service boundary for one entity type. E is the
// entity, C the creation payload and U the partial-update payload.
//
// Implementations report failures with an error whose message is fit for
// display. Callers must not assume any particular error type beyond the
// sentinels below and *RemoteError.
type Collection[E, C, U any] interface {
	// List returns the authoritative collection in server order.
	List(ctx context.Context) ([]E, error)

	// Create asks the service to create a new entity. The service assigns
	// the ID and creation timestamp.
	Create(ctx context.Context, payload C) error

	// Update applies a partial update to the entity with the given ID.
	// Returns ErrNotFound if the service has no such entity.
	Update(ctx context.Context, id string, payload U) error

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if the service has no such entity.
	Delete(ctx context.Context, id string) error
}

// Creator builds a new entity from a creation payload. Backends call New with
// the identifier and timestamp they assigned; New validates the payload and
// applies server-side defaults.
type Creator[E any] interface {
	New(id string, createdAt time.Time) (E, error)
}

// Patcher applies a partial update to an existing entity, validating the
// result.
type Patcher[E any] interface {
	ApplyTo(entity *E) error
}

// Collection operation errors.
var (
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidID       = errors.New("invalid entity ID")
	ErrInvalidData     = errors.New("invalid entity data")
	ErrConflict        = errors.New("entity conflict")
	ErrUnavailable     = errors.New("service unavailable")
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

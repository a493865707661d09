package store

import "time"

// Observer receives a callback for every resolved remote call. Implementations
// collect metrics or audit trails; they must be safe for concurrent use.
type Observer interface {
	// OnSuccess is called after a remote call succeeds. count is the size of
	// the listed collection for OpFetch and zero otherwise.
	OnSuccess(collection string, op Op, count int, duration time.Duration)

	// OnError is called after a remote call fails.
	OnError(collection string, op Op, kind Kind, duration time.Duration)
}

// NoopObserver discards all callbacks.
type NoopObserver struct{}

func (NoopObserver) OnSuccess(collection string, op Op, count int, duration time.Duration) {}
func (NoopObserver) OnError(collection string, op Op, kind Kind, duration time.Duration)   {}

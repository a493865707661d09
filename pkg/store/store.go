// Package store implements the client-side cache of a server-owned
// collection. A Store holds the last fetched snapshot, a busy indicator and
// the last failure, and keeps the snapshot consistent with the server by
// re-fetching the whole collection after every successful write.
package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/mesh-intelligence/concierge/pkg/types"
)

// State is a read-only copy of a store's observable fields.
type State[E any] struct {
	Collection []E
	IsLoading  bool
	Err        *Error
}

// ErrorMessage returns the display text of Err, or "" when there is none.
func (s State[E]) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Message
}

// Store caches one remote collection. E is the entity type, C the creation
// payload and U the partial-update payload.
//
// Operations never return errors: failures are recorded in State().Err and
// stay there until ClearError or the next operation starts.
type Store[E, C, U any] struct {
	name     types.CollectionName
	remote   types.Collection[E, C, U]
	logger   zerolog.Logger
	observer Observer
	queue    *semaphore.Weighted // nil unless WithSerialOps

	mu         sync.Mutex
	collection []E
	inflight   int
	err        *Error
	version    uint64 // bumped on every state transition
	subs       map[int]*listener[E]
	nextSub    int
}

// listener remembers the newest state version it was handed so a delivery
// overtaken by a later one is dropped.
type listener[E any] struct {
	fn        func(State[E])
	delivered atomic.Uint64
}

// deliver calls fn unless a state at least as new was already delivered.
func (l *listener[E]) deliver(version uint64, state State[E]) {
	for {
		seen := l.delivered.Load()
		if version <= seen {
			return
		}
		if l.delivered.CompareAndSwap(seen, version) {
			break
		}
	}
	l.fn(state)
}

// New creates an idle store with an empty snapshot.
func New[E, C, U any](name types.CollectionName, remote types.Collection[E, C, U], opts ...Option) *Store[E, C, U] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Store[E, C, U]{
		name:       name,
		remote:     remote,
		logger:     o.logger.With().Str("component", "store").Str("collection", name.Plural).Logger(),
		observer:   o.observer,
		collection: []E{},
		subs:       make(map[int]*listener[E]),
	}
	if o.serial {
		s.queue = semaphore.NewWeighted(1)
	}
	return s
}

// Name returns the collection this store caches.
func (s *Store[E, C, U]) Name() types.CollectionName { return s.name }

// State returns a copy of the current state.
func (s *Store[E, C, U]) State() State[E] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive a state copy after every transition.
// fn runs on the goroutine that caused the transition with no store lock
// held, so it may call store operations such as ClearError. States arrive in
// transition order; a state overtaken by a newer one is skipped. Listeners
// share the delivered Collection slice and must not modify it. The returned
// function unsubscribes.
func (s *Store[E, C, U]) Subscribe(fn func(State[E])) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = &listener[E]{fn: fn}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Fetch replaces the snapshot with the remote's current list.
func (s *Store[E, C, U]) Fetch(ctx context.Context) {
	if !s.begin(ctx, OpFetch) {
		return
	}
	defer s.release()
	s.refresh(ctx)
}

// Create asks the remote to create an entity, then re-fetches. The created
// entity only appears once the re-fetch returns it.
func (s *Store[E, C, U]) Create(ctx context.Context, payload C) {
	s.mutate(ctx, OpCreate, "", func(ctx context.Context) error {
		return s.remote.Create(ctx, payload)
	})
}

// Update applies a partial update remotely, then re-fetches. Existence of id
// is left to the remote to decide.
func (s *Store[E, C, U]) Update(ctx context.Context, id string, payload U) {
	s.mutate(ctx, OpUpdate, id, func(ctx context.Context) error {
		return s.remote.Update(ctx, id, payload)
	})
}

// Delete removes an entity remotely, then re-fetches.
func (s *Store[E, C, U]) Delete(ctx context.Context, id string) {
	s.mutate(ctx, OpDelete, id, func(ctx context.Context) error {
		return s.remote.Delete(ctx, id)
	})
}

// ClearError dismisses the recorded failure. Collection and busy state are
// left as they are.
func (s *Store[E, C, U]) ClearError() {
	s.mu.Lock()
	changed := s.err != nil
	s.err = nil
	if changed {
		s.version++
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (s *Store[E, C, U]) mutate(ctx context.Context, op Op, id string, call func(context.Context) error) {
	if !s.begin(ctx, op) {
		return
	}
	defer s.release()

	start := time.Now()
	if err := s.guarded(func() error { return call(ctx) }); err != nil {
		s.fail(op, err, start)
		return
	}
	s.observer.OnSuccess(s.name.Plural, op, 0, time.Since(start))
	s.logger.Debug().Str("op", string(op)).Str("id", id).Msg("remote write succeeded, re-fetching")

	s.refresh(ctx)
}

// begin marks the store busy and clears the previous error. With serial ops
// it then waits for the queue; a context cancelled while waiting fails the
// operation.
func (s *Store[E, C, U]) begin(ctx context.Context, op Op) bool {
	s.mu.Lock()
	s.inflight++
	s.err = nil
	s.version++
	s.mu.Unlock()
	s.notify()
	s.logger.Debug().Str("op", string(op)).Msg("operation started")

	if s.queue == nil {
		return true
	}
	start := time.Now()
	if err := s.queue.Acquire(ctx, 1); err != nil {
		s.fail(op, err, start)
		return false
	}
	return true
}

func (s *Store[E, C, U]) release() {
	if s.queue != nil {
		s.queue.Release(1)
	}
}

// guarded runs a remote call. If the call panics the operation is ended
// before the panic continues, so the store does not stay busy.
func (s *Store[E, C, U]) guarded(call func() error) error {
	defer s.settleOnPanic()
	return call()
}

func (s *Store[E, C, U]) settleOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	s.mu.Lock()
	s.inflight--
	s.version++
	s.mu.Unlock()
	s.notify()
	s.logger.Error().Interface("panic", r).Msg("remote call panicked")
	panic(r)
}

// refresh lists the remote collection and ends the operation.
func (s *Store[E, C, U]) refresh(ctx context.Context) {
	start := time.Now()
	var items []E
	err := s.guarded(func() error {
		var err error
		items, err = s.remote.List(ctx)
		return err
	})
	if err != nil {
		s.fail(OpFetch, err, start)
		return
	}
	s.observer.OnSuccess(s.name.Plural, OpFetch, len(items), time.Since(start))

	next := make([]E, len(items))
	copy(next, items)

	s.mu.Lock()
	s.collection = next
	s.err = nil
	s.inflight--
	s.version++
	s.mu.Unlock()
	s.notify()

	s.logger.Debug().Int("count", len(next)).Msg("collection refreshed")
}

// fail records err and ends the operation. The snapshot is not touched.
func (s *Store[E, C, U]) fail(op Op, err error, start time.Time) {
	e := newError(s.name, op, err)
	s.observer.OnError(s.name.Plural, op, e.Kind, time.Since(start))

	s.mu.Lock()
	s.err = e
	s.inflight--
	s.version++
	s.mu.Unlock()
	s.notify()

	s.logger.Warn().Err(err).Str("op", string(op)).Str("kind", e.Kind.String()).Msg(e.Message)
}

// notify hands the current state to every listener. The snapshot and its
// version are taken together under s.mu; listeners run with no lock held.
func (s *Store[E, C, U]) notify() {
	s.mu.Lock()
	if len(s.subs) == 0 {
		s.mu.Unlock()
		return
	}
	version := s.version
	state := s.snapshotLocked()
	ls := make([]*listener[E], 0, len(s.subs))
	for _, l := range s.subs {
		ls = append(ls, l)
	}
	s.mu.Unlock()

	for _, l := range ls {
		l.deliver(version, state)
	}
}

// snapshotLocked copies the observable state. The caller must hold s.mu.
func (s *Store[E, C, U]) snapshotLocked() State[E] {
	c := make([]E, len(s.collection))
	copy(c, s.collection)
	return State[E]{
		Collection: c,
		IsLoading:  s.inflight > 0,
		Err:        s.err,
	}
}

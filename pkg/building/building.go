// Package building wires one resource store per managed collection of the
// building app. Stores are independent: they share a backend but never each
// other's state.
package building

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/concierge/pkg/store"
	"github.com/mesh-intelligence/concierge/pkg/types"
)

// Remote collection types for each managed entity.
type (
	ResidentCollection     = types.Collection[types.Resident, types.CreateResidentRequest, types.UpdateResidentRequest]
	PackageCollection      = types.Collection[types.Package, types.CreatePackageRequest, types.UpdatePackageRequest]
	NotificationCollection = types.Collection[types.Notification, types.CreateNotificationRequest, types.UpdateNotificationRequest]
	PostCollection         = types.Collection[types.Post, types.CreatePostRequest, types.UpdatePostRequest]
)

// Store types for each managed entity.
type (
	ResidentStore     = store.Store[types.Resident, types.CreateResidentRequest, types.UpdateResidentRequest]
	PackageStore      = store.Store[types.Package, types.CreatePackageRequest, types.UpdatePackageRequest]
	NotificationStore = store.Store[types.Notification, types.CreateNotificationRequest, types.UpdateNotificationRequest]
	PostStore         = store.Store[types.Post, types.CreatePostRequest, types.UpdatePostRequest]
)

// Backend provides the remote collections. Both the HTTP client and the
// local sqlite backend satisfy it.
type Backend interface {
	Residents() ResidentCollection
	Packages() PackageCollection
	Notifications() NotificationCollection
	Posts() PostCollection
}

// Stores holds one store per collection.
type Stores struct {
	Residents     *ResidentStore
	Packages      *PackageStore
	Notifications *NotificationStore
	Posts         *PostStore
}

// NewStores builds a store for every collection of b. opts apply to each
// store.
func NewStores(b Backend, opts ...store.Option) *Stores {
	return &Stores{
		Residents:     store.New(types.ResidentsCollection, b.Residents(), opts...),
		Packages:      store.New(types.PackagesCollection, b.Packages(), opts...),
		Notifications: store.New(types.NotificationsCollection, b.Notifications(), opts...),
		Posts:         store.New(types.PostsCollection, b.Posts(), opts...),
	}
}

// FetchAll refreshes every store concurrently and waits for all of them.
// Each store keeps its own error; FetchAll also returns them joined so a
// caller that only wants a yes/no answer need not inspect four states.
func (s *Stores) FetchAll(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return fetch(ctx, s.Residents) })
	g.Go(func() error { return fetch(ctx, s.Packages) })
	g.Go(func() error { return fetch(ctx, s.Notifications) })
	g.Go(func() error { return fetch(ctx, s.Posts) })
	if err := g.Wait(); err != nil {
		return errors.Join(s.Errors()...)
	}
	return nil
}

// Errors returns the recorded failure of every store that has one.
func (s *Stores) Errors() []error {
	var errs []error
	for _, e := range []*store.Error{
		s.Residents.State().Err,
		s.Packages.State().Err,
		s.Notifications.State().Err,
		s.Posts.State().Err,
	} {
		if e != nil {
			errs = append(errs, e)
		}
	}
	return errs
}

func fetch[E, C, U any](ctx context.Context, st *store.Store[E, C, U]) error {
	st.Fetch(ctx)
	if e := st.State().Err; e != nil {
		return e
	}
	return nil
}

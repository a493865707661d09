package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/concierge/internal/logging"
	"github.com/mesh-intelligence/concierge/internal/sqlite"
	"github.com/mesh-intelligence/concierge/pkg/building"
	"github.com/mesh-intelligence/concierge/pkg/client"
	"github.com/mesh-intelligence/concierge/pkg/store"
	"github.com/mesh-intelligence/concierge/pkg/types"
)

// session is one invocation's view of the building: the resolved settings,
// a logger and one store per collection over the configured backend.
type session struct {
	settings settings
	logger   zerolog.Logger
	stores   *building.Stores
	close    func() error
}

// openSession resolves configuration, connects the backend and builds the
// stores. extra options are applied to every store after the defaults. The
// caller must call close.
func openSession(cmd *cobra.Command, f *rootFlags, extra ...store.Option) (*session, error) {
	s, err := loadSettings(cmd, f)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		Level:  s.LogLevel,
		Format: s.LogFormat,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, usageError{err}
	}

	var backend building.Backend
	closeFn := func() error { return nil }
	switch s.Config.Backend {
	case types.BackendSQLite:
		b := sqlite.NewBackend()
		if err := b.Attach(s.Config); err != nil {
			return nil, fmt.Errorf("attach backend: %w", err)
		}
		backend, closeFn = b, b.Detach
	case types.BackendHTTP:
		c, err := client.NewFromConfig(s.Config)
		if err != nil {
			return nil, fmt.Errorf("create client: %w", err)
		}
		backend = c
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrBackendUnknown, s.Config.Backend)
	}
	logger.Debug().Str("backend", s.Config.Backend).Str("data_dir", s.Config.DataDir).Msg("session opened")

	opts := []store.Option{store.WithLogger(logger)}
	if f.serial {
		opts = append(opts, store.WithSerialOps())
	}
	opts = append(opts, extra...)

	return &session{
		settings: s,
		logger:   logger,
		stores:   building.NewStores(backend, opts...),
		close:    closeFn,
	}, nil
}

// withTimeout bounds a one-shot command by the configured timeout.
func (s *session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.settings.Config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.settings.Config.Timeout)
}

// binding returns the operations of the named collection.
func (s *session) binding(name types.CollectionName) (collectionOps, error) {
	switch name {
	case types.ResidentsCollection:
		return residentBinding(s.stores.Residents), nil
	case types.PackagesCollection:
		return packageBinding(s.stores.Packages), nil
	case types.NotificationsCollection:
		return notificationBinding(s.stores.Notifications), nil
	case types.PostsCollection:
		return postBinding(s.stores.Posts), nil
	}
	return nil, usagef("unknown collection %q", name.Plural)
}

// lookupCollection resolves a collection argument.
func lookupCollection(arg string) (types.CollectionName, error) {
	name, ok := types.LookupCollection(arg)
	if !ok {
		return types.CollectionName{}, usagef("unknown collection %q (valid: residents, packages, notifications, posts)", arg)
	}
	return name, nil
}

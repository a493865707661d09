// Package sqlite implements a local backend for the building collections.
// Each collection is stored as JSON documents in a single SQLite table, in
// insertion order. The backend assigns identifiers and timestamps and applies
// the payload validation rules, so it behaves like the remote service for
// offline use and tests.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/concierge/pkg/types"
)

// DatabaseFile is the file name of the database inside the data directory.
const DatabaseFile = "concierge.db"

// Backend serves the standard collections from a SQLite database.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	// now is the clock used for server-assigned timestamps.
	now func() time.Time
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{now: time.Now}
}

// Attach opens (creating if needed) the database in config.DataDir and
// ensures the schema exists. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendSQLite {
		return fmt.Errorf("%w: %s", types.ErrBackendUnknown, config.Backend)
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DatabaseFile))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	// One connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the database. Detach is idempotent. After Detach, collection
// operations return ErrBackendDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		if err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
	}
	return nil
}

// Residents returns the residents collection.
func (b *Backend) Residents() types.Collection[types.Resident, types.CreateResidentRequest, types.UpdateResidentRequest] {
	return newTable[types.Resident, types.CreateResidentRequest, types.UpdateResidentRequest](b, types.ResidentsCollection)
}

// Packages returns the packages collection.
func (b *Backend) Packages() types.Collection[types.Package, types.CreatePackageRequest, types.UpdatePackageRequest] {
	return newTable[types.Package, types.CreatePackageRequest, types.UpdatePackageRequest](b, types.PackagesCollection)
}

// Notifications returns the notifications collection.
func (b *Backend) Notifications() types.Collection[types.Notification, types.CreateNotificationRequest, types.UpdateNotificationRequest] {
	return newTable[types.Notification, types.CreateNotificationRequest, types.UpdateNotificationRequest](b, types.NotificationsCollection)
}

// Posts returns the social posts collection.
func (b *Backend) Posts() types.Collection[types.Post, types.CreatePostRequest, types.UpdatePostRequest] {
	return newTable[types.Post, types.CreatePostRequest, types.UpdatePostRequest](b, types.PostsCollection)
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

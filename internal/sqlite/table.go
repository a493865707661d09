package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/concierge/pkg/types"
)

// table implements types.Collection for one entity type. Entities are built
// and patched by their payload types, so validation and server-side defaults
// live in one place for every backend.
type table[E types.Entity, C types.Creator[E], U types.Patcher[E]] struct {
	name    types.CollectionName
	backend *Backend
}

func newTable[E types.Entity, C types.Creator[E], U types.Patcher[E]](b *Backend, name types.CollectionName) *table[E, C, U] {
	return &table[E, C, U]{name: name, backend: b}
}

// List returns every entity of the collection in insertion order.
func (t *table[E, C, U]) List(ctx context.Context) ([]E, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrBackendDetached
	}

	rows, err := t.backend.db.QueryContext(ctx,
		"SELECT body FROM records WHERE collection = ? ORDER BY seq", t.name.Plural)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", t.name.Plural, err)
	}
	defer rows.Close()

	items := []E{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", t.name.Singular, err)
		}
		var e E
		if err := json.Unmarshal([]byte(body), &e); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", t.name.Singular, err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", t.name.Plural, err)
	}
	return items, nil
}

// Create assigns a UUID v7 and the current time, builds the entity from the
// payload and stores it. Validation errors from the payload are returned
// unwrapped so their text reads well in the UI.
func (t *table[E, C, U]) Create(ctx context.Context, payload C) error {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrBackendDetached
	}

	now := t.backend.now().UTC()
	e, err := payload.New(generateUUID(), now)
	if err != nil {
		return err
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", t.name.Singular, err)
	}

	stamp := now.Format(time.RFC3339Nano)
	_, err = t.backend.db.ExecContext(ctx,
		"INSERT INTO records (collection, id, created_at, updated_at, body) VALUES (?, ?, ?, ?, ?)",
		t.name.Plural, e.EntityID(), stamp, stamp, string(body))
	if err != nil {
		return fmt.Errorf("inserting %s: %w", t.name.Singular, err)
	}
	return nil
}

// Update loads the entity, applies the partial payload and writes it back in
// one transaction. Returns ErrNotFound if id does not exist.
func (t *table[E, C, U]) Update(ctx context.Context, id string, payload U) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrBackendDetached
	}

	tx, err := t.backend.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var body string
	err = tx.QueryRowContext(ctx,
		"SELECT body FROM records WHERE collection = ? AND id = ?", t.name.Plural, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", t.name.Singular, id, types.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", t.name.Singular, err)
	}

	var e E
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		return fmt.Errorf("decoding %s: %w", t.name.Singular, err)
	}
	if err := payload.ApplyTo(&e); err != nil {
		return err
	}
	next, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", t.name.Singular, err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE records SET body = ?, updated_at = ? WHERE collection = ? AND id = ?",
		string(next), t.backend.now().UTC().Format(time.RFC3339Nano), t.name.Plural, id)
	if err != nil {
		return fmt.Errorf("updating %s: %w", t.name.Singular, err)
	}
	return tx.Commit()
}

// Delete removes the entity. Returns ErrNotFound if id does not exist.
func (t *table[E, C, U]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrBackendDetached
	}

	res, err := t.backend.db.ExecContext(ctx,
		"DELETE FROM records WHERE collection = ? AND id = ?", t.name.Plural, id)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", t.name.Singular, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s: %w", t.name.Singular, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", t.name.Singular, id, types.ErrNotFound)
	}
	return nil
}

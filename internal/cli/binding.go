package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mesh-intelligence/concierge/internal/jsonl"
	"github.com/mesh-intelligence/concierge/pkg/building"
	"github.com/mesh-intelligence/concierge/pkg/store"
	"github.com/mesh-intelligence/concierge/pkg/types"
)

// collectionOps is what the commands need from one collection's store,
// independent of its entity type.
type collectionOps interface {
	name() types.CollectionName
	fetch(ctx context.Context) error
	add(ctx context.Context, payload []byte) error
	update(ctx context.Context, id string, payload []byte) error
	remove(ctx context.Context, id string) error
	render(w io.Writer, jsonMode bool) error
	size() int
	message() string
	export(ctx context.Context, path string) (int, error)
	importFile(ctx context.Context, path string) (imported, skipped int, err error)
	subscribe(fn func(count int, loading bool, message string)) func()
}

// binding adapts a typed store to collectionOps. columns and row define the
// table output.
type binding[E types.Entity, C, U any] struct {
	store   *store.Store[E, C, U]
	columns []string
	row     func(E) []string
}

func (b *binding[E, C, U]) name() types.CollectionName { return b.store.Name() }

func (b *binding[E, C, U]) fetch(ctx context.Context) error {
	b.store.Fetch(ctx)
	return b.lastError()
}

func (b *binding[E, C, U]) add(ctx context.Context, payload []byte) error {
	var req C
	if err := decodeStrict(payload, &req); err != nil {
		return usagef("parse %s payload: %s", b.name().Singular, err)
	}
	b.store.Create(ctx, req)
	return b.lastError()
}

func (b *binding[E, C, U]) update(ctx context.Context, id string, payload []byte) error {
	var req U
	if err := decodeStrict(payload, &req); err != nil {
		return usagef("parse %s payload: %s", b.name().Singular, err)
	}
	b.store.Update(ctx, id, req)
	return b.lastError()
}

func (b *binding[E, C, U]) remove(ctx context.Context, id string) error {
	b.store.Delete(ctx, id)
	return b.lastError()
}

func (b *binding[E, C, U]) size() int { return len(b.store.State().Collection) }

func (b *binding[E, C, U]) message() string { return b.store.State().ErrorMessage() }

func (b *binding[E, C, U]) render(w io.Writer, jsonMode bool) error {
	items := b.store.State().Collection
	if jsonMode {
		return writeJSON(w, items)
	}
	if len(items) == 0 {
		_, err := fmt.Fprintf(w, "No %s.\n", b.name().Plural)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(b.columns, "\t"))
	for _, item := range items {
		fmt.Fprintln(tw, strings.Join(b.row(item), "\t"))
	}
	return tw.Flush()
}

func (b *binding[E, C, U]) export(ctx context.Context, path string) (int, error) {
	if err := b.fetch(ctx); err != nil {
		return 0, err
	}
	items := b.store.State().Collection
	if err := jsonl.WriteItems(path, items); err != nil {
		return 0, fmt.Errorf("export %s: %w", b.name().Plural, err)
	}
	return len(items), nil
}

// importFile creates one entity per record. Records are decoded as creation
// payloads, so exported identifiers and timestamps are replaced by new ones.
// Import stops at the first failed create.
func (b *binding[E, C, U]) importFile(ctx context.Context, path string) (int, int, error) {
	payloads, skipped, err := jsonl.ReadItems[C](path)
	if err != nil {
		return 0, skipped, err
	}
	for i, p := range payloads {
		b.store.Create(ctx, p)
		if err := b.lastError(); err != nil {
			return i, skipped, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return len(payloads), skipped, nil
}

func (b *binding[E, C, U]) subscribe(fn func(count int, loading bool, message string)) func() {
	return b.store.Subscribe(func(s store.State[E]) {
		fn(len(s.Collection), s.IsLoading, s.ErrorMessage())
	})
}

// lastError returns the store's recorded failure as an error, or nil.
func (b *binding[E, C, U]) lastError() error {
	if e := b.store.State().Err; e != nil {
		return e
	}
	return nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func residentBinding(s *building.ResidentStore) collectionOps {
	return &binding[types.Resident, types.CreateResidentRequest, types.UpdateResidentRequest]{
		store:   s,
		columns: []string{"ID", "NAME", "UNIT", "ROLE", "EMAIL"},
		row: func(r types.Resident) []string {
			return []string{r.ID, r.Name, r.Unit, r.Role, r.Email}
		},
	}
}

func packageBinding(s *building.PackageStore) collectionOps {
	return &binding[types.Package, types.CreatePackageRequest, types.UpdatePackageRequest]{
		store:   s,
		columns: []string{"ID", "RESIDENT", "CARRIER", "STATUS", "RECEIVED"},
		row: func(p types.Package) []string {
			return []string{p.ID, p.ResidentID, p.Carrier, p.Status, p.CreatedAt.Local().Format(time.DateTime)}
		},
	}
}

func notificationBinding(s *building.NotificationStore) collectionOps {
	return &binding[types.Notification, types.CreateNotificationRequest, types.UpdateNotificationRequest]{
		store:   s,
		columns: []string{"ID", "KIND", "TITLE", "RESIDENT", "READ"},
		row: func(n types.Notification) []string {
			resident := n.ResidentID
			if resident == "" {
				resident = "(all)"
			}
			return []string{n.ID, n.Kind, n.Title, resident, strconv.FormatBool(n.Read)}
		},
	}
}

func postBinding(s *building.PostStore) collectionOps {
	return &binding[types.Post, types.CreatePostRequest, types.UpdatePostRequest]{
		store:   s,
		columns: []string{"ID", "AUTHOR", "LIKES", "BODY"},
		row: func(p types.Post) []string {
			return []string{p.ID, p.AuthorID, strconv.Itoa(p.Likes), truncate(p.Body, 40)}
		},
	}
}

// truncate shortens s to at most n runes on one line.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

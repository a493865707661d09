package client

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/concierge/internal/testutil/fakeremote"
	"github.com/mesh-intelligence/concierge/pkg/store"
	"github.com/mesh-intelligence/concierge/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires base url", func(t *testing.T) {
		t.Parallel()
		c, err := New(Config{})
		require.Error(t, err)
		assert.Nil(t, c)
		assert.Contains(t, err.Error(), "BaseURL is required")
	})

	t.Run("rejects unsupported scheme", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{BaseURL: "ftp://example.invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported scheme")
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, Config{BaseURL: "http://example.invalid/"})
		assert.Equal(t, "http://example.invalid", c.base.String())
		assert.Equal(t, DefaultTimeout, c.http.Timeout)
	})

	t.Run("uses custom http client", func(t *testing.T) {
		t.Parallel()
		hc := &http.Client{Timeout: time.Second}
		c := newTestClient(t, Config{BaseURL: "http://example.invalid", HTTPClient: hc})
		assert.Same(t, hc, c.http)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	_, err := NewFromConfig(types.Config{Backend: types.BackendHTTP})
	assert.ErrorIs(t, err, types.ErrBaseURLEmpty)

	_, err = NewFromConfig(types.Config{Backend: types.BackendSQLite})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)

	c, err := NewFromConfig(types.Config{Backend: types.BackendHTTP, BaseURL: "https://building.example.com", Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.http.Timeout)
}

func TestCollection_RoundTrip(t *testing.T) {
	t.Parallel()
	_, ts := fakeremote.Start(t)
	c := newTestClient(t, Config{BaseURL: ts.URL})
	ctx := context.Background()
	residents := c.Residents()

	items, err := residents.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	require.NoError(t, residents.Create(ctx, types.CreateResidentRequest{Name: "Alice", Unit: "4B"}))
	require.NoError(t, residents.Create(ctx, types.CreateResidentRequest{Name: "Bob", Unit: "2C"}))

	items, err = residents.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Alice", items[0].Name)
	assert.Equal(t, "Bob", items[1].Name)

	require.NoError(t, residents.Update(ctx, items[0].ID, types.UpdateResidentRequest{Name: ptr("Alicia")}))
	require.NoError(t, residents.Delete(ctx, items[1].ID))

	items, err = residents.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Alicia", items[0].Name)
	assert.Equal(t, "4B", items[0].Unit)
}

func TestCollection_Errors(t *testing.T) {
	t.Parallel()
	remote, ts := fakeremote.Start(t)
	c := newTestClient(t, Config{BaseURL: ts.URL})
	ctx := context.Background()
	packages := c.Packages()

	t.Run("not found", func(t *testing.T) {
		err := packages.Update(ctx, "missing", types.UpdatePackageRequest{Carrier: ptr("DHL")})
		var remoteErr *types.RemoteError
		require.ErrorAs(t, err, &remoteErr)
		assert.Equal(t, http.StatusNotFound, remoteErr.Status)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("validation message is passed through", func(t *testing.T) {
		err := packages.Create(ctx, types.CreatePackageRequest{})
		require.ErrorIs(t, err, types.ErrInvalidData)
		assert.Contains(t, err.Error(), "package resident is required")
	})

	t.Run("injected failure", func(t *testing.T) {
		remote.FailNext(http.MethodGet, "packages", http.StatusServiceUnavailable, "Maintenance window")
		_, err := packages.List(ctx)
		require.Error(t, err)
		assert.Equal(t, "Maintenance window", err.Error())
		assert.ErrorIs(t, err, types.ErrUnavailable)

		_, err = packages.List(ctx)
		assert.NoError(t, err, "failures apply once")
	})

	t.Run("empty id", func(t *testing.T) {
		assert.ErrorIs(t, packages.Delete(ctx, ""), types.ErrInvalidID)
	})
}

func TestCollection_SendsHeaders(t *testing.T) {
	t.Parallel()
	remote, ts := fakeremote.Start(t)
	remote.RequireToken("secret")
	ctx := context.Background()

	anonymous := newTestClient(t, Config{BaseURL: ts.URL})
	_, err := anonymous.Posts().List(ctx)
	var remoteErr *types.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusUnauthorized, remoteErr.Status)

	c := newTestClient(t, Config{BaseURL: ts.URL, Token: "secret"})
	_, err = c.Posts().List(ctx)
	require.NoError(t, err)

	h := remote.LastRequestHeader()
	assert.Equal(t, "Bearer secret", h.Get("Authorization"))
	assert.Len(t, h.Get("X-Request-ID"), 36)
}

func TestParseError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
		wantMsg     string
	}{
		{"problem detail", "application/problem+json", `{"title":"Not Found","status":404,"detail":"Not found"}`, 404, "Not found"},
		{"problem title only", "application/problem+json", `{"title":"Conflict","status":409}`, 409, "Conflict"},
		{"plain text", "text/plain", "upstream timed out", 504, "upstream timed out"},
		{"html is ignored", "text/html", "<html>bad gateway</html>", 502, ""},
		{"empty body", "", "", 500, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c := newTestClient(t, Config{BaseURL: ts.URL})
			_, err := c.Notifications().List(context.Background())

			var remoteErr *types.RemoteError
			require.ErrorAs(t, err, &remoteErr)
			assert.Equal(t, tt.status, remoteErr.Status)
			assert.Equal(t, tt.wantMsg, remoteErr.Message)
		})
	}
}

func TestCollection_TransportError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := newTestClient(t, Config{BaseURL: url, Timeout: time.Second})
	_, err := c.Residents().List(context.Background())
	require.Error(t, err)

	var netErr net.Error
	assert.True(t, errors.As(err, &netErr))
}

// The store sees the service's message verbatim and re-fetches through the
// same client after each write.
func TestStoreOverHTTP(t *testing.T) {
	t.Parallel()
	remote, ts := fakeremote.Start(t)
	c := newTestClient(t, Config{BaseURL: ts.URL})
	ctx := context.Background()

	s := store.New(types.ResidentsCollection, c.Residents())
	s.Create(ctx, types.CreateResidentRequest{Name: "Alice", Unit: "4B"})

	state := s.State()
	require.Nil(t, state.Err)
	require.Len(t, state.Collection, 1)
	assert.Equal(t, 1, remote.Calls(http.MethodPost, "residents"))
	assert.Equal(t, 1, remote.Calls(http.MethodGet, "residents"))

	remote.FailNext(http.MethodPatch, "residents", http.StatusNotFound, "Not found")
	s.Update(ctx, state.Collection[0].ID, types.UpdateResidentRequest{Name: ptr("Alicia")})

	state = s.State()
	require.NotNil(t, state.Err)
	assert.Equal(t, "Not found", state.ErrorMessage())
	assert.Equal(t, store.KindNotFound, state.Err.Kind)
	assert.Equal(t, "Alice", state.Collection[0].Name)
	assert.Equal(t, 1, remote.Calls(http.MethodGet, "residents"), "failed write does not re-fetch")
	assert.False(t, state.IsLoading)
}

package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/concierge/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func TestTable_ListEmpty(t *testing.T) {
	b := attachTemp(t)

	items, err := b.Residents().List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestTable_CreateAssignsIdentity(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()
	residents := b.Residents()

	require.NoError(t, residents.Create(ctx, types.CreateResidentRequest{Name: "Alice", Unit: "4B"}))
	require.NoError(t, residents.Create(ctx, types.CreateResidentRequest{Name: "Bob", Unit: "2A", Role: types.RoleOwner}))

	items, err := residents.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Alice", items[0].Name, "list keeps insertion order")
	assert.Equal(t, "Bob", items[1].Name)
	assert.NotEmpty(t, items[0].ID)
	assert.NotEqual(t, items[0].ID, items[1].ID)
	assert.False(t, items[0].CreatedAt.IsZero())
	assert.Equal(t, types.RoleResident, items[0].Role)
	assert.Equal(t, types.RoleOwner, items[1].Role)
}

func TestTable_CreateInvalid(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()

	err := b.Residents().Create(ctx, types.CreateResidentRequest{Unit: "4B"})
	require.ErrorIs(t, err, types.ErrInvalidData)
	assert.Contains(t, err.Error(), "resident name is required")

	items, err := b.Residents().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestTable_CollectionsAreIsolated(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()

	require.NoError(t, b.Posts().Create(ctx, types.CreatePostRequest{AuthorID: "r1", Body: "Hello"}))
	require.NoError(t, b.Packages().Create(ctx, types.CreatePackageRequest{ResidentID: "r1", Carrier: "UPS"}))

	posts, err := b.Posts().List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	packages, err := b.Packages().List(ctx)
	require.NoError(t, err)
	require.Len(t, packages, 1)
	assert.Equal(t, types.PackageReceived, packages[0].Status)

	notifications, err := b.Notifications().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestTable_Update(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()
	residents := b.Residents()

	require.NoError(t, residents.Create(ctx, types.CreateResidentRequest{Name: "Alice", Unit: "4B"}))
	items, err := residents.List(ctx)
	require.NoError(t, err)
	id := items[0].ID

	require.NoError(t, residents.Update(ctx, id, types.UpdateResidentRequest{Unit: ptr("5C")}))

	items, err = residents.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, "Alice", items[0].Name, "unset fields are kept")
	assert.Equal(t, "5C", items[0].Unit)
}

func TestTable_UpdateErrors(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()
	packages := b.Packages()

	require.NoError(t, packages.Create(ctx, types.CreatePackageRequest{ResidentID: "r1"}))
	items, err := packages.List(ctx)
	require.NoError(t, err)
	id := items[0].ID

	t.Run("missing id", func(t *testing.T) {
		err := packages.Update(ctx, "no-such-id", types.UpdatePackageRequest{Carrier: ptr("DHL")})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		err := packages.Update(ctx, "", types.UpdatePackageRequest{})
		assert.ErrorIs(t, err, types.ErrInvalidID)
	})

	t.Run("invalid status leaves row unchanged", func(t *testing.T) {
		err := packages.Update(ctx, id, types.UpdatePackageRequest{Status: ptr("lost"), Carrier: ptr("DHL")})
		require.ErrorIs(t, err, types.ErrInvalidData)

		items, err := packages.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, items[0].Carrier)
		assert.Equal(t, types.PackageReceived, items[0].Status)
	})

	t.Run("terminal package conflicts", func(t *testing.T) {
		require.NoError(t, packages.Update(ctx, id, types.UpdatePackageRequest{Status: ptr(types.PackagePickedUp)}))
		items, err := packages.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, items[0].PickedUpAt)

		err = packages.Update(ctx, id, types.UpdatePackageRequest{Status: ptr(types.PackageNotified)})
		assert.ErrorIs(t, err, types.ErrConflict)
	})
}

func TestTable_Delete(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()
	posts := b.Posts()

	require.NoError(t, posts.Create(ctx, types.CreatePostRequest{AuthorID: "r1", Body: "first"}))
	require.NoError(t, posts.Create(ctx, types.CreatePostRequest{AuthorID: "r2", Body: "second"}))
	items, err := posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, posts.Delete(ctx, items[0].ID))

	items, err = posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "second", items[0].Body)

	assert.ErrorIs(t, posts.Delete(ctx, "no-such-id"), types.ErrNotFound)
	assert.ErrorIs(t, posts.Delete(ctx, ""), types.ErrInvalidID)
}

func TestTable_DeleteIsScopedToCollection(t *testing.T) {
	b := attachTemp(t)
	ctx := context.Background()

	require.NoError(t, b.Residents().Create(ctx, types.CreateResidentRequest{Name: "Alice", Unit: "4B"}))
	residents, err := b.Residents().List(ctx)
	require.NoError(t, err)

	err = b.Posts().Delete(ctx, residents[0].ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	residents, err = b.Residents().List(ctx)
	require.NoError(t, err)
	assert.Len(t, residents, 1)
}

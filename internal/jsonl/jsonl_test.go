package jsonl

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/concierge/pkg/types"
)

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "residents.jsonl")
	records := []json.RawMessage{
		json.RawMessage(`{"id":"1","name":"Alice"}`),
		json.RawMessage(`{"id":"2","name":"Bob"}`),
	}
	require.NoError(t, Write(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":\"1\",\"name\":\"Alice\"}\n{\"id\":\"2\",\"name\":\"Bob\"}\n", string(data))

	got, skipped, err := Read(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"id":"2","name":"Bob"}`, string(got[1]))
}

func TestWrite_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")
	require.NoError(t, Write(path, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestWrite_ReplacesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "posts.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	require.NoError(t, Write(path, []json.RawMessage{json.RawMessage(`{"id":"x"}`)}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "posts.jsonl", entries[0].Name())
}

func TestWrite_MissingDir(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "nope", "x.jsonl"), nil)
	assert.ErrorContains(t, err, "creating temp file")
}

func TestRead_SkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.jsonl")
	content := strings.Join([]string{
		`{"id":"1"}`,
		``,
		`{not json`,
		`{"id":"2"}`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, skipped, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Len(t, got, 2)
}

func TestRead_Missing(t *testing.T) {
	_, _, err := Read(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "residents.jsonl")
	residents := []types.Resident{
		{ID: "1", Name: "Alice", Unit: "4B", Role: types.RoleResident},
		{ID: "2", Name: "Bob", Unit: "2C", Role: types.RoleOwner},
	}
	require.NoError(t, WriteItems(path, residents))

	// An exported resident decodes into its creation payload.
	payloads, skipped, err := ReadItems[types.CreateResidentRequest](path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, payloads, 2)
	assert.Equal(t, types.CreateResidentRequest{Name: "Bob", Unit: "2C", Role: types.RoleOwner}, payloads[1])
}

func TestReadItems_SkipsWrongShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"body\":\"hi\"}\n[1,2]\n\"text\"\n"), 0o644))

	posts, skipped, err := ReadItems[types.CreatePostRequest](path)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, posts, 1)
	assert.Equal(t, "hi", posts[0].Body)
}

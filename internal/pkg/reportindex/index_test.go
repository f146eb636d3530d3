package reportindex

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fixthesign/fixthesign/internal/pkg/keyval"
)

func TestAdd_PrependsNewestFirst(t *testing.T) {
	t.Parallel()

	idx := New(keyval.NewMemory(), "dev-1")

	assert.NoError(t, idx.Add("aaa"))
	assert.NoError(t, idx.Add("bbb"))
	assert.NoError(t, idx.Add("ccc"))

	assert.Equal(t, []string{"ccc", "bbb", "aaa"}, idx.List())
}

func TestAdd_DuplicateIsNoOp(t *testing.T) {
	t.Parallel()

	idx := New(keyval.NewMemory(), "dev-1")

	assert.NoError(t, idx.Add("aaa"))
	assert.NoError(t, idx.Add("bbb"))
	assert.NoError(t, idx.Add("aaa"))

	// "aaa" keeps its first-insertion position.
	assert.Equal(t, []string{"bbb", "aaa"}, idx.List())
}

func TestAdd_TrimsAndIgnoresEmpty(t *testing.T) {
	t.Parallel()

	idx := New(keyval.NewMemory(), "dev-1")

	assert.NoError(t, idx.Add("  abc-123  "))
	assert.NoError(t, idx.Add(""))
	assert.NoError(t, idx.Add("   "))

	assert.Equal(t, []string{"abc-123"}, idx.List())
}

func TestList_CorruptContentTreatedAsEmpty(t *testing.T) {
	t.Parallel()

	store := keyval.NewMemory()
	idx := New(store, "dev-1")

	key := fmt.Sprintf(IndexKeyFormat, "dev-1")
	assert.NoError(t, store.Set(key, "{not an array"))
	assert.Empty(t, idx.List())

	// The index recovers: the next Add replaces the corrupt entry.
	assert.NoError(t, idx.Add("abc"))
	assert.Equal(t, []string{"abc"}, idx.List())
}

func TestList_NonArrayJSONTreatedAsEmpty(t *testing.T) {
	t.Parallel()

	store := keyval.NewMemory()
	idx := New(store, "dev-1")

	key := fmt.Sprintf(IndexKeyFormat, "dev-1")
	assert.NoError(t, store.Set(key, `{"uuid":"abc"}`))
	assert.Empty(t, idx.List())
}

func TestIndexesAreScopedPerDevice(t *testing.T) {
	t.Parallel()

	store := keyval.NewMemory()
	one := New(store, "dev-1")
	two := New(store, "dev-2")

	assert.NoError(t, one.Add("aaa"))
	assert.Empty(t, two.List())
	assert.True(t, one.Contains("aaa"))
	assert.False(t, two.Contains("aaa"))
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/index.json"
	idx := New(keyval.NewFile(path), "dev-1")

	assert.NoError(t, idx.Add("aaa"))
	assert.NoError(t, idx.Add("bbb"))

	// A fresh index over the same file sees the persisted entries.
	again := New(keyval.NewFile(path), "dev-1")
	assert.Equal(t, []string{"bbb", "aaa"}, again.List())
}

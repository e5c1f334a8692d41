package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarin/tablero/internal/domain"
	"github.com/rmarin/tablero/internal/store"
)

func TestFolderCacheWithoutPersistence(t *testing.T) {
	cache := NewFolderCache(nil)
	assert.Nil(t, cache.Stores())

	stores := []domain.StoreDescriptor{{ID: "s53", Name: "53", DashboardID: "d53"}}
	cache.SetStores(stores)
	assert.Equal(t, stores, cache.Stores())

	desc, ok := cache.Store("53")
	require.True(t, ok)
	assert.Equal(t, "s53", desc.ID)

	_, ok = cache.Store("99")
	assert.False(t, ok)

	cache.Clear()
	assert.Nil(t, cache.Stores())
	_, ok = cache.Store("53")
	assert.False(t, ok)
}

func TestFolderCacheWarmsFromPersistentStore(t *testing.T) {
	persist, err := store.NewFolderStore(t.TempDir(), "https://files.example.com")
	require.NoError(t, err)
	defer persist.Close()

	stores := []domain.StoreDescriptor{{ID: "s53", Name: "53", DashboardID: "d53"}}
	require.NoError(t, persist.SaveStores(stores))

	cache := NewFolderCache(persist)
	assert.Equal(t, stores, cache.Stores())

	desc, ok := cache.Store("53")
	require.True(t, ok)
	assert.Equal(t, "d53", desc.DashboardID)
}

func TestFolderCachePersistsWrites(t *testing.T) {
	persist, err := store.NewFolderStore(t.TempDir(), "https://files.example.com")
	require.NoError(t, err)
	defer persist.Close()

	cache := NewFolderCache(persist)
	set := domain.StoreFolderSet{TodayID: "t1"}
	cache.SetFolderSet("53", set)
	cache.SetInventarioID("53", "inv1")

	got, ok := persist.GetFolderSet("53")
	require.True(t, ok)
	assert.Equal(t, set, got)

	id, ok := persist.GetInventarioID("53")
	require.True(t, ok)
	assert.Equal(t, "inv1", id)
}

func TestFolderCacheLazyFolderSetFallback(t *testing.T) {
	persist, err := store.NewFolderStore(t.TempDir(), "https://files.example.com")
	require.NoError(t, err)
	defer persist.Close()

	set := domain.StoreFolderSet{TodayID: "t1", HistoryID: "h1"}
	require.NoError(t, persist.SaveFolderSet("53", set))

	// A fresh cache finds the persisted set on first lookup
	cache := NewFolderCache(persist)
	got, ok := cache.FolderSet("53")
	require.True(t, ok)
	assert.Equal(t, set, got)
}

func TestFolderCacheClearWipesPersistence(t *testing.T) {
	persist, err := store.NewFolderStore(t.TempDir(), "https://files.example.com")
	require.NoError(t, err)
	defer persist.Close()

	cache := NewFolderCache(persist)
	cache.SetInventarioID("53", "inv1")
	cache.Clear()

	_, ok := persist.GetInventarioID("53")
	assert.False(t, ok)

	_, ok = cache.InventarioID("53")
	assert.False(t, ok)
}

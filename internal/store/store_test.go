package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarin/tablero/internal/domain"
)

func TestFolderStoreRoundtrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFolderStore(dir, "https://files.example.com")
	require.NoError(t, err)
	defer s.Close()

	stores := []domain.StoreDescriptor{
		{ID: "s53", Name: "53", DashboardID: "d53"},
		{ID: "s12", Name: "12", DashboardID: "d12"},
	}
	require.NoError(t, s.SaveStores(stores))

	got, ok := s.GetStores()
	require.True(t, ok)
	assert.Equal(t, stores, got)

	set := domain.StoreFolderSet{TodayID: "t1", AdminTodayID: "at1"}
	require.NoError(t, s.SaveFolderSet("53", set))
	gotSet, ok := s.GetFolderSet("53")
	require.True(t, ok)
	assert.Equal(t, set, gotSet)

	_, ok = s.GetFolderSet("99")
	assert.False(t, ok)

	require.NoError(t, s.SaveInventarioID("53", "inv1"))
	id, ok := s.GetInventarioID("53")
	require.True(t, ok)
	assert.Equal(t, "inv1", id)
}

func TestFolderStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFolderStore(dir, "https://files.example.com")
	require.NoError(t, err)
	require.NoError(t, s.SaveInventarioID("53", "inv1"))
	require.NoError(t, s.Close())

	reopened, err := NewFolderStore(dir, "https://files.example.com")
	require.NoError(t, err)
	defer reopened.Close()

	id, ok := reopened.GetInventarioID("53")
	require.True(t, ok)
	assert.Equal(t, "inv1", id)
}

func TestFolderStoreScopedPerServer(t *testing.T) {
	dir := t.TempDir()

	a, err := NewFolderStore(dir, "https://one.example.com")
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.SaveInventarioID("53", "inv1"))

	b, err := NewFolderStore(dir, "https://two.example.com")
	require.NoError(t, err)
	defer b.Close()

	_, ok := b.GetInventarioID("53")
	assert.False(t, ok)
}

func TestFolderStoreInvalidateAll(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFolderStore(dir, "https://files.example.com")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveStores([]domain.StoreDescriptor{{ID: "s53", Name: "53"}}))
	require.NoError(t, s.SaveFolderSet("53", domain.StoreFolderSet{TodayID: "t1"}))
	require.NoError(t, s.SaveInventarioID("53", "inv1"))

	s.InvalidateAll()

	_, ok := s.GetStores()
	assert.False(t, ok)
	_, ok = s.GetFolderSet("53")
	assert.False(t, ok)
	_, ok = s.GetInventarioID("53")
	assert.False(t, ok)
}

func TestFolderStoreMemoryOnly(t *testing.T) {
	s, err := NewFolderStore("", "")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveInventarioID("53", "inv1"))
	id, ok := s.GetInventarioID("53")
	require.True(t, ok)
	assert.Equal(t, "inv1", id)

	s.InvalidateAll()
	_, ok = s.GetInventarioID("53")
	assert.False(t, ok)
}

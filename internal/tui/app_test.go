package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarin/tablero/internal/domain"
	"github.com/rmarin/tablero/internal/log"
)

func testModel() Model {
	return NewModel(nil, Options{}, log.NullLogger())
}

func TestApplyStoreFilter(t *testing.T) {
	m := testModel()
	m.stores = []domain.StoreDescriptor{
		{ID: "s53", Name: "Tienda 53 Centro"},
		{ID: "s12", Name: "Tienda 12 Norte"},
		{ID: "s99", Name: "Almacén 99"},
	}

	m.storeFilter.SetValue("")
	m.applyStoreFilter()
	assert.Len(t, m.filtered, 3)

	m.storeFilter.SetValue("tienda")
	m.applyStoreFilter()
	require.Len(t, m.filtered, 2)

	m.storeFilter.SetValue("almacen")
	m.applyStoreFilter()
	require.Len(t, m.filtered, 1)
	assert.Equal(t, "s99", m.filtered[0].ID)

	m.storeFilter.SetValue("zzz")
	m.applyStoreFilter()
	assert.Empty(t, m.filtered)
}

func TestApplyStoreFilterClampsCursor(t *testing.T) {
	m := testModel()
	m.stores = []domain.StoreDescriptor{
		{ID: "s53", Name: "Tienda 53"},
		{ID: "s12", Name: "Tienda 12"},
		{ID: "s99", Name: "Almacén 99"},
	}
	m.storeCursor = 2

	m.storeFilter.SetValue("tienda")
	m.applyStoreFilter()
	assert.Less(t, m.storeCursor, len(m.filtered))
}

func TestVisibleEntries(t *testing.T) {
	m := testModel()
	m.entries = []domain.ChecklistEntry{
		{Name: "1D Apertura"},
		{Name: "1D Cierre"},
		{Name: "2S Limpieza"},
	}

	assert.Len(t, m.visibleEntries(), 3)

	m.listFilter.SetValue("limp")
	visible := m.visibleEntries()
	require.Len(t, visible, 1)
	assert.Equal(t, "2S Limpieza", visible[0].Name)

	m.listFilter.SetValue("nope")
	assert.Empty(t, m.visibleEntries())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-1, 0, 5))
	assert.Equal(t, 5, clamp(9, 0, 5))
	assert.Equal(t, 3, clamp(3, 0, 5))
	assert.Equal(t, 0, clamp(2, 0, -1), "empty range collapses to the lower bound")
}

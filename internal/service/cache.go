package service

import (
	"sync"

	"github.com/rmarin/tablero/internal/domain"
	"github.com/rmarin/tablero/internal/store"
)

// FolderCache is the session-scoped cache of resolved folder topology.
// It is an explicit object owned by the application context and injected
// into the resolver, never package state. Entries are write-once for the
// session; Clear wipes everything (logout path).
//
// A FolderStore may be attached for persistence across sessions; a nil
// store keeps the cache memory-only.
type FolderCache struct {
	mu         sync.RWMutex
	stores     []domain.StoreDescriptor
	byName     map[string]domain.StoreDescriptor
	folderSets map[string]domain.StoreFolderSet
	inventario map[string]string

	persist *store.FolderStore
}

// NewFolderCache creates a cache, warmed from the persistent store when
// one is provided.
func NewFolderCache(persist *store.FolderStore) *FolderCache {
	c := &FolderCache{
		byName:     make(map[string]domain.StoreDescriptor),
		folderSets: make(map[string]domain.StoreFolderSet),
		inventario: make(map[string]string),
		persist:    persist,
	}
	if persist != nil {
		if stores, ok := persist.GetStores(); ok {
			c.setStoresLocked(stores)
		}
	}
	return c
}

// Stores returns the cached store list, or nil when stores have not been
// resolved this session.
func (c *FolderCache) Stores() []domain.StoreDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stores
}

// SetStores caches the discovered store list
func (c *FolderCache) SetStores(stores []domain.StoreDescriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setStoresLocked(stores)
	if c.persist != nil {
		c.persist.SaveStores(stores)
	}
}

func (c *FolderCache) setStoresLocked(stores []domain.StoreDescriptor) {
	c.stores = stores
	for _, s := range stores {
		c.byName[s.Name] = s
	}
}

// Store returns the descriptor cached for a store name
func (c *FolderCache) Store(name string) (domain.StoreDescriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.byName[name]
	return s, ok
}

// FolderSet returns the folder set cached for a store name
func (c *FolderCache) FolderSet(storeName string) (domain.StoreFolderSet, bool) {
	c.mu.RLock()
	if set, ok := c.folderSets[storeName]; ok {
		c.mu.RUnlock()
		return set, true
	}
	c.mu.RUnlock()

	if c.persist != nil {
		if set, ok := c.persist.GetFolderSet(storeName); ok {
			c.mu.Lock()
			c.folderSets[storeName] = set
			c.mu.Unlock()
			return set, true
		}
	}
	return domain.StoreFolderSet{}, false
}

// SetFolderSet caches the resolved folder set for a store
func (c *FolderCache) SetFolderSet(storeName string, set domain.StoreFolderSet) {
	c.mu.Lock()
	c.folderSets[storeName] = set
	c.mu.Unlock()
	if c.persist != nil {
		c.persist.SaveFolderSet(storeName, set)
	}
}

// InventarioID returns the cached Inventario folder id for a store
func (c *FolderCache) InventarioID(storeName string) (string, bool) {
	c.mu.RLock()
	if id, ok := c.inventario[storeName]; ok {
		c.mu.RUnlock()
		return id, true
	}
	c.mu.RUnlock()

	if c.persist != nil {
		if id, ok := c.persist.GetInventarioID(storeName); ok {
			c.mu.Lock()
			c.inventario[storeName] = id
			c.mu.Unlock()
			return id, true
		}
	}
	return "", false
}

// SetInventarioID caches the Inventario folder id for a store
func (c *FolderCache) SetInventarioID(storeName, folderID string) {
	c.mu.Lock()
	c.inventario[storeName] = folderID
	c.mu.Unlock()
	if c.persist != nil {
		c.persist.SaveInventarioID(storeName, folderID)
	}
}

// Clear wipes every cached entry, including the persistent store when
// attached. Called on logout.
func (c *FolderCache) Clear() {
	c.mu.Lock()
	c.stores = nil
	c.byName = make(map[string]domain.StoreDescriptor)
	c.folderSets = make(map[string]domain.StoreFolderSet)
	c.inventario = make(map[string]string)
	c.mu.Unlock()

	if c.persist != nil {
		c.persist.InvalidateAll()
	}
}

package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rmarin/tablero/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketStores     = []byte("stores")
	bucketFolderSets = []byte("foldersets")
	bucketInventario = []byte("inventario")
)

// FolderStore persists the resolved folder topology per server using BoltDB,
// so a restarted session does not have to re-walk the remote hierarchy.
type FolderStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewFolderStore opens the topology store for the given server. An empty
// baseCacheDir yields a memory-only store with no persistence.
func NewFolderStore(baseCacheDir, serverURL string) (*FolderStore, error) {
	if baseCacheDir == "" {
		return &FolderStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if serverURL != "" {
		dir = filepath.Join(baseCacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "tablero.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketStores, bucketFolderSets, bucketInventario} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &FolderStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *FolderStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *FolderStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *FolderStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

// === Stores ===

func (s *FolderStore) GetStores() ([]domain.StoreDescriptor, bool) {
	var stores []domain.StoreDescriptor
	ok := s.get(bucketStores, "list", &stores)
	return stores, ok
}

func (s *FolderStore) SaveStores(stores []domain.StoreDescriptor) error {
	return s.set(bucketStores, "list", stores)
}

// === Folder sets ===

func (s *FolderStore) GetFolderSet(storeName string) (domain.StoreFolderSet, bool) {
	var set domain.StoreFolderSet
	ok := s.get(bucketFolderSets, storeName, &set)
	return set, ok
}

func (s *FolderStore) SaveFolderSet(storeName string, set domain.StoreFolderSet) error {
	return s.set(bucketFolderSets, storeName, set)
}

// === Inventario folders ===

func (s *FolderStore) GetInventarioID(storeName string) (string, bool) {
	var id string
	ok := s.get(bucketInventario, storeName, &id)
	return id, ok && id != ""
}

func (s *FolderStore) SaveInventarioID(storeName, folderID string) error {
	return s.set(bucketInventario, storeName, folderID)
}

// InvalidateAll wipes every cached record. Used on logout and explicit
// cache clear.
func (s *FolderStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketStores, bucketFolderSets, bucketInventario} {
			b := tx.Bucket(bucket)
			if b == nil {
				continue
			}
			c := b.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rmarin/tablero/internal/domain"
	"github.com/rmarin/tablero/internal/drive"
	"golang.org/x/sync/errgroup"
)

// Fixed names of the provisioned folder topology
const (
	folderDashboard  = "Dashboard"
	folderToday      = "Today"
	folderHistory    = "History"
	folderAdmin      = "Admin"
	folderInventario = "Inventario"
)

// folderFields is the projection requested for topology searches
const folderFields = "files(id,name,mimeType,trashed,modifiedTime)"

// resolveConcurrency bounds the per-candidate Dashboard probes during the
// root scan.
const resolveConcurrency = 8

// Resolver translates the fixed logical folder topology into concrete
// handles, lazily and idempotently. All results go through the injected
// FolderCache; a failed probe never writes its cache slot, so the next
// resolution call retries it.
type Resolver struct {
	storage  domain.Storage
	cache    *FolderCache
	rootName string
	logger   *slog.Logger
}

// NewResolver creates a resolver for the folder tree rooted at the folder
// literally named rootName.
func NewResolver(storage domain.Storage, cache *FolderCache, rootName string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		storage:  storage,
		cache:    cache,
		rootName: rootName,
		logger:   logger,
	}
}

// Cache exposes the session cache, for logout handling
func (r *Resolver) Cache() *FolderCache {
	return r.cache
}

// ResolveStores discovers every provisioned store under the root marker
// folder. Candidates without a Dashboard child are discarded. Results are
// cached for the session.
func (r *Resolver) ResolveStores(ctx context.Context) ([]domain.StoreDescriptor, error) {
	if stores := r.cache.Stores(); stores != nil {
		return stores, nil
	}

	rootQuery := drive.NewQuery().Name(r.rootName).Folders().String()
	roots, err := r.storage.Search(ctx, rootQuery, folderFields)
	if err != nil {
		return nil, fmt.Errorf("searching root folder: %w", err)
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrRootFolderNotFound, r.rootName)
	}
	// First match wins when the root name is ambiguous
	root := roots[0]

	childQuery := drive.NewQuery().InParents(root.ID).Folders().String()
	candidates, err := r.storage.Search(ctx, childQuery, folderFields)
	if err != nil {
		return nil, fmt.Errorf("listing store candidates: %w", err)
	}

	// Probe every candidate for a Dashboard child concurrently. Candidates
	// without one are not properly provisioned and are discarded.
	slots := make([]*domain.StoreDescriptor, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			dash, ok, err := r.findChildFolder(gctx, cand.ID, folderDashboard)
			if err != nil {
				return err
			}
			if !ok {
				r.logger.Debug("skipping unprovisioned store candidate", "name", cand.Name)
				return nil
			}
			slots[i] = &domain.StoreDescriptor{ID: cand.ID, Name: cand.Name, DashboardID: dash.ID}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("probing store candidates: %w", err)
	}

	stores := make([]domain.StoreDescriptor, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			stores = append(stores, *s)
		}
	}

	r.cache.SetStores(stores)
	r.logger.Info("resolved stores", "count", len(stores))
	return stores, nil
}

// ResolveStoreFolders resolves the four optional dated-document folders for
// a store. Each probe is independent and absence is not an error; the result
// simply omits that field. All probes for one resolution round run
// concurrently.
func (r *Resolver) ResolveStoreFolders(ctx context.Context, storeName string) (domain.StoreFolderSet, error) {
	if set, ok := r.cache.FolderSet(storeName); ok {
		return set, nil
	}

	desc, err := r.storeDescriptor(ctx, storeName)
	if err != nil {
		return domain.StoreFolderSet{}, err
	}
	if desc.DashboardID == "" {
		return domain.StoreFolderSet{}, fmt.Errorf("%w: store %q", domain.ErrDashboardNotFound, storeName)
	}

	var today, history, admin domain.FolderHandle
	var hasToday, hasHistory, hasAdmin bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		today, hasToday, err = r.findChildFolder(gctx, desc.DashboardID, folderToday)
		return err
	})
	g.Go(func() error {
		var err error
		history, hasHistory, err = r.findChildFolder(gctx, desc.DashboardID, folderHistory)
		return err
	})
	g.Go(func() error {
		var err error
		admin, hasAdmin, err = r.findChildFolder(gctx, desc.DashboardID, folderAdmin)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.StoreFolderSet{}, fmt.Errorf("probing dashboard folders: %w", err)
	}

	set := domain.StoreFolderSet{}
	if hasToday {
		set.TodayID = today.ID
	}
	if hasHistory {
		set.HistoryID = history.ID
	}

	if hasAdmin {
		var adminToday, adminHistory domain.FolderHandle
		var hasAdminToday, hasAdminHistory bool

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			adminToday, hasAdminToday, err = r.findChildFolder(gctx, admin.ID, folderToday)
			return err
		})
		g.Go(func() error {
			var err error
			adminHistory, hasAdminHistory, err = r.findChildFolder(gctx, admin.ID, folderHistory)
			return err
		})
		if err := g.Wait(); err != nil {
			return domain.StoreFolderSet{}, fmt.Errorf("probing admin folders: %w", err)
		}
		if hasAdminToday {
			set.AdminTodayID = adminToday.ID
		}
		if hasAdminHistory {
			set.AdminHistoryID = adminHistory.ID
		}
	}

	r.cache.SetFolderSet(storeName, set)
	r.logger.Debug("resolved store folders", "store", storeName,
		"today", set.TodayID != "", "history", set.HistoryID != "", "admin", hasAdmin)
	return set, nil
}

// ResolveInventario returns the Inventario folder id for a store, failing
// when the folder does not exist.
func (r *Resolver) ResolveInventario(ctx context.Context, storeName string) (string, error) {
	return r.resolveInventario(ctx, storeName, false)
}

// ResolveOrCreateInventario returns the Inventario folder id for a store,
// creating the folder when absent. Creation is not retried or locked;
// concurrent creators can race and produce duplicate folders.
func (r *Resolver) ResolveOrCreateInventario(ctx context.Context, storeName string) (string, error) {
	return r.resolveInventario(ctx, storeName, true)
}

func (r *Resolver) resolveInventario(ctx context.Context, storeName string, create bool) (string, error) {
	if id, ok := r.cache.InventarioID(storeName); ok {
		return id, nil
	}

	desc, err := r.storeDescriptor(ctx, storeName)
	if err != nil {
		return "", err
	}

	// Inventario hangs off the store folder, not the dashboard
	folder, ok, err := r.findChildFolder(ctx, desc.ID, folderInventario)
	if err != nil {
		return "", fmt.Errorf("probing inventario folder: %w", err)
	}
	if !ok {
		if !create {
			return "", fmt.Errorf("%w: %s/%s", domain.ErrStoreFolderNotFound, storeName, folderInventario)
		}
		folder, err = r.storage.CreateFolder(ctx, folderInventario, desc.ID)
		if err != nil {
			return "", fmt.Errorf("creating inventario folder: %w", err)
		}
		r.logger.Info("created inventario folder", "store", storeName, "id", folder.ID)
	}

	r.cache.SetInventarioID(storeName, folder.ID)
	return folder.ID, nil
}

// storeDescriptor returns the cached descriptor for a store, resolving the
// store list first when this session has not done so yet.
func (r *Resolver) storeDescriptor(ctx context.Context, storeName string) (domain.StoreDescriptor, error) {
	if desc, ok := r.cache.Store(storeName); ok {
		return desc, nil
	}
	if _, err := r.ResolveStores(ctx); err != nil {
		return domain.StoreDescriptor{}, err
	}
	desc, ok := r.cache.Store(storeName)
	if !ok {
		return domain.StoreDescriptor{}, fmt.Errorf("%w: store %q", domain.ErrStoreFolderNotFound, storeName)
	}
	return desc, nil
}

// findChildFolder probes for a non-trashed folder with the exact given name
// under a parent. At most one result is meaningful; the first match wins.
func (r *Resolver) findChildFolder(ctx context.Context, parentID, name string) (domain.FolderHandle, bool, error) {
	query := drive.NewQuery().Name(name).InParents(parentID).Folders().String()
	entries, err := r.storage.Search(ctx, query, folderFields)
	if err != nil {
		return domain.FolderHandle{}, false, err
	}
	if len(entries) == 0 {
		return domain.FolderHandle{}, false, nil
	}
	e := entries[0]
	return domain.FolderHandle{ID: e.ID, Name: e.Name, ParentID: parentID}, true, nil
}

package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rmarin/tablero/internal/domain"
)

// Dashboard holds the current (store, date) selection and the last good
// merged view. Every selection change bumps a monotonic generation counter;
// results carrying a stale generation are discarded, so late responses from
// a previous selection can never clobber the current view. Refresh failures
// degrade to a stale flag and keep the last good bundle instead of clearing
// it.
type Dashboard struct {
	checklists *ChecklistService
	ledger     *LedgerService
	resolver   *Resolver
	logger     *slog.Logger

	generation atomic.Int64

	mu        sync.Mutex
	storeName string
	date      time.Time
	bundle    *domain.ChecklistBundle
	rows      []domain.DiscrepancyRow
	stale     bool
}

// NewDashboard creates a dashboard session
func NewDashboard(checklists *ChecklistService, ledger *LedgerService, resolver *Resolver, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		checklists: checklists,
		ledger:     ledger,
		resolver:   resolver,
		logger:     logger,
	}
}

// Stores resolves the available stores
func (d *Dashboard) Stores(ctx context.Context) ([]domain.StoreDescriptor, error) {
	return d.resolver.ResolveStores(ctx)
}

// SelectStore switches the current store, invalidating any in-flight
// refreshes for the previous selection. The view resets to today's date.
func (d *Dashboard) SelectStore(name string) int64 {
	gen := d.generation.Add(1)
	d.mu.Lock()
	d.storeName = name
	d.date = truncateToDay(time.Now())
	d.bundle = nil
	d.rows = nil
	d.stale = false
	d.mu.Unlock()
	return gen
}

// SelectDate switches the current date, invalidating any in-flight
// refreshes for the previous selection.
func (d *Dashboard) SelectDate(date time.Time) int64 {
	gen := d.generation.Add(1)
	d.mu.Lock()
	d.date = truncateToDay(date)
	d.bundle = nil
	d.stale = false
	d.mu.Unlock()
	return gen
}

// Selection returns the current store and date
func (d *Dashboard) Selection() (string, time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.storeName, d.date
}

// Generation returns the current selection generation
func (d *Dashboard) Generation() int64 {
	return d.generation.Load()
}

// Bundle returns the last good bundle (nil when none was ever assembled)
// and whether the view is stale.
func (d *Dashboard) Bundle() (*domain.ChecklistBundle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bundle, d.stale
}

// Rows returns the ledger rows from the most recent load, after any
// optimistic in-memory removals.
func (d *Dashboard) Rows() []domain.DiscrepancyRow {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rows
}

// Refresh reruns the locate-merge-project pipeline for the current
// selection. An error keeps the previous bundle and marks the view stale;
// a result for an outdated generation is dropped. Each refresh is
// independent and self-contained; callers drive the periodic timer.
func (d *Dashboard) Refresh(ctx context.Context) error {
	gen := d.generation.Load()
	d.mu.Lock()
	storeName, date := d.storeName, d.date
	d.mu.Unlock()

	if storeName == "" {
		return nil
	}

	bundle, err := d.checklists.BundleFor(ctx, storeName, date)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.generation.Load() != gen {
		d.logger.Debug("dropping stale refresh result", "generation", gen, "store", storeName)
		return nil
	}
	if err != nil {
		d.stale = true
		d.logger.Warn("refresh failed, keeping last good view", "store", storeName, "error", err)
		return err
	}
	d.bundle = bundle
	d.stale = false
	return nil
}

// LoadLedger re-reads the discrepancy ledger for the current store. The
// ledger is never cached across loads.
func (d *Dashboard) LoadLedger(ctx context.Context) ([]domain.DiscrepancyRow, error) {
	gen := d.generation.Load()
	d.mu.Lock()
	storeName := d.storeName
	d.mu.Unlock()

	if storeName == "" {
		return nil, nil
	}

	ledger, err := d.ledger.Load(ctx, storeName)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.generation.Load() != gen {
		return ledger.Rows, nil
	}
	d.rows = ledger.Rows
	return ledger.Rows, nil
}

// MarkReviewed removes one discrepancy row by its article key, mutating the
// in-memory rows optimistically so the view stays responsive while storage
// confirms.
func (d *Dashboard) MarkReviewed(ctx context.Context, key string) error {
	d.mu.Lock()
	storeName := d.storeName
	d.mu.Unlock()

	if err := d.ledger.RemoveByKey(ctx, storeName, key); err != nil {
		return err
	}

	// Compact into a fresh slice: LoadLedger and Rows hand out d.rows
	// directly, so rewriting its backing array would mutate snapshots
	// callers still hold.
	d.mu.Lock()
	kept := make([]domain.DiscrepancyRow, 0, len(d.rows))
	for _, row := range d.rows {
		if row.Key != key {
			kept = append(kept, row)
		}
	}
	d.rows = kept
	d.mu.Unlock()
	return nil
}

// MarkAllReviewed removes every currently loaded discrepancy row,
// sequentially. Returns how many removals succeeded; the operation is not
// atomic.
func (d *Dashboard) MarkAllReviewed(ctx context.Context) (int, error) {
	d.mu.Lock()
	storeName := d.storeName
	keys := make([]string, len(d.rows))
	for i, row := range d.rows {
		keys[i] = row.Key
	}
	d.mu.Unlock()

	removed, err := d.ledger.RemoveBatch(ctx, storeName, keys)

	d.mu.Lock()
	d.rows = d.rows[removed:]
	d.mu.Unlock()
	return removed, err
}

// Logout clears the session folder cache
func (d *Dashboard) Logout() {
	d.generation.Add(1)
	d.resolver.Cache().Clear()
	d.mu.Lock()
	d.storeName = ""
	d.bundle = nil
	d.rows = nil
	d.stale = false
	d.mu.Unlock()
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

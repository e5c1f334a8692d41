package tui

import (
	"time"

	"github.com/rmarin/tablero/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// StoresLoadedMsg signals that the store list has been resolved
type StoresLoadedMsg struct {
	Stores []domain.StoreDescriptor
}

// BundleLoadedMsg signals that checklists for the current selection are ready
type BundleLoadedMsg struct {
	Generation int64
	Bundle     *domain.ChecklistBundle
	Stale      bool
	Err        error
}

// LedgerLoadedMsg signals that the discrepancy ledger has been loaded
type LedgerLoadedMsg struct {
	Generation int64
	Rows       []domain.DiscrepancyRow
	Err        error
}

// RowReviewedMsg signals that a ledger row was removed remotely
type RowReviewedMsg struct {
	Generation int64
	Key        string
	Rows       []domain.DiscrepancyRow
	Err        error
}

// AllReviewedMsg signals the outcome of a mark-all operation
type AllReviewedMsg struct {
	Generation int64
	Removed    int
	Total      int
	Rows       []domain.DiscrepancyRow
	Err        error
}

// RefreshTickMsg fires on the periodic refresh interval
type RefreshTickMsg struct {
	At time.Time
}

// LoggedOutMsg signals that session state has been cleared
type LoggedOutMsg struct{}

// ClearStatusMsg clears the transient status bar message
type ClearStatusMsg struct{}

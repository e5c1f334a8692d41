package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rmarin/tablero/internal/config"
	"github.com/rmarin/tablero/internal/service"
)

// Command factories for async operations

// LoadStoresCmd resolves the list of provisioned stores
func LoadStoresCmd(d *service.Dashboard) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		stores, err := d.Stores(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading stores"}
		}
		return StoresLoadedMsg{Stores: stores}
	}
}

// RefreshBundleCmd re-merges checklists for the current selection
func RefreshBundleCmd(d *service.Dashboard) tea.Cmd {
	gen := d.Generation()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		err := d.Refresh(ctx)
		bundle, stale := d.Bundle()
		return BundleLoadedMsg{Generation: gen, Bundle: bundle, Stale: stale, Err: err}
	}
}

// LoadLedgerCmd loads the discrepancy ledger for the selected store
func LoadLedgerCmd(d *service.Dashboard) tea.Cmd {
	gen := d.Generation()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		rows, err := d.LoadLedger(ctx)
		return LedgerLoadedMsg{Generation: gen, Rows: rows, Err: err}
	}
}

// ReviewRowCmd removes a single ledger row remotely
func ReviewRowCmd(d *service.Dashboard, key string) tea.Cmd {
	gen := d.Generation()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		err := d.MarkReviewed(ctx, key)
		return RowReviewedMsg{Generation: gen, Key: key, Rows: d.Rows(), Err: err}
	}
}

// ReviewAllCmd removes every ledger row remotely, stopping at the first failure
func ReviewAllCmd(d *service.Dashboard) tea.Cmd {
	gen := d.Generation()
	total := len(d.Rows())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		removed, err := d.MarkAllReviewed(ctx)
		return AllReviewedMsg{Generation: gen, Removed: removed, Total: total, Rows: d.Rows(), Err: err}
	}
}

// LogoutCmd clears session state, cached folder topology, and the stored
// credential
func LogoutCmd(d *service.Dashboard) tea.Cmd {
	return func() tea.Msg {
		d.Logout()
		if err := config.ClearServerConfig(); err != nil {
			return ErrMsg{Err: err, Context: "clearing credentials"}
		}
		return LoggedOutMsg{}
	}
}

// RefreshTickCmd schedules the next periodic refresh
func RefreshTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return RefreshTickMsg{At: t}
	})
}

// ClearStatusCmd clears the status bar after a short delay
func ClearStatusCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrUnauthenticated indicates no valid credential is available.
	// Surfaced to force a re-login; never retried automatically.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrServerUnreachable indicates the storage provider could not be reached
	ErrServerUnreachable = errors.New("storage provider is unreachable")

	// ErrRootFolderNotFound indicates the root marker folder is missing
	ErrRootFolderNotFound = errors.New("root folder not found")

	// ErrDashboardNotFound indicates a store has no resolved Dashboard folder
	ErrDashboardNotFound = errors.New("dashboard folder not found")

	// ErrStoreFolderNotFound indicates a store subfolder is missing
	ErrStoreFolderNotFound = errors.New("store folder not found")

	// ErrMalformedLedger indicates the ledger file lacks its key column
	ErrMalformedLedger = errors.New("ledger is missing the article column")
)

// APIError is a non-success response from the storage provider, carrying the
// server-reported message when one could be parsed.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("storage api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("storage api error %d", e.Status)
}

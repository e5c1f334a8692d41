package domain

import "context"

// Storage provides authenticated transport primitives against the remote
// hierarchical file store. Implementations must fail with ErrUnauthenticated
// before any network call when no credential is available.
type Storage interface {
	// Search returns entries matching the provider query string, with the
	// given field projection. Results are bounded to a single page ordered
	// by name; callers must not assume full-corpus results beyond that.
	Search(ctx context.Context, query, fields string) ([]Entry, error)

	// Download returns the raw content of a file
	Download(ctx context.Context, fileID string) ([]byte, error)

	// UploadReplace replaces the full content of an existing file
	UploadReplace(ctx context.Context, fileID string, content []byte, contentType string) error

	// CreateFolder creates a folder under the given parent
	CreateFolder(ctx context.Context, name, parentID string) (FolderHandle, error)
}

// TokenSource is the boundary to the external auth collaborator. A nil/empty
// token is treated as an immediate unauthenticated failure with no retry.
type TokenSource interface {
	// Token returns the current bearer token, or "" when not authenticated
	Token() string

	// IsAuthenticated reports whether a credential is currently available
	IsAuthenticated() bool
}

package drive

import (
	"time"

	"github.com/rmarin/tablero/internal/domain"
)

// fileResource is the provider's file/folder representation
type fileResource struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MimeType     string   `json:"mimeType"`
	Trashed      bool     `json:"trashed"`
	ModifiedTime string   `json:"modifiedTime"`
	Parents      []string `json:"parents,omitempty"`
}

// fileList is the envelope returned by the files listing endpoint
type fileList struct {
	Files []fileResource `json:"files"`
}

// errorEnvelope is the provider's error response body
type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// createFolderRequest is the body for folder creation
type createFolderRequest struct {
	Name     string   `json:"name"`
	MimeType string   `json:"mimeType"`
	Parents  []string `json:"parents"`
}

// mapEntries converts provider file resources to domain entries
func mapEntries(files []fileResource) []domain.Entry {
	entries := make([]domain.Entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, domain.Entry{
			ID:           f.ID,
			Name:         f.Name,
			MimeType:     f.MimeType,
			Trashed:      f.Trashed,
			ModifiedTime: parseModifiedTime(f.ModifiedTime),
		})
	}
	return entries
}

// parseModifiedTime parses the provider's RFC 3339 timestamps, zero on failure
func parseModifiedTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

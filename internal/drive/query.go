package drive

import (
	"fmt"
	"strings"
)

// MimeTypeFolder is the provider's MIME type for directory nodes
const MimeTypeFolder = "application/vnd.google-apps.folder"

// Query builds the provider's query-string filter language. Terms are
// combined with "and" in the order they were added.
type Query struct {
	terms []string
}

// NewQuery creates an empty query
func NewQuery() *Query {
	return &Query{}
}

// Name adds an exact, case- and trim-sensitive name match
func (q *Query) Name(name string) *Query {
	q.terms = append(q.terms, fmt.Sprintf("name = '%s'", escapeQueryValue(name)))
	return q
}

// NameContains adds a substring name match
func (q *Query) NameContains(s string) *Query {
	q.terms = append(q.terms, fmt.Sprintf("name contains '%s'", escapeQueryValue(s)))
	return q
}

// InParents restricts results to children of the given folder
func (q *Query) InParents(folderID string) *Query {
	q.terms = append(q.terms, fmt.Sprintf("'%s' in parents", escapeQueryValue(folderID)))
	return q
}

// MimeType adds an exact MIME type match
func (q *Query) MimeType(mimeType string) *Query {
	q.terms = append(q.terms, fmt.Sprintf("mimeType = '%s'", escapeQueryValue(mimeType)))
	return q
}

// Folders restricts results to non-trashed folder entries
func (q *Query) Folders() *Query {
	return q.MimeType(MimeTypeFolder).NotTrashed()
}

// NotTrashed excludes trashed entries
func (q *Query) NotTrashed() *Query {
	q.terms = append(q.terms, "trashed = false")
	return q
}

// String renders the query in the provider's filter syntax
func (q *Query) String() string {
	return strings.Join(q.terms, " and ")
}

// escapeQueryValue escapes backslashes and single quotes so user-supplied
// names cannot break out of the quoted literal.
func escapeQueryValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

package domain

import (
	"sort"
	"time"
)

// Role identifies one of the four folder roles a dated checklist document
// can live in.
type Role int

const (
	RoleToday Role = iota
	RoleHistory
	RoleAdminToday
	RoleAdminHistory
)

// String returns a human-readable representation of the role
func (r Role) String() string {
	switch r {
	case RoleToday:
		return "Today"
	case RoleHistory:
		return "History"
	case RoleAdminToday:
		return "Admin/Today"
	case RoleAdminHistory:
		return "Admin/History"
	default:
		return "Unknown"
	}
}

// IsAdmin reports whether documents found under this role carry admin provenance
func (r Role) IsAdmin() bool {
	return r == RoleAdminToday || r == RoleAdminHistory
}

// Roles lists every folder role in their canonical processing order
var Roles = []Role{RoleToday, RoleHistory, RoleAdminToday, RoleAdminHistory}

// Provenance distinguishes documents found under regular folders from those
// found under the Admin branch
type Provenance int

const (
	ProvenanceRegular Provenance = iota
	ProvenanceAdmin
)

// String returns a human-readable representation of the provenance
func (p Provenance) String() string {
	if p == ProvenanceAdmin {
		return "admin"
	}
	return "regular"
}

// FolderHandle represents one directory node in the remote hierarchy.
// Immutable once resolved.
type FolderHandle struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
}

// StoreDescriptor identifies one discovered store and its Dashboard folder
type StoreDescriptor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DashboardID string `json:"dashboardId"`
}

// StoreFolderSet holds the resolved dated-document folders for a store.
// Any field may be empty: a store need not have an Admin subtree, or even
// History.
type StoreFolderSet struct {
	TodayID        string `json:"todayId,omitempty"`
	HistoryID      string `json:"historyId,omitempty"`
	AdminTodayID   string `json:"adminTodayId,omitempty"`
	AdminHistoryID string `json:"adminHistoryId,omitempty"`
}

// FolderID returns the folder id for the given role and whether it is resolved
func (s StoreFolderSet) FolderID(role Role) (string, bool) {
	var id string
	switch role {
	case RoleToday:
		id = s.TodayID
	case RoleHistory:
		id = s.HistoryID
	case RoleAdminToday:
		id = s.AdminTodayID
	case RoleAdminHistory:
		id = s.AdminHistoryID
	}
	return id, id != ""
}

// IsEmpty reports whether no role folder was resolved at all
func (s StoreFolderSet) IsEmpty() bool {
	return s.TodayID == "" && s.HistoryID == "" && s.AdminTodayID == "" && s.AdminHistoryID == ""
}

// Entry is one result row returned by a storage search
type Entry struct {
	ID           string
	Name         string
	MimeType     string
	Trashed      bool
	ModifiedTime time.Time
}

// RemoteFile is a located candidate document. It carries no content until
// explicitly downloaded.
type RemoteFile struct {
	ID           string
	Name         string
	ModifiedTime time.Time
}

// ChecklistItem is a single line of a checklist document
type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	By        string `json:"by,omitempty"`
	Time      string `json:"time,omitempty"`
	Comment   string `json:"comment,omitempty"`
}

// Checklist is the per-name payload inside a checklist document
type Checklist struct {
	Items []ChecklistItem `json:"items"`
}

// ChecklistDocument is the wire shape of one dated JSON document.
// Exactly one of Date, WeekStart, or MonthStart is set depending on the
// document class.
type ChecklistDocument struct {
	Date       string               `json:"date,omitempty"`
	WeekStart  string               `json:"week_start,omitempty"`
	MonthStart string               `json:"month_start,omitempty"`
	Checklists map[string]Checklist `json:"checklists"`
}

// FetchedDocument pairs a downloaded document with where it came from.
// Ephemeral, produced per request, never persisted.
type FetchedDocument struct {
	File       RemoteFile
	Payload    ChecklistDocument
	Provenance Provenance
}

// ChecklistEntry is one merged checklist inside a bundle
type ChecklistEntry struct {
	Name       string
	Items      []ChecklistItem
	Provenance Provenance
	Stats      Stats
}

// ChecklistBundle is the merged, per-date aggregate of every checklist
// document found across roles. Built fresh per date selection and never
// cached across dates.
type ChecklistBundle struct {
	Date       time.Time
	Checklists map[string]ChecklistEntry
}

// Entries returns the bundle's checklists sorted lexicographically by name
func (b *ChecklistBundle) Entries() []ChecklistEntry {
	entries := make([]ChecklistEntry, 0, len(b.Checklists))
	for _, e := range b.Checklists {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// Overall aggregates the completion stats of every checklist in the bundle
func (b *ChecklistBundle) Overall() Stats {
	var items []ChecklistItem
	for _, e := range b.Checklists {
		items = append(items, e.Items...)
	}
	return ComputeStats(items)
}

// DiscrepancyRow is one data row of the shared CSV ledger. Key is the
// trimmed value of the article-key column; Fields holds every column as read.
type DiscrepancyRow struct {
	Key    string
	Fields []string
}

// Ledger is the parsed state of the shared discrepancy CSV file
type Ledger struct {
	FileID   string
	Header   []string
	KeyIndex int
	Rows     []DiscrepancyRow
}

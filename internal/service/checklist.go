package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rmarin/tablero/internal/domain"
	"github.com/rmarin/tablero/internal/drive"
	"golang.org/x/sync/errgroup"
)

// fileFields is the projection requested when locating candidate documents
const fileFields = "files(id,name,mimeType,trashed,modifiedTime)"

// downloadConcurrency bounds the parallel candidate downloads (at most 12
// candidates exist per date: three filename classes in four roles each).
const downloadConcurrency = 6

// MergeSource is one (document class, folder role) slot of the merge order
type MergeSource struct {
	Class domain.ChecklistClass
	Role  domain.Role
}

// MergeOrder fixes the order documents are folded into a bundle: daily,
// then weekly, then monthly, and within each class the roles Today,
// History, Admin/Today, Admin/History. A later source with the same
// checklist name silently overwrites an earlier one's data and provenance
// tag; this is a deliberate last-wins merge, not a union. Changing this
// order changes which source wins.
var MergeOrder = []MergeSource{
	{domain.ClassDaily, domain.RoleToday},
	{domain.ClassDaily, domain.RoleHistory},
	{domain.ClassDaily, domain.RoleAdminToday},
	{domain.ClassDaily, domain.RoleAdminHistory},
	{domain.ClassWeekly, domain.RoleToday},
	{domain.ClassWeekly, domain.RoleHistory},
	{domain.ClassWeekly, domain.RoleAdminToday},
	{domain.ClassWeekly, domain.RoleAdminHistory},
	{domain.ClassMonthly, domain.RoleToday},
	{domain.ClassMonthly, domain.RoleHistory},
	{domain.ClassMonthly, domain.RoleAdminToday},
	{domain.ClassMonthly, domain.RoleAdminHistory},
}

// DailyFilename returns the daily document name for a date
func DailyFilename(date time.Time) string {
	return date.Format("2006-01-02") + ".json"
}

// WeekStart returns the Monday of the week the date falls in. Sunday counts
// as day 7 of the previous week, so a Sunday's week start is six days
// earlier, not the same day.
func WeekStart(date time.Time) time.Time {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return date.AddDate(0, 0, -(weekday - 1))
}

// WeeklyFilename returns the weekly document name for a date
func WeeklyFilename(date time.Time) string {
	return WeekStart(date).Format("2006-01-02") + "_weekly.json"
}

// MonthlyFilename returns the monthly document name for a date
func MonthlyFilename(date time.Time) string {
	return fmt.Sprintf("%04d-%02d-01_monthly.json", date.Year(), int(date.Month()))
}

// FilenameFor returns the candidate document name for a class and date
func FilenameFor(class domain.ChecklistClass, date time.Time) string {
	switch class {
	case domain.ClassWeekly:
		return WeeklyFilename(date)
	case domain.ClassMonthly:
		return MonthlyFilename(date)
	default:
		return DailyFilename(date)
	}
}

// ChecklistService assembles the merged checklist view for a (store, date)
// pair: locate candidates across roles, download them, merge in MergeOrder.
type ChecklistService struct {
	storage  domain.Storage
	resolver *Resolver
	logger   *slog.Logger
}

// NewChecklistService creates a new checklist service
func NewChecklistService(storage domain.Storage, resolver *Resolver, logger *slog.Logger) *ChecklistService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChecklistService{
		storage:  storage,
		resolver: resolver,
		logger:   logger,
	}
}

// candidate is one located document awaiting download, keyed by its
// MergeOrder slot.
type candidate struct {
	slot int
	file domain.RemoteFile
}

// BundleFor assembles the complete checklist bundle for a store and date.
// A (nil, nil) return means no documents (or no checklist entries) were
// found for that date, distinguishable from an error.
func (s *ChecklistService) BundleFor(ctx context.Context, storeName string, date time.Time) (*domain.ChecklistBundle, error) {
	folders, err := s.resolver.ResolveStoreFolders(ctx, storeName)
	if err != nil {
		return nil, err
	}

	candidates, err := s.locate(ctx, folders, date)
	if err != nil {
		return nil, err
	}

	docs := s.download(ctx, candidates)

	bundle := &domain.ChecklistBundle{
		Date:       date,
		Checklists: make(map[string]domain.ChecklistEntry),
	}
	for slot := range MergeOrder {
		doc := docs[slot]
		if doc == nil {
			continue
		}
		mergeDocument(bundle, doc)
	}

	if len(bundle.Checklists) == 0 {
		return nil, nil
	}
	return bundle, nil
}

// locate searches every resolved role folder for the three candidate
// filenames concurrently. Search failures abort the operation; an empty
// result for a slot just leaves it absent.
func (s *ChecklistService) locate(ctx context.Context, folders domain.StoreFolderSet, date time.Time) ([]*candidate, error) {
	located := make([]*candidate, len(MergeOrder))

	g, gctx := errgroup.WithContext(ctx)
	for slot, src := range MergeOrder {
		folderID, ok := folders.FolderID(src.Role)
		if !ok {
			continue
		}
		name := FilenameFor(src.Class, date)
		slot := slot
		g.Go(func() error {
			query := drive.NewQuery().Name(name).InParents(folderID).NotTrashed().String()
			entries, err := s.storage.Search(gctx, query, fileFields)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return nil
			}
			// At most one result per role is meaningful; take the first
			e := entries[0]
			located[slot] = &candidate{
				slot: slot,
				file: domain.RemoteFile{ID: e.ID, Name: e.Name, ModifiedTime: e.ModifiedTime},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("locating documents: %w", err)
	}
	return located, nil
}

// download fetches every located candidate concurrently. A single failed
// download (or an unparseable payload) is logged and treated as absent; it
// never aborts the others.
func (s *ChecklistService) download(ctx context.Context, candidates []*candidate) []*domain.FetchedDocument {
	docs := make([]*domain.FetchedDocument, len(MergeOrder))

	g := new(errgroup.Group)
	g.SetLimit(downloadConcurrency)
	for _, cand := range candidates {
		if cand == nil {
			continue
		}
		cand := cand
		g.Go(func() error {
			data, err := s.storage.Download(ctx, cand.file.ID)
			if err != nil {
				s.logger.Warn("document download failed, treating as absent",
					"file", cand.file.Name, "id", cand.file.ID, "error", err)
				return nil
			}
			var payload domain.ChecklistDocument
			if err := json.Unmarshal(data, &payload); err != nil {
				s.logger.Warn("document parse failed, treating as absent",
					"file", cand.file.Name, "id", cand.file.ID, "error", err)
				return nil
			}
			provenance := domain.ProvenanceRegular
			if MergeOrder[cand.slot].Role.IsAdmin() {
				provenance = domain.ProvenanceAdmin
			}
			docs[cand.slot] = &domain.FetchedDocument{
				File:       cand.file,
				Payload:    payload,
				Provenance: provenance,
			}
			return nil
		})
	}
	g.Wait()
	return docs
}

// mergeDocument folds one document into the bundle. An entry with a name
// already present overwrites both its data and its provenance tag.
func mergeDocument(bundle *domain.ChecklistBundle, doc *domain.FetchedDocument) {
	for name, checklist := range doc.Payload.Checklists {
		bundle.Checklists[name] = domain.ChecklistEntry{
			Name:       name,
			Items:      checklist.Items,
			Provenance: doc.Provenance,
			Stats:      domain.ComputeStats(checklist.Items),
		}
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarin/tablero/internal/domain"
	"github.com/rmarin/tablero/internal/drive"
	"github.com/rmarin/tablero/internal/log"
)

func fileQuery(name, parentID string) string {
	return drive.NewQuery().Name(name).InParents(parentID).NotTrashed().String()
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDailyFilename(t *testing.T) {
	assert.Equal(t, "2024-03-10.json", DailyFilename(date(2024, time.March, 10)))
	assert.Equal(t, "2024-01-02.json", DailyFilename(date(2024, time.January, 2)))
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday is its own week start", date(2024, time.March, 4), date(2024, time.March, 4)},
		{"wednesday", date(2024, time.March, 6), date(2024, time.March, 4)},
		{"saturday", date(2024, time.March, 9), date(2024, time.March, 4)},
		{"sunday belongs to the previous week", date(2024, time.March, 10), date(2024, time.March, 4)},
		{"monday after that sunday starts a new week", date(2024, time.March, 11), date(2024, time.March, 11)},
		{"week start crosses a month boundary", date(2024, time.May, 1), date(2024, time.April, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStart(tt.in))
		})
	}
}

func TestWeeklyFilename(t *testing.T) {
	// 2024-03-10 is a Sunday; its week started Monday the 4th
	assert.Equal(t, "2024-03-04_weekly.json", WeeklyFilename(date(2024, time.March, 10)))
	assert.Equal(t, "2024-03-04_weekly.json", WeeklyFilename(date(2024, time.March, 4)))
	assert.Equal(t, "2024-03-11_weekly.json", WeeklyFilename(date(2024, time.March, 11)))
}

func TestMonthlyFilename(t *testing.T) {
	assert.Equal(t, "2024-03-01_monthly.json", MonthlyFilename(date(2024, time.March, 10)))
	assert.Equal(t, "2024-12-01_monthly.json", MonthlyFilename(date(2024, time.December, 31)))
}

func TestMergeOrderShape(t *testing.T) {
	require.Len(t, MergeOrder, 12)
	// Daily sources come first, monthly last
	assert.Equal(t, MergeSource{domain.ClassDaily, domain.RoleToday}, MergeOrder[0])
	assert.Equal(t, MergeSource{domain.ClassMonthly, domain.RoleAdminHistory}, MergeOrder[11])
}

// checklistFixture wires a checklist service whose store "53" has Today and
// Admin/Today folders already resolved.
func checklistFixture() (*fakeStorage, *ChecklistService) {
	storage := newFakeStorage()
	cache := NewFolderCache(nil)
	cache.SetStores([]domain.StoreDescriptor{{ID: "s53", Name: "53", DashboardID: "d53"}})
	cache.SetFolderSet("53", domain.StoreFolderSet{TodayID: "t1", AdminTodayID: "at1"})

	resolver := NewResolver(storage, cache, "Tiendas", log.NullLogger())
	return storage, NewChecklistService(storage, resolver, log.NullLogger())
}

func TestBundleForNoDocuments(t *testing.T) {
	_, svc := checklistFixture()

	bundle, err := svc.BundleFor(context.Background(), "53", date(2024, time.March, 10))
	require.NoError(t, err)
	assert.Nil(t, bundle)
}

func TestBundleForAdminOverridesRegular(t *testing.T) {
	storage, svc := checklistFixture()
	day := date(2024, time.March, 6)

	storage.searches[fileQuery("2024-03-06.json", "t1")] = []domain.Entry{{ID: "doc-reg", Name: "2024-03-06.json"}}
	storage.searches[fileQuery("2024-03-06.json", "at1")] = []domain.Entry{{ID: "doc-adm", Name: "2024-03-06.json"}}
	storage.searches[fileQuery("2024-03-04_weekly.json", "t1")] = []domain.Entry{{ID: "doc-week", Name: "2024-03-04_weekly.json"}}

	storage.files["doc-reg"] = []byte(`{"date":"2024-03-06","checklists":{
		"1D Apertura":{"items":[{"text":"abrir caja","completed":false}]},
		"1D Cierre":{"items":[{"text":"cerrar caja","completed":true,"by":"ana"}]}}}`)
	storage.files["doc-adm"] = []byte(`{"date":"2024-03-06","checklists":{
		"1D Apertura":{"items":[{"text":"abrir caja","completed":true,"by":"admin"},{"text":"contar fondo","completed":true}]}}}`)
	storage.files["doc-week"] = []byte(`{"week_start":"2024-03-04","checklists":{
		"2S Limpieza":{"items":[{"text":"limpiar neveras","completed":false}]}}}`)

	bundle, err := svc.BundleFor(context.Background(), "53", day)
	require.NoError(t, err)
	require.NotNil(t, bundle)
	require.Len(t, bundle.Checklists, 3)

	// The admin document is a later merge source, so its version of
	// "1D Apertura" replaces the regular one entirely.
	apertura := bundle.Checklists["1D Apertura"]
	assert.Equal(t, domain.ProvenanceAdmin, apertura.Provenance)
	require.Len(t, apertura.Items, 2)
	assert.True(t, apertura.Items[0].Completed)
	assert.Equal(t, domain.Stats{Total: 2, Completed: 2, Pending: 0, Percentage: 100}, apertura.Stats)

	cierre := bundle.Checklists["1D Cierre"]
	assert.Equal(t, domain.ProvenanceRegular, cierre.Provenance)
	assert.Equal(t, "ana", cierre.Items[0].By)

	limpieza := bundle.Checklists["2S Limpieza"]
	assert.Equal(t, domain.ProvenanceRegular, limpieza.Provenance)
	assert.Equal(t, domain.Stats{Total: 1, Completed: 0, Pending: 1, Percentage: 0}, limpieza.Stats)
}

func TestBundleForDownloadFailureTreatedAsAbsent(t *testing.T) {
	storage, svc := checklistFixture()
	day := date(2024, time.March, 6)

	storage.searches[fileQuery("2024-03-06.json", "t1")] = []domain.Entry{{ID: "doc-reg", Name: "2024-03-06.json"}}
	storage.searches[fileQuery("2024-03-06.json", "at1")] = []domain.Entry{{ID: "doc-adm", Name: "2024-03-06.json"}}

	storage.files["doc-reg"] = []byte(`{"checklists":{"1D Apertura":{"items":[{"text":"abrir","completed":false}]}}}`)
	storage.downloadErr["doc-adm"] = errors.New("boom")

	bundle, err := svc.BundleFor(context.Background(), "53", day)
	require.NoError(t, err)
	require.NotNil(t, bundle)

	// The failed admin download degrades to absent, so the regular copy wins
	apertura := bundle.Checklists["1D Apertura"]
	assert.Equal(t, domain.ProvenanceRegular, apertura.Provenance)
	require.Len(t, apertura.Items, 1)
}

func TestBundleForParseFailureTreatedAsAbsent(t *testing.T) {
	storage, svc := checklistFixture()
	day := date(2024, time.March, 6)

	storage.searches[fileQuery("2024-03-06.json", "t1")] = []domain.Entry{{ID: "doc-reg", Name: "2024-03-06.json"}}
	storage.files["doc-reg"] = []byte(`{not json`)

	bundle, err := svc.BundleFor(context.Background(), "53", day)
	require.NoError(t, err)
	assert.Nil(t, bundle)
}

func TestBundleForSearchFailureAborts(t *testing.T) {
	storage, svc := checklistFixture()
	day := date(2024, time.March, 6)

	searchErr := errors.New("backend down")
	storage.searchErr[fileQuery("2024-03-06.json", "t1")] = searchErr

	_, err := svc.BundleFor(context.Background(), "53", day)
	assert.ErrorIs(t, err, searchErr)
}

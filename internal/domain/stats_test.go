package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name  string
		items []ChecklistItem
		want  Stats
	}{
		{
			name:  "empty list",
			items: nil,
			want:  Stats{},
		},
		{
			name: "all completed",
			items: []ChecklistItem{
				{Text: "a", Completed: true},
				{Text: "b", Completed: true},
			},
			want: Stats{Total: 2, Completed: 2, Pending: 0, Percentage: 100},
		},
		{
			name: "none completed",
			items: []ChecklistItem{
				{Text: "a"},
				{Text: "b"},
			},
			want: Stats{Total: 2, Completed: 0, Pending: 2, Percentage: 0},
		},
		{
			name: "one third rounds down",
			items: []ChecklistItem{
				{Text: "a", Completed: true},
				{Text: "b"},
				{Text: "c"},
			},
			want: Stats{Total: 3, Completed: 1, Pending: 2, Percentage: 33},
		},
		{
			name: "two thirds rounds up",
			items: []ChecklistItem{
				{Text: "a", Completed: true},
				{Text: "b", Completed: true},
				{Text: "c"},
			},
			want: Stats{Total: 3, Completed: 2, Pending: 1, Percentage: 67},
		},
		{
			name: "exact half",
			items: []ChecklistItem{
				{Text: "a", Completed: true},
				{Text: "b"},
			},
			want: Stats{Total: 2, Completed: 1, Pending: 1, Percentage: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStats(tt.items))
		})
	}
}

func TestClassifyChecklist(t *testing.T) {
	tests := []struct {
		name string
		want ChecklistClass
	}{
		{"1D Apertura", ClassDaily},
		{"12D Cierre", ClassDaily},
		{"2S Limpieza", ClassWeekly},
		{"3M Inventario", ClassMonthly},
		{"Apertura", ClassOther},
		{"D Apertura", ClassOther},
		{"1X Apertura", ClassOther},
		{"", ClassOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyChecklist(tt.name))
		})
	}
}

func TestBundleEntriesSorted(t *testing.T) {
	bundle := &ChecklistBundle{
		Checklists: map[string]ChecklistEntry{
			"2S Limpieza": {Name: "2S Limpieza"},
			"1D Apertura": {Name: "1D Apertura"},
			"1D Cierre":   {Name: "1D Cierre"},
		},
	}

	entries := bundle.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"1D Apertura", "1D Cierre", "2S Limpieza"}, names)
}

func TestBundleOverall(t *testing.T) {
	bundle := &ChecklistBundle{
		Checklists: map[string]ChecklistEntry{
			"1D Apertura": {Items: []ChecklistItem{
				{Completed: true}, {Completed: true},
			}},
			"2S Limpieza": {Items: []ChecklistItem{
				{Completed: false}, {Completed: false},
			}},
		},
	}

	assert.Equal(t, Stats{Total: 4, Completed: 2, Pending: 2, Percentage: 50}, bundle.Overall())
}

func TestStoreFolderSet(t *testing.T) {
	set := StoreFolderSet{TodayID: "t1", AdminHistoryID: "ah1"}

	id, ok := set.FolderID(RoleToday)
	assert.True(t, ok)
	assert.Equal(t, "t1", id)

	_, ok = set.FolderID(RoleHistory)
	assert.False(t, ok)

	id, ok = set.FolderID(RoleAdminHistory)
	assert.True(t, ok)
	assert.Equal(t, "ah1", id)

	assert.False(t, set.IsEmpty())
	assert.True(t, StoreFolderSet{}.IsEmpty())
}

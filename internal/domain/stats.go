package domain

import (
	"math"
	"regexp"
)

// Stats are the display-ready completion aggregates for one item list
type Stats struct {
	Total      int
	Completed  int
	Pending    int
	Percentage int
}

// ComputeStats derives completion stats from an item list. Percentage rounds
// to the nearest integer and is 0 for an empty list.
func ComputeStats(items []ChecklistItem) Stats {
	s := Stats{Total: len(items)}
	for _, item := range items {
		if item.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	if s.Total > 0 {
		s.Percentage = int(math.Round(100 * float64(s.Completed) / float64(s.Total)))
	}
	return s
}

// ChecklistClass buckets checklist names by their cadence
type ChecklistClass int

const (
	ClassDaily ChecklistClass = iota
	ClassWeekly
	ClassMonthly
	ClassOther
)

// String returns a human-readable representation of the class
func (c ChecklistClass) String() string {
	switch c {
	case ClassDaily:
		return "daily"
	case ClassWeekly:
		return "weekly"
	case ClassMonthly:
		return "monthly"
	default:
		return "other"
	}
}

// Checklist names follow a numeric-prefix-plus-letter convention:
// "1D Apertura" is daily, "2S Limpieza" weekly, "1M Inventario" monthly.
var checklistClassRe = regexp.MustCompile(`^[0-9]+([DSM])`)

// ClassifyChecklist buckets a checklist name by its leading prefix.
// Unmatched names classify as ClassOther.
func ClassifyChecklist(name string) ChecklistClass {
	m := checklistClassRe.FindStringSubmatch(name)
	if m == nil {
		return ClassOther
	}
	switch m[1] {
	case "D":
		return ClassDaily
	case "S":
		return ClassWeekly
	default:
		return ClassMonthly
	}
}

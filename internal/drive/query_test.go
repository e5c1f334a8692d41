package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryBuilder(t *testing.T) {
	tests := []struct {
		name  string
		query *Query
		want  string
	}{
		{
			name:  "exact name",
			query: NewQuery().Name("2024-03-10.json"),
			want:  "name = '2024-03-10.json'",
		},
		{
			name:  "name in parent not trashed",
			query: NewQuery().Name("Inventario.csv").InParents("abc123").NotTrashed(),
			want:  "name = 'Inventario.csv' and 'abc123' in parents and trashed = false",
		},
		{
			name:  "folders shorthand",
			query: NewQuery().Name("Dashboard").InParents("p1").Folders(),
			want:  "name = 'Dashboard' and 'p1' in parents and mimeType = 'application/vnd.google-apps.folder' and trashed = false",
		},
		{
			name:  "name contains",
			query: NewQuery().NameContains("weekly"),
			want:  "name contains 'weekly'",
		},
		{
			name:  "single quote escaped",
			query: NewQuery().Name("O'Hara"),
			want:  `name = 'O\'Hara'`,
		},
		{
			name:  "backslash escaped before quote",
			query: NewQuery().Name(`a\'b`),
			want:  `name = 'a\\\'b'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.String())
		})
	}
}

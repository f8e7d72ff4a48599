package activity

import (
	"testing"

	"team-tracker/internal/models"

	"github.com/stretchr/testify/require"
)

func TestFilterApply(t *testing.T) {
	entries := []models.ActivityLog{
		{ID: "1", UserID: "u1", Action: models.ActionUpdateStatus, EntityType: models.EntityTask, Details: models.PlainDetails("Status updated")},
		{ID: "2", UserID: "u2", Action: models.ActionCreateProject, EntityType: models.EntityProject, Details: models.PlainDetails("Launch")},
		{ID: "3", UserID: "u1", Action: models.ActionAddNote, EntityType: models.EntityTask,
			Details: models.StructuredDetails("Reviewed budget", &models.Impact{Type: models.ImpactLate, Label: "1 Day Late"})},
	}

	ids := func(es []models.ActivityLog) []string {
		out := []string{}
		for _, e := range es {
			out = append(out, e.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty filter keeps all", Filter{}, []string{"1", "2", "3"}},
		{"ALL keeps all", Filter{UserID: AllUsers}, []string{"1", "2", "3"}},
		{"user filter", Filter{UserID: "u1"}, []string{"1", "3"}},
		{"search action case-insensitive", Filter{Search: "update_status"}, []string{"1"}},
		{"search entity type", Filter{Search: "project"}, []string{"2"}},
		{"search parsed details text", Filter{Search: "BUDGET"}, []string{"3"}},
		{"search does not see raw envelope", Filter{Search: "impact"}, []string{}},
		{"whitespace term is literal", Filter{Search: " "}, []string{"1", "3"}},
		{"search and user combined", Filter{Search: "task", UserID: "u2"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ids(tt.filter.Apply(entries)))
		})
	}
}

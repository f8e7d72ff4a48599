package activity

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"team-tracker/internal/models"
)

var csvHeader = []string{"Date", "User", "Action", "Target", "Details"}

// ExportFilename names the download for an export taken at t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("audit-log-%s.csv", t.Format("2006-01-02"))
}

// WriteCSV writes one row per entry, in the order given. Details are the
// parsed display text, never the raw JSON envelope.
func WriteCSV(w io.Writer, entries []models.ActivityLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.User.Name,
			string(e.Action),
			fmt.Sprintf("%s: %s", e.EntityType, e.EntityID),
			e.Details.Text,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

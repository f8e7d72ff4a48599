package activity

import (
	"fmt"
	"math"
	"time"

	"team-tracker/internal/models"
)

const day = 24 * time.Hour

// Classify returns the completion verdict for a task due at dueDate and
// completed at completedAt. Tasks without a due date get no verdict.
//
// The result must be computed at the status transition and stored with the
// log entry; recomputing it later would move with the clock.
func Classify(dueDate *time.Time, completedAt time.Time) *models.Impact {
	if dueDate == nil {
		return nil
	}
	if !completedAt.After(*dueDate) {
		return &models.Impact{Type: models.ImpactOnTime, Label: "On Time"}
	}

	days := int(math.Ceil(float64(completedAt.Sub(*dueDate)) / float64(day)))
	unit := "Day"
	if days > 1 {
		unit = "Days"
	}
	return &models.Impact{
		Type:  models.ImpactLate,
		Label: fmt.Sprintf("%d %s Late", days, unit),
	}
}

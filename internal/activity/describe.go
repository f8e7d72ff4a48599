package activity

import (
	"fmt"
	"strings"

	"team-tracker/internal/models"
)

// ActionLabel renders a tag for display: "UPDATE_STATUS" becomes "UPDATE STATUS".
func ActionLabel(a models.Action) string {
	return strings.ReplaceAll(string(a), "_", " ")
}

// Summary renders a one-line sentence for an entry. Unknown actions fall back
// to "<name> performed <ACTION>".
func Summary(e models.ActivityLog) string {
	name := e.User.Name
	if name == "" {
		name = "Someone"
	}
	text := e.Details.Text

	switch e.Action {
	case models.ActionCreateTask:
		return fmt.Sprintf("%s created task %q", name, text)
	case models.ActionUpdateTask:
		if e.Field != nil && e.NewValue != nil {
			return fmt.Sprintf("%s changed %s to %s", name, *e.Field, *e.NewValue)
		}
		return fmt.Sprintf("%s edited a task", name)
	case models.ActionUpdateStatus:
		if e.NewValue != nil {
			s := fmt.Sprintf("%s moved a task to %s", name, strings.ReplaceAll(*e.NewValue, "_", " "))
			if e.Details.Impact != nil {
				s += " (" + e.Details.Impact.Label + ")"
			}
			return s
		}
	case models.ActionReassignTask:
		if e.NewValue != nil {
			return fmt.Sprintf("%s reassigned a task to %s", name, *e.NewValue)
		}
	case models.ActionDeleteTask:
		return fmt.Sprintf("%s deleted a task", name)
	case models.ActionAddNote:
		return fmt.Sprintf("%s added a manager note", name)
	case models.ActionCreateProject:
		return fmt.Sprintf("%s created project %q", name, text)
	case models.ActionCreateRequest:
		return fmt.Sprintf("%s filed a request", name)
	case models.ActionDeleteProject:
		return fmt.Sprintf("%s deleted a project", name)
	}
	return fmt.Sprintf("%s performed %s", name, ActionLabel(e.Action))
}

// Package notify delivers user notifications. Delivery is fire-and-forget:
// sinks log failures and never report them to the caller.
package notify

import (
	"context"

	"team-tracker/internal/models"
)

type Sink interface {
	Notify(ctx context.Context, userID string, typ models.NotificationType, message string, relatedID *string)
}

// Multi fans a notification out to every sink in order.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, userID string, typ models.NotificationType, message string, relatedID *string) {
	for _, s := range m {
		if s != nil {
			s.Notify(ctx, userID, typ, message, relatedID)
		}
	}
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(context.Context, string, models.NotificationType, string, *string) {}

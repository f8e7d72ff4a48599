package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"team-tracker/internal/models"

	"github.com/valkey-io/valkey-go"
)

// ValkeySink publishes each notification to the recipient's pub/sub channel.
// Nobody listening is not an error.
type ValkeySink struct {
	client valkey.Client
	logger *slog.Logger
	now    func() time.Time
}

// Message is the JSON payload published on a user channel.
type Message struct {
	Type      models.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	TaskID    *string                 `json:"task_id,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}

func NewValkeySink(addr string, logger *slog.Logger) (*ValkeySink, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("valkey notification sink ready", "address", addr)
	return &ValkeySink{client: client, logger: logger, now: time.Now}, nil
}

// Channel is the pub/sub channel for userID.
func Channel(userID string) string {
	return fmt.Sprintf("notifications:%s", userID)
}

func (s *ValkeySink) Notify(ctx context.Context, userID string, typ models.NotificationType, message string, relatedID *string) {
	payload, err := json.Marshal(Message{
		Type:      typ,
		Message:   message,
		TaskID:    relatedID,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn("failed to encode notification", "user_id", userID, "error", err)
		return
	}

	cmd := s.client.B().Publish().Channel(Channel(userID)).Message(string(payload)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		s.logger.Warn("failed to publish notification", "user_id", userID, "error", err)
	}
}

func (s *ValkeySink) Close() {
	s.client.Close()
}

package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationMessage is the wire form of a user-facing notification.
type NotificationMessage struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Op        string    `json:"op"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NewNotificationMessage(level, op, message string, at time.Time) *NotificationMessage {
	if at.IsZero() {
		at = time.Now()
	}
	return &NotificationMessage{
		ID:        uuid.NewString(),
		Level:     level,
		Op:        op,
		Message:   message,
		Timestamp: at.UTC(),
	}
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON decodes and checks a delivery body.
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Message == "" {
		return nil, fmt.Errorf("notification message has no text")
	}
	return &msg, nil
}

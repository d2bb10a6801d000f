package amqp

import (
	"encoding/json"
	"time"
)

// Alert kinds carried on the wire.
const (
	KindNotice    = "notice"
	KindBudget    = "budget"
	KindOverspend = "overspend"
	KindWeekly    = "weekly"
)

// AlertMessage is one user-facing message fanned out to notification
// consumers.
type AlertMessage struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAlertMessage(id, kind, message string) *AlertMessage {
	return &AlertMessage{
		ID:        id,
		Kind:      kind,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

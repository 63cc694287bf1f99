package websocket

import (
	"time"

	"github.com/jorik41/plctester/internal/runner"
)

type MessageType string

const (
	MessageTypeRunStarted    MessageType = "run_started"
	MessageTypeModuleStarted MessageType = "module_started"
	MessageTypeCaseStarted   MessageType = "case_started"
	MessageTypeStepStarted   MessageType = "step_started"
	MessageTypeCaseCompleted MessageType = "case_completed"
	MessageTypeRunCompleted  MessageType = "run_completed"
	MessageTypeRunFailed     MessageType = "run_failed"
)

// Message is the envelope pushed to connected clients.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// EventSink adapts the hub to the runner's event interface so run progress
// streams to every connected client.
type EventSink struct {
	hub *Hub
}

func NewEventSink(hub *Hub) *EventSink {
	return &EventSink{hub: hub}
}

func (s *EventSink) Publish(ev runner.Event) {
	s.hub.Broadcast(NewMessage(MessageType(ev.Type), ev))
}

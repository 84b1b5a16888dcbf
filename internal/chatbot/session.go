package chatbot

import (
	"time"

	"github.com/google/uuid"
)

// Session carries one conversation end to end.
type Session struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patientId,omitempty"`
	PatientName string    `json:"patientName,omitempty"`
	State       State     `json:"state"`
	Context     Context   `json:"context"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewSession returns a fresh session in the initial state.
func NewSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		State:     StateInitial,
		Context:   make(Context),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reply is the engine's answer to one inbound message.
type Reply struct {
	SessionID string            `json:"sessionId"`
	Message   string            `json:"message"`
	Options   []ReplyOption     `json:"options,omitempty"`
	State     State             `json:"state"`
	Completed bool              `json:"completed"`
	Data      map[string]string `json:"data,omitempty"`
}

// ReplyOption is a selectable choice presented to the patient. Value
// is what the client sends back as the next message when the option
// is picked; Display is the human-readable label.
type ReplyOption struct {
	ID      string `json:"id"`
	Display string `json:"display"`
	Value   string `json:"value"`
}

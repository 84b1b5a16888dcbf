// Package transcript records every conversation turn for later review.
// Writes are fire-and-forget from the engine's point of view: a failed
// append is reported to the operator log and never fails a user turn.
package transcript

import (
	"context"
	"time"
)

// Option is a selectable choice presented alongside a bot reply.
// Value is the raw text a client echoes back when the option is
// picked.
type Option struct {
	ID      string `json:"id"`
	Display string `json:"display"`
	Value   string `json:"value"`
}

// Entry is one recorded conversation turn.
type Entry struct {
	ID            string            `json:"id"`
	SessionID     string            `json:"sessionId"`
	PatientID     string            `json:"patientId,omitempty"`
	PatientName   string            `json:"patientName,omitempty"`
	State         string            `json:"state"`
	UserMessage   string            `json:"userMessage"`
	BotReply      string            `json:"botReply"`
	Options       []Option          `json:"options,omitempty"`
	Context       map[string]string `json:"context,omitempty"`
	MessageNumber int               `json:"messageNumber"`
	Timestamp     time.Time         `json:"timestamp"`
}

// Store persists conversation turns per session.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, sessionID string, limit int64) ([]Entry, error)
}

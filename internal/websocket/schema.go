package websocket

import "github.com/stemsi/class-subjects/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError  Event = "error"
	EventRecord Event = "record"
	EventPong   Event = "pong"
)

// RecordEvent announces a newly stored subjects record.
type RecordEvent struct {
	Event  Event                `json:"event"`
	Record model.SubjectsRecord `json:"record"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

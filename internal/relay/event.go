package relay

import "time"

// MaxMessageSize is the largest inbound frame the relay accepts, in bytes.
const MaxMessageSize = 10 * 1024

// Inbound message discriminants.
const (
	InboundTypeChat = "chat"
	InboundTypeName = "name"
)

// inboundEnvelope carries only the discriminant; the variant payloads are
// decoded separately so field validation stays next to each variant.
type inboundEnvelope struct {
	Type string `json:"type"`
}

// ChatMessage is the client payload for a chat event.
type ChatMessage struct {
	Text string `json:"text"`
}

// NameUpdate is the client payload for a display-name change.
type NameUpdate struct {
	Name string `json:"name"`
}

// ChatEvent is broadcast to room members for a validated chat message.
// UserID, UserName, and Time are filled server-side, never trusted from the
// client.
type ChatEvent struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Text     string `json:"text"`
	Time     string `json:"time"`
}

// NameEvent is broadcast to room members for a validated name update.
type NameEvent struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Time   string `json:"time"`
}

// eventTimeLayout matches the original ISO-8601 wire format with millisecond
// precision and a Z suffix.
const eventTimeLayout = "2006-01-02T15:04:05.000Z07:00"

func eventTime(t time.Time) string {
	return t.UTC().Format(eventTimeLayout)
}

package relay

import "context"

// Attachment is the immutable per-connection record fixed at accept time. It
// travels with the connection handle rather than any relay-local table, so it
// stays recoverable even after the in-memory registry is rebuilt.
type Attachment struct {
	Room   string
	UserID string
}

// MessageKind mirrors the transport frame type without importing it.
type MessageKind int

const (
	// MessageText is a text frame.
	MessageText MessageKind = iota
	// MessageBinary is a binary frame; the relay rejects these.
	MessageBinary
)

// Conn is the transport-side connection handle a relay owns exclusively.
type Conn interface {
	// Attachment returns the room/user pair bound at handshake time.
	Attachment() Attachment

	// WriteText sends one JSON text frame to the client.
	WriteText(ctx context.Context, payload []byte) error

	// Close terminates the connection with a close code and reason.
	Close(code int, reason string) error
}

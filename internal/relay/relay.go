// Package relay implements the per-room message relay: it owns the live
// connection set for one room, validates and routes inbound events, broadcasts
// to members, and manages the durable display-name store.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nuxflare/durable-websockets/internal/store"
)

// Relay is the exclusive handler for a single room. All processing is
// serialized through one mutex, so broadcast membership and the name store
// never see concurrent mutation for a room.
type Relay struct {
	room  string
	names store.NameStore
	log   *zerolog.Logger
	now   func() time.Time

	mu    sync.Mutex
	conns map[Conn]struct{}
}

func newRelay(room string, names store.NameStore, logger *zerolog.Logger) *Relay {
	return &Relay{
		room:  room,
		names: names,
		log:   logger,
		now:   time.Now,
		conns: make(map[Conn]struct{}),
	}
}

// Accept registers a connection in the live set. The connection's attachment
// is fixed by the transport before this call and never changes afterwards.
func (r *Relay) Accept(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[c] = struct{}{}
	att := c.Attachment()
	r.log.Info().Str("room", att.Room).Str("user_id", att.UserID).Msg("connection accepted")
}

// HandleMessage runs the validation pipeline for one inbound frame. A non-nil
// *CloseError return means the connection must be closed with that code and
// reason; nothing was broadcast in that case except for store-read
// degradation, which never fails the message.
func (r *Relay) HandleMessage(ctx context.Context, c Conn, kind MessageKind, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if kind != MessageText {
		return closeError(CloseInvalidPayload, "invalid message type")
	}
	if len(payload) > MaxMessageSize {
		return closeError(CloseMessageTooBig, "message too large")
	}

	var env inboundEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return closeError(CloseInvalidPayload, "invalid message format")
	}

	att := c.Attachment()
	switch env.Type {
	case InboundTypeChat:
		return r.handleChat(ctx, att, payload)
	case InboundTypeName:
		return r.handleName(ctx, att, payload)
	default:
		return closeError(CloseInvalidPayload, "invalid message format")
	}
}

func (r *Relay) handleChat(ctx context.Context, att Attachment, payload []byte) error {
	var msg ChatMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return closeError(CloseInvalidPayload, "invalid message format")
	}
	if strings.TrimSpace(msg.Text) == "" {
		return closeError(CloseInvalidPayload, "invalid message format")
	}

	name, err := r.names.GetName(ctx, att.Room, att.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			// Degrade to the default name rather than failing the chat.
			r.log.Warn().Err(err).Str("user_id", att.UserID).Msg("display name lookup failed")
		}
		name = att.UserID
	}

	r.broadcastEvent(ctx, att.Room, ChatEvent{
		Type:     InboundTypeChat,
		UserID:   att.UserID,
		UserName: name,
		Text:     msg.Text,
		Time:     eventTime(r.now()),
	})
	return nil
}

func (r *Relay) handleName(ctx context.Context, att Attachment, payload []byte) error {
	var upd NameUpdate
	if err := json.Unmarshal(payload, &upd); err != nil {
		return closeError(CloseInvalidPayload, "invalid message format")
	}
	trimmed := strings.TrimSpace(upd.Name)
	if trimmed == "" {
		return closeError(CloseInvalidPayload, "invalid message format")
	}

	// Persist before broadcasting so a relay restart can never lose an
	// update that members already saw.
	if err := r.names.PutName(ctx, att.Room, att.UserID, trimmed); err != nil {
		r.log.Error().Err(err).Str("user_id", att.UserID).Msg("display name write failed")
		return closeError(CloseInternalError, "internal error")
	}

	r.broadcastEvent(ctx, att.Room, NameEvent{
		Type:   InboundTypeName,
		UserID: att.UserID,
		Name:   trimmed,
		Time:   eventTime(r.now()),
	})
	return nil
}

// Publish broadcasts an already-shaped payload verbatim to every member whose
// attachment room matches. Write failures are connection-local: logged,
// skipped, and never surfaced to the caller.
func (r *Relay) Publish(ctx context.Context, room string, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.broadcastLocked(ctx, room, payload)
}

// HandleClose finalizes a closed connection: it leaves the live set and its
// display-name record is deleted. Code and reason are passed through from the
// transport, not rewritten.
func (r *Relay) HandleClose(ctx context.Context, c Conn, code int, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, c)

	att := c.Attachment()
	if err := r.names.DeleteName(ctx, att.Room, att.UserID); err != nil {
		r.log.Warn().Err(err).Str("user_id", att.UserID).Msg("display name delete failed")
	}

	r.log.Info().
		Str("room", att.Room).
		Str("user_id", att.UserID).
		Int("code", code).
		Str("reason", reason).
		Msg("connection closed")
}

func (r *Relay) broadcastEvent(ctx context.Context, room string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		r.log.Error().Err(err).Str("room", room).Msg("marshal broadcast event")
		return
	}
	r.broadcastLocked(ctx, room, payload)
}

// broadcastLocked fans out one text frame to every member of room. The room
// filter is kept even though an instance normally serves a single room, as a
// guard against any future multi-room hosting.
func (r *Relay) broadcastLocked(ctx context.Context, room string, payload []byte) {
	sent, failed := 0, 0
	for c := range r.conns {
		if c.Attachment().Room != room {
			continue
		}
		if err := c.WriteText(ctx, payload); err != nil {
			failed++
			r.log.Warn().Err(err).Str("room", room).Msg("broadcast write failed")
			continue
		}
		sent++
	}
	r.log.Debug().Str("room", room).Int("sent", sent).Int("failed", failed).Msg("broadcast")
}

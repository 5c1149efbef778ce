package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nuxflare/durable-websockets/internal/identity"
	"github.com/nuxflare/durable-websockets/internal/relay"
)

// wsConn adapts a websocket connection to relay.Conn and carries the
// attachment on the handle itself.
type wsConn struct {
	id   string
	att  relay.Attachment
	conn *websocket.Conn
}

func (c *wsConn) Attachment() relay.Attachment { return c.att }

func (c *wsConn) WriteText(ctx context.Context, payload []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, payload)
}

func (c *wsConn) Close(code int, reason string) error {
	return c.conn.Close(websocket.StatusCode(code), reason)
}

// WSHandler is the dispatcher entry point: it extracts identity from the
// handshake, resolves the room's relay instance, and bridges the socket to it.
// It is a plain net/http handler because the upgrade must hijack the
// connection before anything is written to the response.
type WSHandler struct {
	registry *relay.Registry
	log      *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(registry *relay.Registry, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{registry: registry, log: logger}
}

// ServeHTTP serves GET /ws. Malformed identity headers are rejected with an
// empty 400 before any relay instance is touched; non-upgrade requests that
// carry a valid identity get an empty 200.
func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	id, protocols, err := identity.FromHeader(r.Header)
	if err != nil {
		h.log.Warn().Err(err).Msg("handshake rejected")
		w.WriteHeader(stdhttp.StatusBadRequest)
		return
	}

	if !strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		w.WriteHeader(stdhttp.StatusOK)
		return
	}

	// The first surviving client offer, if any, is echoed back; the
	// identity token itself is never negotiated as a protocol.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:       protocols,
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()

	// The relay enforces the exact message cap; the transport limit only
	// guards the socket, with the same 1009 status on overflow.
	conn.SetReadLimit(2 * relay.MaxMessageSize)

	wc := &wsConn{
		id:   uuid.NewString(),
		att:  relay.Attachment{Room: id.Room, UserID: id.UserID},
		conn: conn,
	}

	rly := h.registry.Room(id.Room)
	rly.Accept(wc)

	h.serve(r.Context(), rly, wc)
}

// serve pumps inbound frames into the relay until the connection dies, then
// reports the final close code and reason back to it.
func (h *WSHandler) serve(ctx context.Context, rly *relay.Relay, wc *wsConn) {
	closeCode := int(websocket.StatusNormalClosure)
	closeReason := ""

	for {
		kind, payload, err := wc.conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				closeCode = int(status)
				var ce websocket.CloseError
				if errors.As(err, &ce) {
					closeReason = ce.Reason
				}
			} else if !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
				closeCode = int(websocket.StatusAbnormalClosure)
				h.log.Debug().Err(err).Str("conn_id", wc.id).Msg("ws read failed")
			}
			break
		}

		if err := rly.HandleMessage(ctx, wc, frameKind(kind), payload); err != nil {
			var ce *relay.CloseError
			if errors.As(err, &ce) {
				closeCode, closeReason = ce.Code, ce.Reason
				if closeErr := wc.Close(ce.Code, ce.Reason); closeErr != nil {
					h.log.Debug().Err(closeErr).Str("conn_id", wc.id).Msg("ws close failed")
				}
			}
			break
		}
	}

	rly.HandleClose(ctx, wc, closeCode, closeReason)
}

func frameKind(t websocket.MessageType) relay.MessageKind {
	if t == websocket.MessageText {
		return relay.MessageText
	}
	return relay.MessageBinary
}

package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nuxflare/durable-websockets/internal/relay"
)

// maxPublishBytes caps the body of a server-side publish request.
const maxPublishBytes = 1 << 20

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PublishHandler lets external collaborators inject a broadcast into a room
// without holding a client connection.
type PublishHandler struct {
	registry *relay.Registry
	log      *zerolog.Logger
}

// NewPublishHandler creates a new publish handler instance.
func NewPublishHandler(registry *relay.Registry, logger *zerolog.Logger) *PublishHandler {
	return &PublishHandler{registry: registry, log: logger}
}

// Publish handles POST /publish/:room. The payload is broadcast verbatim; the
// response is an empty acknowledgement regardless of delivery outcome.
func (h *PublishHandler) Publish(c *gin.Context) {
	room := c.Param("room")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPublishBytes+1))
	if err != nil {
		h.log.Warn().Err(err).Str("room", room).Msg("read publish body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if len(body) > maxPublishBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "payload too large"})
		return
	}
	if !json.Valid(body) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "payload must be valid JSON"})
		return
	}

	h.registry.Room(room).Publish(c.Request.Context(), room, body)
	c.Status(http.StatusOK)
}

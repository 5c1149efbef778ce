// Package identity extracts the room/user pair that clients smuggle through
// WebSocket subprotocol negotiation. The first token of the
// Sec-WebSocket-Protocol header is base64("room:userId"); any further tokens
// are ordinary subprotocol candidates.
package identity

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMalformedHeader reports a missing or undecodable identity token.
var ErrMalformedHeader = errors.New("malformed identity header")

const protocolHeader = "Sec-Websocket-Protocol"

// Identity is the immutable room/user pair fixed at handshake time.
type Identity struct {
	Room   string
	UserID string
}

// FromHeader parses the subprotocol header and returns the identity plus the
// remaining subprotocol tokens in their original offer order.
func FromHeader(h http.Header) (Identity, []string, error) {
	raw := h.Get(protocolHeader)
	if raw == "" {
		return Identity{}, nil, fmt.Errorf("%w: missing %s header", ErrMalformedHeader, protocolHeader)
	}

	// The identity token is the first comma-separated element, taken as-is:
	// a leading empty token is malformed, never skipped over.
	fields := strings.Split(raw, ",")
	first := strings.TrimSpace(fields[0])
	if first == "" {
		return Identity{}, nil, fmt.Errorf("%w: empty identity token", ErrMalformedHeader)
	}

	decoded, err := decodeToken(first)
	if err != nil {
		return Identity{}, nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	parts := strings.Split(decoded, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Identity{}, nil, fmt.Errorf("%w: want room and user id separated by a colon", ErrMalformedHeader)
	}

	return Identity{Room: parts[0], UserID: parts[1]}, remainingTokens(fields[1:]), nil
}

func remainingTokens(fields []string) []string {
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := strings.TrimSpace(f); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// decodeToken accepts both padded and unpadded standard base64, since clients
// commonly strip padding to keep the token header-safe.
func decodeToken(token string) (string, error) {
	if b, err := base64.StdEncoding.DecodeString(token); err == nil {
		return string(b), nil
	}
	b, err := base64.RawStdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("decode base64 token: %w", err)
	}
	return string(b), nil
}

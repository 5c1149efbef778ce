package http

import (
	"context"
	"encoding/base64"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/nuxflare/durable-websockets/internal/config"
	"github.com/nuxflare/durable-websockets/internal/relay"
	"github.com/nuxflare/durable-websockets/internal/store/sqlite"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	names, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create name store: %v", err)
	}
	t.Cleanup(func() { names.Close() })

	logger := zerolog.Nop()
	registry := relay.NewRegistry(names, &logger)

	server := NewServer(registry, &config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts
}

func identityToken(room, userID string) string {
	return base64.StdEncoding.EncodeToString([]byte(room + ":" + userID))
}

func wsURL(ts *httptest.Server) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
}

// dialRoom opens a connection for room/userID and waits until the relay has
// registered it by echoing back an initial name update.
func dialRoom(ctx context.Context, t *testing.T, ts *httptest.Server, room, userID, name string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, wsURL(ts), &websocket.DialOptions{
		Subprotocols: []string{identityToken(room, userID)},
	})
	if err != nil {
		t.Fatalf("dial %s/%s: %v", room, userID, err)
	}
	t.Cleanup(func() { conn.CloseNow() })

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"name","name":"`+name+`"}`)); err != nil {
		t.Fatalf("send name update: %v", err)
	}
	// Own broadcast confirms membership in the live set.
	if _, _, err := conn.Read(ctx); err != nil {
		t.Fatalf("read own name broadcast: %v", err)
	}

	return conn
}

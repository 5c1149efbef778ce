package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nuxflare/durable-websockets/internal/store"
)

// fakeConn records writes and closes instead of touching a socket.
type fakeConn struct {
	att      Attachment
	writes   [][]byte
	writeErr error
	closed   bool
	code     int
	reason   string
}

func newFakeConn(room, userID string) *fakeConn {
	return &fakeConn{att: Attachment{Room: room, UserID: userID}}
}

func (c *fakeConn) Attachment() Attachment { return c.att }

func (c *fakeConn) WriteText(_ context.Context, payload []byte) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	c.writes = append(c.writes, buf)
	return nil
}

func (c *fakeConn) Close(code int, reason string) error {
	c.closed = true
	c.code = code
	c.reason = reason
	return nil
}

// memStore is an in-memory store.NameStore with injectable failures.
type memStore struct {
	names  map[string]string
	getErr error
	putErr error
	delErr error
}

func newMemStore() *memStore {
	return &memStore{names: make(map[string]string)}
}

func (m *memStore) key(room, userID string) string { return room + "\x00" + userID }

func (m *memStore) GetName(_ context.Context, room, userID string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	name, ok := m.names[m.key(room, userID)]
	if !ok {
		return "", store.ErrNotFound
	}
	return name, nil
}

func (m *memStore) PutName(_ context.Context, room, userID, name string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.names[m.key(room, userID)] = name
	return nil
}

func (m *memStore) DeleteName(_ context.Context, room, userID string) error {
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.names, m.key(room, userID))
	return nil
}

func (m *memStore) Close() error { return nil }

func newTestRelay(room string, names store.NameStore) *Relay {
	logger := zerolog.Nop()
	return newRelay(room, names, &logger)
}

func mustCloseError(t *testing.T, err error, wantCode int) *CloseError {
	t.Helper()

	var ce *CloseError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CloseError, got %v", err)
	}
	if ce.Code != wantCode {
		t.Fatalf("got close code %d, want %d", ce.Code, wantCode)
	}
	return ce
}

func lastChatEvent(t *testing.T, c *fakeConn) ChatEvent {
	t.Helper()

	if len(c.writes) == 0 {
		t.Fatal("no broadcast received")
	}
	var ev ChatEvent
	if err := json.Unmarshal(c.writes[len(c.writes)-1], &ev); err != nil {
		t.Fatalf("unmarshal chat event: %v", err)
	}
	return ev
}

func lastNameEvent(t *testing.T, c *fakeConn) NameEvent {
	t.Helper()

	if len(c.writes) == 0 {
		t.Fatal("no broadcast received")
	}
	var ev NameEvent
	if err := json.Unmarshal(c.writes[len(c.writes)-1], &ev); err != nil {
		t.Fatalf("unmarshal name event: %v", err)
	}
	return ev
}

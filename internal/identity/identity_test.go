package identity

import (
	"encoding/base64"
	"errors"
	"net/http"
	"testing"
)

func headerWith(value string) http.Header {
	h := http.Header{}
	if value != "" {
		h.Set("Sec-WebSocket-Protocol", value)
	}
	return h
}

func encode(pair string) string {
	return base64.StdEncoding.EncodeToString([]byte(pair))
}

func TestFromHeader(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantRoom  string
		wantUser  string
		remaining []string
	}{
		{
			name:     "identity only",
			header:   encode("general:u-1"),
			wantRoom: "general",
			wantUser: "u-1",
		},
		{
			name:      "identity plus protocols",
			header:    encode("lobby:alice") + ", chat.v2, chat.v1",
			wantRoom:  "lobby",
			wantUser:  "alice",
			remaining: []string{"chat.v2", "chat.v1"},
		},
		{
			name:     "unpadded token",
			header:   base64.RawStdEncoding.EncodeToString([]byte("r:u")),
			wantRoom: "r",
			wantUser: "u",
		},
		{
			name:     "extra colons keep first two parts",
			header:   encode("room:user:extra"),
			wantRoom: "room",
			wantUser: "user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, rest, err := FromHeader(headerWith(tt.header))
			if err != nil {
				t.Fatalf("FromHeader: %v", err)
			}
			if id.Room != tt.wantRoom || id.UserID != tt.wantUser {
				t.Fatalf("got identity %+v, want %s/%s", id, tt.wantRoom, tt.wantUser)
			}
			if len(rest) != len(tt.remaining) {
				t.Fatalf("got remaining %v, want %v", rest, tt.remaining)
			}
			for i := range rest {
				if rest[i] != tt.remaining[i] {
					t.Fatalf("remaining[%d] = %q, want %q", i, rest[i], tt.remaining[i])
				}
			}
		})
	}
}

func TestFromHeaderMalformed(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not base64", "%%%not-base64%%%"},
		{"leading empty token", "," + encode("room:user")},
		{"leading whitespace token", " , " + encode("room:user")},
		{"no colon", encode("roomonly")},
		{"empty room", encode(":user")},
		{"empty user", encode("room:")},
		{"empty value", "  ,  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := FromHeader(headerWith(tt.header))
			if !errors.Is(err, ErrMalformedHeader) {
				t.Fatalf("got %v, want ErrMalformedHeader", err)
			}
		})
	}
}

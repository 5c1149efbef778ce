package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	room := flag.String("room", "general", "room id")
	user := flag.String("user", "tester", "user id")
	name := flag.String("name", "Smoke Tester", "display name to announce")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	token := base64.StdEncoding.EncodeToString([]byte(*room + ":" + *user))
	conn, _, err := websocket.Dial(ctx, *addr, &websocket.DialOptions{
		Subprotocols: []string{token},
	})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(v any) error {
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		return nil
	}

	if err := send(map[string]string{"type": "name", "name": *name}); err != nil {
		return err
	}
	if err := send(map[string]string{"type": "chat", "text": *text}); err != nil {
		return err
	}

	for {
		_, payload, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		var event struct {
			Type     string `json:"type"`
			UserID   string `json:"userId"`
			UserName string `json:"userName"`
			Name     string `json:"name"`
			Text     string `json:"text"`
			Time     string `json:"time"`
		}
		if err := json.Unmarshal(payload, &event); err != nil {
			fmt.Printf("Raw broadcast: %s\n", payload)
			continue
		}

		switch event.Type {
		case "name":
			fmt.Printf("Name: user=%s name=%q time=%s\n", event.UserID, event.Name, event.Time)
		case "chat":
			fmt.Printf("Chat: user=%s name=%q text=%q time=%s\n", event.UserID, event.UserName, event.Text, event.Time)
			return nil
		default:
			fmt.Printf("Broadcast: %s\n", payload)
		}
	}
}

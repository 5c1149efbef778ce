package relay

import (
	"context"
	"fmt"
	"testing"
)

// sinkConn discards writes so the benchmark measures fan-out, not buffering.
type sinkConn struct {
	att Attachment
}

func (c *sinkConn) Attachment() Attachment { return c.att }

func (c *sinkConn) WriteText(context.Context, []byte) error { return nil }

func (c *sinkConn) Close(int, string) error { return nil }

func benchmarkBroadcast(b *testing.B, recipients int) {
	r := newTestRelay("bench", newMemStore())
	for i := range recipients {
		r.Accept(&sinkConn{att: Attachment{Room: "bench", UserID: fmt.Sprintf("u%d", i)}})
	}

	sender := &sinkConn{att: Attachment{Room: "bench", UserID: "sender"}}
	r.Accept(sender)

	ctx := context.Background()
	payload := []byte(`{"type":"chat","text":"payload"}`)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := r.HandleMessage(ctx, sender, MessageText, payload); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBroadcast_10(b *testing.B)  { benchmarkBroadcast(b, 10) }
func BenchmarkBroadcast_100(b *testing.B) { benchmarkBroadcast(b, 100) }
func BenchmarkBroadcast_500(b *testing.B) { benchmarkBroadcast(b, 500) }

package broadcast

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWebSocketStreamsEvents(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(NewWebSocketServer(hub, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	deadline := time.Now().Add(5 * time.Second)
	for hub.Count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("server never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish(Started{RunID: "ws"})
	hub.Publish(Ended{RunID: "ws", FinalScore: 2, JumpHistory: []int{0, 4}})

	first, err := client.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if first.Event.Kind() != KindStarted || first.Event.Run() != "ws" {
		t.Errorf("first = %#v", first.Event)
	}

	second, err := client.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	ended, ok := second.Event.(Ended)
	if !ok || ended.FinalScore != 2 || len(ended.JumpHistory) != 2 {
		t.Errorf("second = %#v", second.Event)
	}
}

func TestDialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := Dial(ctx, "ws://127.0.0.1:1/events"); err == nil {
		t.Error("expected dial error")
	}
}

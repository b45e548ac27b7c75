package api_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/apprentice/internal/api"
	"github.com/p-n-ai/apprentice/internal/kv"
	"github.com/p-n-ai/apprentice/internal/progress"
)

func TestHub_StreamsProgressEvents(t *testing.T) {
	hub := api.NewHub()
	store := progress.New(kv.NewMemoryStore(), progress.WithEventLogger(hub))
	srv := httptest.NewServer(api.NewServer(testContent(), store, api.WithHub(hub)).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/progress"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	store.MarkRead("ppe")
	store.ToggleBookmark("ppe")

	for _, want := range []progress.EventKind{progress.EventItemRead, progress.EventBookmarkAdded} {
		var got progress.Event
		if err := wsjson.Read(ctx, conn, &got); err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if got.Kind != want || got.ItemID != "ppe" {
			t.Errorf("event = %+v, want %s for ppe", got, want)
		}
	}

	conn.Close(websocket.StatusNormalClosure, "")
	deadline = time.Now().Add(2 * time.Second)
	for hub.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never unregistered")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_NoClients(t *testing.T) {
	hub := api.NewHub()
	if err := hub.LogEvent(progress.Event{Kind: progress.EventItemRead, ItemID: "x"}); err != nil {
		t.Errorf("LogEvent() error = %v", err)
	}
}

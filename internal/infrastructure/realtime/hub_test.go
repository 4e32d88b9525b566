package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"assetverse-http-service/internal/domain/models"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, hub *Hub, email string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, r.URL.Query().Get("email"))
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?email=" + email
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubDeliversToRecipientOnly(t *testing.T) {
	hub := NewHub("*")
	ana := dial(t, hub, "ana@acme.io")
	bo := dial(t, hub, "bo@acme.io")
	waitForClients(t, hub, 2)

	err := hub.Publish(context.Background(), models.Event{
		Type:      models.EventRequestApproved,
		Recipient: "ana@acme.io",
		EntityID:  7,
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	ana.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.Event
	if err := ana.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != models.EventRequestApproved || got.EntityID != 7 {
		t.Fatalf("event = %+v", got)
	}

	bo.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := bo.ReadMessage(); err == nil {
		t.Fatal("bo should not receive ana's event")
	}
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub := NewHub("*")
	conn := dial(t, hub, "ana@acme.io")
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)

	// 无在线连接时发布不报错
	if err := hub.Publish(context.Background(), models.Event{Type: "x", Recipient: "ana@acme.io"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestHubCloseRejectsNewClients(t *testing.T) {
	hub := NewHub("*")
	conn := dial(t, hub, "ana@acme.io")
	waitForClients(t, hub, 1)

	hub.Close()
	if hub.ClientCount() != 0 {
		t.Fatalf("client count after close = %d", hub.ClientCount())
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("read after close err = %v, want normal closure", err)
	}
}

func TestCheckOrigin(t *testing.T) {
	hub := NewHub("http://app.example")
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.Header.Set("Origin", "http://app.example")
	if !hub.upgrader.CheckOrigin(req) {
		t.Fatal("configured origin should be accepted")
	}
	req.Header.Set("Origin", "http://evil.example")
	if hub.upgrader.CheckOrigin(req) {
		t.Fatal("foreign origin should be rejected")
	}
}

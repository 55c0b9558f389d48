package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"suraksha-sathi/internal/domain"
)

func dialStream(t *testing.T, serverURL, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + serverURL[len("http"):] + "/api/alerts/stream" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readStream(t *testing.T, conn *websocket.Conn) (string, domain.Alert) {
	t.Helper()
	var msg struct {
		Type    string       `json:"type"`
		Payload domain.Alert `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}

func readAlert(t *testing.T, conn *websocket.Conn) domain.Alert {
	t.Helper()
	typ, alert := readStream(t, conn)
	if typ != "alert" {
		t.Fatalf("expected alert message, got %s", typ)
	}
	return alert
}

func awaitReady(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	if typ, _ := readStream(t, conn); typ != "ready" {
		t.Fatalf("expected ready message, got %s", typ)
	}
}

func TestAlertStreamReplaysBacklogThenLive(t *testing.T) {
	env := newTestEnv()
	server := httptest.NewServer(env.api.Router())
	defer server.Close()

	ctx := context.Background()
	if _, err := env.api.alerts.Publish(ctx, "punjab", "warning", "river rising"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	conn := dialStream(t, server.URL, "")
	defer conn.Close()

	backlog := readAlert(t, conn)
	if backlog.Message != "river rising" {
		t.Fatalf("expected backlog alert, got %+v", backlog)
	}
	awaitReady(t, conn)

	published, err := env.api.alerts.Publish(ctx, "delhi", "danger", "heat wave")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	live := readAlert(t, conn)
	if live.ID != published.ID || live.Region != "delhi" {
		t.Fatalf("expected live alert, got %+v", live)
	}
}

func TestAlertStreamRegionFilter(t *testing.T) {
	env := newTestEnv()
	server := httptest.NewServer(env.api.Router())
	defer server.Close()

	conn := dialStream(t, server.URL, "?region=punjab")
	defer conn.Close()
	awaitReady(t, conn)

	ctx := context.Background()
	// Filtered out: different region.
	if _, err := env.api.alerts.Publish(ctx, "delhi", "info", "heat advisory"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	// Delivered: region-wide broadcast.
	if _, err := env.api.alerts.Publish(ctx, "all", "danger", "cyclone warning"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	// Delivered: matching region.
	if _, err := env.api.alerts.Publish(ctx, "punjab", "warning", "river rising"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	first := readAlert(t, conn)
	if first.Region != "all" {
		t.Fatalf("expected the broadcast alert first, got %+v", first)
	}
	second := readAlert(t, conn)
	if second.Region != "punjab" {
		t.Fatalf("expected the punjab alert, got %+v", second)
	}
}

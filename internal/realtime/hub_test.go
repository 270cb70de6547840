package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"github.com/carebridge-health/telecare-platform/internal/session"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

type stubVerifier struct {
	valid string
}

func (v *stubVerifier) VerifySessionToken(token string) (session.Session, error) {
	if token != v.valid {
		return session.Session{}, errors.New("invalid token")
	}
	return session.Session{UserID: "user-1", Role: session.RolePatient}, nil
}

func hubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/realtime/ws", hub.HandleWebSocket)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, baseURL, query string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/realtime/ws" + query
	conn, err := websocket.Dial(wsURL, "", baseURL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func recvTyped(t *testing.T, conn *websocket.Conn, wantType string) OutboundMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		var msg OutboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			t.Fatalf("receive while waiting for %q: %v", wantType, err)
		}
		if msg.Type == wantType {
			return msg
		}
	}
	t.Fatalf("timed out waiting for %q message", wantType)
	return OutboundMessage{}
}

func TestHubSubscribeAndChange(t *testing.T) {
	bus := NewMemoryBus()
	hub := NewHub(bus, nil, nil, logging.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.Run(ctx) }()

	srv := hubServer(t, hub)
	conn := dial(t, srv.URL, "")

	if err := websocket.JSON.Send(conn, InboundMessage{
		Type: "subscribe", Table: "appointments", Filter: "patient_id=eq.patient-1",
	}); err != nil {
		t.Fatalf("send subscribe: %v", err)
	}
	recvTyped(t, conn, "subscribed")

	_ = bus.Publish(ctx, ChangeEvent{
		Table: "appointments", Op: OpUpdate,
		FilterColumn: "patient_id", FilterValue: "patient-1",
	})

	msg := recvTyped(t, conn, "change")
	if msg.Table != "appointments" || msg.Op != OpUpdate {
		t.Fatalf("unexpected change message: %+v", msg)
	}
}

func TestHubChangeForOtherPatientNotDelivered(t *testing.T) {
	bus := NewMemoryBus()
	hub := NewHub(bus, nil, nil, logging.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.Run(ctx) }()

	srv := hubServer(t, hub)
	conn := dial(t, srv.URL, "")

	if err := websocket.JSON.Send(conn, InboundMessage{
		Type: "subscribe", Table: "appointments", Filter: "patient_id=eq.patient-1",
	}); err != nil {
		t.Fatalf("send subscribe: %v", err)
	}
	recvTyped(t, conn, "subscribed")

	_ = bus.Publish(ctx, ChangeEvent{
		Table: "appointments", Op: OpInsert,
		FilterColumn: "patient_id", FilterValue: "patient-2",
	})
	// A ping/pong round trip after the publish proves the change was dropped.
	if err := websocket.JSON.Send(conn, InboundMessage{Type: "ping"}); err != nil {
		t.Fatalf("send ping: %v", err)
	}
	msg := recvTyped(t, conn, "pong")
	if msg.Type != "pong" {
		t.Fatalf("expected pong, got %+v", msg)
	}
}

func TestHubSubscribeWithoutFilterRejected(t *testing.T) {
	hub := NewHub(NewMemoryBus(), nil, nil, logging.Default())
	srv := hubServer(t, hub)
	conn := dial(t, srv.URL, "")

	if err := websocket.JSON.Send(conn, InboundMessage{Type: "subscribe", Table: "appointments"}); err != nil {
		t.Fatalf("send subscribe: %v", err)
	}
	recvTyped(t, conn, "error")
}

func TestHubRejectsInvalidToken(t *testing.T) {
	hub := NewHub(NewMemoryBus(), &stubVerifier{valid: "good-token"}, nil, logging.Default())
	srv := hubServer(t, hub)
	conn := dial(t, srv.URL, "?token=bad-token")

	recvTyped(t, conn, "error")
}

func TestHubAcceptsValidToken(t *testing.T) {
	hub := NewHub(NewMemoryBus(), &stubVerifier{valid: "good-token"}, nil, logging.Default())
	srv := hubServer(t, hub)
	conn := dial(t, srv.URL, "?token=good-token")

	if err := websocket.JSON.Send(conn, InboundMessage{Type: "ping"}); err != nil {
		t.Fatalf("send ping: %v", err)
	}
	recvTyped(t, conn, "pong")
}

package realtime

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/carebridge-health/telecare-platform/internal/observability/metrics"
	"github.com/carebridge-health/telecare-platform/internal/session"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

// TokenVerifier authenticates websocket clients. Browsers cannot set headers
// on websocket dials, so the token arrives as a query parameter.
type TokenVerifier interface {
	VerifySessionToken(token string) (session.Session, error)
}

// InboundMessage is what a dashboard sends over the socket.
type InboundMessage struct {
	Type   string `json:"type"` // "subscribe", "unsubscribe", "ping"
	Table  string `json:"table"`
	Filter string `json:"filter"` // "<column>=eq.<value>"
}

// OutboundMessage is what the hub sends back.
type OutboundMessage struct {
	Type    string `json:"type"` // "subscribed", "unsubscribed", "change", "pong", "error"
	Table   string `json:"table,omitempty"`
	Op      string `json:"op,omitempty"`
	Message string `json:"message,omitempty"`
}

type tableFilter struct {
	column string
	value  string
}

type hubConn struct {
	conn *websocket.Conn

	mu   sync.Mutex
	subs map[string]tableFilter // table -> active filter
}

func (c *hubConn) send(msg OutboundMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = websocket.JSON.Send(c.conn, msg)
}

// Hub bridges the change bus to websocket subscribers. Events are fanned out
// payload-less and never buffered or deduplicated.
type Hub struct {
	bus      Bus
	verifier TokenVerifier
	logger   *logging.Logger
	metrics  *metrics.RealtimeMetrics

	mu    sync.RWMutex
	conns map[*hubConn]struct{}
}

// NewHub creates a hub. The verifier is optional; without one the socket is
// open (development only).
func NewHub(bus Bus, verifier TokenVerifier, m *metrics.RealtimeMetrics, logger *logging.Logger) *Hub {
	if bus == nil {
		panic("realtime: bus required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		bus:      bus,
		verifier: verifier,
		logger:   logger.Component("realtime.hub"),
		metrics:  m,
		conns:    make(map[*hubConn]struct{}),
	}
}

// Run consumes the change bus until ctx is cancelled. Call in a goroutine.
func (h *Hub) Run(ctx context.Context) error {
	events, err := h.bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	for event := range events {
		h.dispatch(event)
	}
	return nil
}

func (h *Hub) dispatch(event ChangeEvent) {
	h.mu.RLock()
	conns := make([]*hubConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.mu.Lock()
		filter, ok := c.subs[event.Table]
		c.mu.Unlock()
		if !ok || !event.Matches(event.Table, filter.column, filter.value) {
			continue
		}
		c.send(OutboundMessage{Type: "change", Table: event.Table, Op: event.Op})
		h.metrics.ObserveChangeDelivered(event.Table)
	}
}

// HandleWebSocket upgrades the request and serves the subscription protocol.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Hub) serveWS(conn *websocket.Conn, r *http.Request) {
	if h.verifier != nil {
		token := r.URL.Query().Get("token")
		if _, err := h.verifier.VerifySessionToken(token); err != nil {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Message: "invalid token"})
			return
		}
	}

	c := &hubConn{conn: conn, subs: make(map[string]tableFilter)}
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.conns, c)
		h.mu.Unlock()
	}()

	h.logger.Debug("realtime connection opened", "remote", r.RemoteAddr)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("realtime connection closed", "error", err)
			return
		}

		switch msg.Type {
		case "ping":
			c.send(OutboundMessage{Type: "pong"})
		case "subscribe":
			h.subscribe(c, msg)
		case "unsubscribe":
			c.mu.Lock()
			delete(c.subs, msg.Table)
			c.mu.Unlock()
			c.send(OutboundMessage{Type: "unsubscribed", Table: msg.Table})
		}
	}
}

// subscribe installs the filter for a table. An absent filter value never
// opens a subscription; a repeated subscribe for the same table replaces the
// previous filter, which is the teardown-and-reopen transition.
func (h *Hub) subscribe(c *hubConn, msg InboundMessage) {
	column, value, ok := ParseFilter(msg.Filter)
	if msg.Table == "" || !ok || value == "" {
		c.send(OutboundMessage{Type: "error", Table: msg.Table, Message: "subscribe requires table and <column>=eq.<value> filter"})
		return
	}
	c.mu.Lock()
	c.subs[msg.Table] = tableFilter{column: column, value: value}
	c.mu.Unlock()
	h.metrics.ObserveSubscription(msg.Table)
	c.send(OutboundMessage{Type: "subscribed", Table: msg.Table})
}

// ConnCount reports live websocket connections.
func (h *Hub) ConnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

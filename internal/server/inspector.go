// Package server hosts the debug inspector: a read-only HTTP endpoint
// that streams a world's lifecycle events to attached websocket
// clients and serves a stats snapshot. It observes the world through
// its event bus and never mutates it; the validator itself has no
// network surface.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/strata-ecs/strata/internal/core/events/bus"
	"github.com/strata-ecs/strata/internal/core/observability/log"
	"github.com/strata-ecs/strata/internal/core/world"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wireEvent is the JSON frame sent to inspector clients.
type wireEvent struct {
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Inspector streams one world's events over websockets.
type Inspector struct {
	world  *world.World
	logger *log.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	sub     *bus.Subscription
	srv     *http.Server
}

// NewInspector builds an inspector for a world. A nil logger silences
// it.
func NewInspector(w *world.World, logger *log.Logger) *Inspector {
	if logger == nil {
		logger = log.Nop()
	}
	return &Inspector{
		world:   w,
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
	}
}

// Handler returns the inspector's HTTP handler: /ws upgrades to a
// websocket event stream, /stats serves a JSON snapshot.
func (i *Inspector) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", i.handleWebSocket)
	mux.HandleFunc("/stats", i.handleStats)
	return mux
}

// Start subscribes to the world's bus and serves the handler on addr
// in a background goroutine.
func (i *Inspector) Start(addr string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.sub = i.world.Bus().Subscribe(bus.TypeAny, i.broadcast)
	i.srv = &http.Server{Addr: addr, Handler: i.Handler()}
	go func() {
		if err := i.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			i.logger.Error("inspector server stopped", zap.Error(err))
		}
	}()
	i.logger.Info("inspector listening", zap.String("addr", addr))
	return nil
}

// Stop cancels the bus subscription, closes clients and shuts the
// server down.
func (i *Inspector) Stop(ctx context.Context) error {
	i.mu.Lock()
	if i.sub != nil {
		i.sub.Cancel()
		i.sub = nil
	}
	for conn := range i.clients {
		_ = conn.Close()
	}
	i.clients = make(map[*websocket.Conn]bool)
	srv := i.srv
	i.srv = nil
	i.mu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

func (i *Inspector) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		i.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	i.mu.Lock()
	i.clients[conn] = true
	// Tests attach the handler without Start; subscribe lazily so the
	// stream works either way.
	if i.sub == nil {
		i.sub = i.world.Bus().Subscribe(bus.TypeAny, i.broadcast)
	}
	i.mu.Unlock()

	i.logger.Debug("inspector client connected", zap.String("remote", conn.RemoteAddr().String()))

	// Drain the read side so close frames are processed; the stream is
	// one-way.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				i.drop(conn)
				return
			}
		}
	}()
}

func (i *Inspector) handleStats(w http.ResponseWriter, _ *http.Request) {
	snapshot := struct {
		World      string `json:"world"`
		Entities   int    `json:"entities"`
		Archetypes int    `json:"archetypes"`
		Invariants int    `json:"invariants"`
		Cursor     int    `json:"cursor"`
		Violated   bool   `json:"violated"`
	}{
		World:      i.world.ID(),
		Entities:   i.world.EntityCount(),
		Archetypes: i.world.ArchetypeCount(),
		Invariants: i.world.InvariantCount(),
		Cursor:     i.world.Cursor(),
		Violated:   i.world.Err() != nil,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snapshot)
}

func (i *Inspector) broadcast(event bus.Event) error {
	frame, err := json.Marshal(wireEvent{
		Type:      string(event.Type),
		Source:    event.Source,
		Timestamp: event.Timestamp,
		Data:      event.Data,
	})
	if err != nil {
		return err
	}

	i.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(i.clients))
	for conn := range i.clients {
		conns = append(conns, conn)
	}
	i.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			i.drop(conn)
		}
	}
	return nil
}

func (i *Inspector) drop(conn *websocket.Conn) {
	i.mu.Lock()
	delete(i.clients, conn)
	i.mu.Unlock()
	_ = conn.Close()
}

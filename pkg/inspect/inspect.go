// Package inspect exposes a live HTTP inspector for storekit stores:
// registry and state snapshots over REST, and a WebSocket feed of every
// dispatched action.
//
// Wire the feed by tapping a store's backend:
//
//	reg := storekit.NewRegistry()
//	srv := inspect.NewServer(reg)
//	store, _ := storekit.New(def, storekit.WithBackend(srv.Tap(backend)),
//	    storekit.WithRegistry(reg))
//	http.ListenAndServe(":6360", srv.Handler())
package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/storekit-dev/storekit/pkg/storekit"
)

const (
	// feedWriteTimeout is the maximum time to wait when sending to a
	// feed client.
	feedWriteTimeout = 10 * time.Second
	// feedPongWait is how long a feed connection may stay silent before
	// its read loop gives up. Refreshed on every pong.
	feedPongWait = 60 * time.Second
	// feedPingInterval must be shorter than feedPongWait so an idle but
	// healthy client keeps answering in time.
	feedPingInterval = 30 * time.Second
)

// Server serves inspector endpoints for one store registry.
type Server struct {
	registry *storekit.Registry
	logger   *slog.Logger

	mu       sync.RWMutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
}

// Option configures the inspector server.
type Option func(*Server)

// WithLogger sets the server's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates an inspector over the given registry.
func NewServer(reg *storekit.Registry, opts ...Option) *Server {
	s := &Server{
		registry: reg,
		logger:   slog.Default(),
		clients:  make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Inspector is a local debugging tool
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// storeSummary is the wire shape of one registered store.
type storeSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Children []string `json:"children,omitempty"`
}

// storeState is the wire shape of a state snapshot.
type storeState struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State any    `json:"state"`
}

// feedEvent is one dispatched action on the WebSocket feed.
type feedEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Handler returns the inspector's HTTP routes:
//
//	GET /stores            - registered stores
//	GET /stores/{id}/state - state snapshot for one store
//	GET /feed              - WebSocket feed of dispatched actions
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/stores", s.handleStores)
	r.Get("/stores/{id}/state", s.handleStoreState)
	r.Get("/feed", s.handleFeed)
	return r
}

func (s *Server) handleStores(w http.ResponseWriter, req *http.Request) {
	stores := s.registry.Stores()
	out := make([]storeSummary, 0, len(stores))
	for _, st := range stores {
		summary := storeSummary{ID: st.ID().String(), Name: st.Name()}
		for _, child := range st.Children() {
			summary.Children = append(summary.Children, child.ID().String())
		}
		out = append(out, summary)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStoreState(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		http.Error(w, "invalid store id", http.StatusBadRequest)
		return
	}
	st := s.registry.Lookup(id)
	if st == nil {
		http.Error(w, "store not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, storeState{
		ID:    st.ID().String(),
		Name:  st.Name(),
		State: st.State(),
	})
}

// handleFeed upgrades to WebSocket and holds the connection open until
// the client disconnects or stops answering pings. Dispatched actions
// arrive via Tap broadcasts.
func (s *Server) handleFeed(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	stop := make(chan struct{})
	go s.pingLoop(conn, stop)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	close(stop)

	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

// pingLoop keeps one feed connection's read deadline alive. WriteControl
// is safe alongside broadcast writes.
func (s *Server) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(feedPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(feedWriteTimeout)); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

// Tap wraps a backend so every dispatched action is broadcast to feed
// clients before being forwarded.
func (s *Server) Tap(next storekit.Backend) storekit.Backend {
	return storekit.BackendFunc(func(act storekit.Action) {
		s.broadcast(feedEvent{Type: act.Type, Payload: feedPayload(act.Payload)})
		next.Dispatch(act)
	})
}

// ClientCount returns the number of connected feed clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close closes all feed connections.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
}

func (s *Server) broadcast(ev feedEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.Warn("feed event not serializable", "type", ev.Type, "error", err)
		return
	}

	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	for _, client := range clients {
		client.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			s.mu.Lock()
			delete(s.clients, client)
			s.mu.Unlock()
			client.Close()
		}
	}
}

// feedPayload converts payloads that do not marshal cleanly. Errors are
// common ERROR dispatch payloads and have no JSON form of their own.
func feedPayload(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

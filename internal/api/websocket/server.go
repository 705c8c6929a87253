package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fortuna/wicket/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development (TODO: restrict in production)
	},
}

// Server pushes live snapshots and lifecycle changes to WebSocket consumers.
// It is one sink of the scheduler's publisher fan-out.
type Server struct {
	port   string
	server *http.Server
	hub    *Hub
}

// NewServer creates a new WebSocket server
func NewServer() *Server {
	return &Server{
		hub: NewHub(),
	}
}

// Start starts the WebSocket server
func (s *Server) Start(port string) error {
	s.port = port

	// Start the hub in a goroutine
	go s.hub.Run()

	// Set up HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/matches/live", s.handleLiveMatches)
	mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}

	log.Printf("WebSocket server listening on :%s", port)
	return s.server.ListenAndServe()
}

// handleLiveMatches upgrades a connection and registers it with the hub
func (s *Server) handleLiveMatches(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// PublishSnapshot broadcasts live and scorecard snapshots to connected
// clients. Static kinds are not pushed; consumers fetch those over REST.
func (s *Server) PublishSnapshot(ctx context.Context, matchID string, kind store.SnapshotKind, payload json.RawMessage) error {
	if kind != store.KindLive && kind != store.KindScorecard {
		return nil
	}
	s.hub.Broadcast(&Envelope{
		Type:      "snapshot",
		MatchID:   matchID,
		Kind:      string(kind),
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	})
	return nil
}

// PublishStatusChange broadcasts a lifecycle transition to connected clients.
func (s *Server) PublishStatusChange(ctx context.Context, matchID string, status store.MatchStatus) error {
	s.hub.Broadcast(&Envelope{
		Type:      "status",
		MatchID:   matchID,
		Status:    string(status),
		Timestamp: time.Now().Unix(),
	})
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

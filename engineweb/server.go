package engineweb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"audiograph/graph"
)

// NodeStatus is the JSON-serializable snapshot of one node's lifecycle
// state, broadcast on every tick.
type NodeStatus struct {
	Index  int    `json:"index"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// Message is the envelope wrapping every WebSocket payload.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

func statusName(s int32) string {
	switch s {
	case graph.StatusInit:
		return "init"
	case graph.StatusReady:
		return "ready"
	case graph.StatusProcessed:
		return "processed"
	default:
		return "unknown"
	}
}

// Server exposes a read-only HTTP/WebSocket view of a graph.Graph's node
// statuses, polled at a fixed interval.
type Server struct {
	g          *graph.Graph
	port       int
	hub        *Hub
	httpServer *http.Server
	interval   time.Duration

	mu sync.RWMutex
}

// NewServer builds a status server over g, broadcasting every interval.
func NewServer(g *graph.Graph, port int, interval time.Duration) *Server {
	return &Server{g: g, port: port, hub: NewHub(), interval: interval}
}

// Start runs the HTTP server and the broadcast loop; it blocks until the
// server stops.
func (s *Server) Start() error {
	go s.hub.Run()
	go s.broadcastLoop()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/status", s.handleAPIStatus)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("engineweb server starting", "port", s.port)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) snapshot() []NodeStatus {
	n := s.g.NumNodes()
	out := make([]NodeStatus, 0, n)
	for i := 0; i < n; i++ {
		node, err := s.g.Node(graph.NodeHandle(i))
		if err != nil {
			continue
		}
		out = append(out, NodeStatus{
			Index:  i,
			Type:   fmt.Sprintf("%T", node),
			Status: statusName(node.Status().Load()),
		})
	}
	return out
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("engineweb: websocket upgrade failed", "error", err)
		return
	}

	client := &Client{hub: s.hub, conn: conn, send: make(chan []byte, 256)}
	s.hub.register <- client

	s.sendSnapshot(client)

	go client.writePump()
	client.readPump(nil)
}

func (s *Server) sendSnapshot(client *Client) {
	msg := Message{Type: "status", Payload: s.snapshot()}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("engineweb: failed to marshal status", "error", err)
		return
	}
	client.send <- data
}

func (s *Server) broadcastLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for range ticker.C {
		if s.hub.ClientCount() == 0 {
			continue
		}
		msg := Message{Type: "status", Payload: s.snapshot()}
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		s.hub.Broadcast(data)
	}
}

func (s *Server) handleAPIStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshot())
}

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"Go2FlowLens/internal/aggregate"
	"Go2FlowLens/internal/config"
	"Go2FlowLens/internal/model"
	"Go2FlowLens/internal/report"
	"Go2FlowLens/internal/table"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the latest analysis report over HTTP. The report is
// recomputed from the result tables whenever they change on disk, and every
// recomputation is pushed to connected websocket clients.
type Server struct {
	results config.ResultsConfig

	mu        sync.RWMutex
	current   model.Report
	hasReport bool

	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex
	broadcast chan model.Report
}

// NewServer builds a server around the configured result paths and registers
// the Prometheus collectors.
func NewServer(results config.ResultsConfig) (*Server, error) {
	if err := Register(prometheus.DefaultRegisterer); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	return &Server{
		results: results,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan model.Report, 16),
	}, nil
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/report", s.handleReport).Methods("GET")
	r.HandleFunc("/api/v1/report/text", s.handleReportText).Methods("GET")
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	r.HandleFunc("/ws", s.handleWebSocket)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Run starts the websocket broadcaster and the result-file watcher, then
// blocks until the context is cancelled. An initial refresh happens on
// startup; a missing alerts table at that point is not fatal, the server
// simply waits for results to appear.
func (s *Server) Run(ctx context.Context) error {
	go s.broadcastLoop(ctx)

	if err := s.Refresh(); err != nil {
		log.Printf("Initial report refresh failed: %v", err)
	}
	return s.watch(ctx)
}

// Refresh reloads the result tables and swaps in a freshly aggregated
// report.
func (s *Server) Refresh() error {
	start := time.Now()

	alerts, err := table.LoadAlerts(s.results.AlertsPath)
	if err != nil {
		observeRefresh(time.Since(start), OutcomeError)
		return fmt.Errorf("failed to refresh report: %w", err)
	}
	blocking, err := table.LoadBlocking(s.results.BlockingPath)
	if err != nil {
		observeRefresh(time.Since(start), OutcomeError)
		return fmt.Errorf("failed to refresh report: %w", err)
	}

	rep := aggregate.Aggregate(alerts, blocking)

	s.mu.Lock()
	s.current = rep
	s.hasReport = true
	s.mu.Unlock()

	observeRefresh(time.Since(start), OutcomeSuccess)
	recordRates(rep.Accuracy)

	select {
	case s.broadcast <- rep:
	default:
	}

	log.Printf("Report refreshed: %d alerts from %d workers", rep.TotalAlerts, rep.Workers)
	return nil
}

// watch re-aggregates whenever the alerts or blocking tables change. The
// parent directories are watched rather than the files themselves so that
// files created after startup are picked up.
func (s *Server) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	targets := map[string]bool{
		filepath.Clean(s.results.AlertsPath):   true,
		filepath.Clean(s.results.BlockingPath): true,
	}
	dirs := map[string]bool{}
	for path := range targets {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch '%s': %w", dir, err)
		}
		log.Printf("Watching %s for result changes", dir)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := s.Refresh(); err != nil {
				log.Printf("Refresh after %s failed: %v", event.Name, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rep := <-s.broadcast:
			// Dead connections are collected first; removeClient takes the
			// write lock, which must not happen under the read lock.
			var dead []*websocket.Conn
			s.clientsMu.RLock()
			for client := range s.clients {
				if err := client.WriteJSON(rep); err != nil {
					log.Printf("WebSocket write error: %v", err)
					dead = append(dead, client)
				}
			}
			s.clientsMu.RUnlock()
			for _, client := range dead {
				client.Close()
				s.removeClient(client)
			}
		}
	}
}

func (s *Server) snapshot() (model.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.hasReport
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	countRequest("report")
	rep, ok := s.snapshot()
	if !ok {
		http.Error(w, "no report available yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		log.Printf("Failed to encode report: %v", err)
	}
}

func (s *Server) handleReportText(w http.ResponseWriter, r *http.Request) {
	countRequest("report_text")
	rep, ok := s.snapshot()
	if !ok {
		http.Error(w, "no report available yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := report.Render(w, rep); err != nil {
		log.Printf("Failed to render report: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()
	log.Printf("WebSocket client connected")

	// Push the current report immediately so a new client does not wait for
	// the next file change.
	if rep, ok := s.snapshot(); ok {
		if err := conn.WriteJSON(rep); err != nil {
			log.Printf("WebSocket write error: %v", err)
		}
	}

	for {
		if _, _, err := conn.NextReader(); err != nil {
			s.removeClient(conn)
			break
		}
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, conn)
}

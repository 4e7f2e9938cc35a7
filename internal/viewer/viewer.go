// Package viewer serves the analyzed schedule over local HTTP so the
// graph can be inspected from a browser or scraped by tooling. The server
// holds exactly one analysis at a time; posting a new schedule document
// replaces it.
package viewer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AstridBonoan/plumbline/internal/intel"
	"github.com/AstridBonoan/plumbline/internal/loader"
	"github.com/AstridBonoan/plumbline/internal/schedule"
)

// --- Graph types (the normalised schema the endpoints serve) ---

type GraphNode struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Status           string  `json:"status"`
	DurationDays     int     `json:"duration_days"`
	SlackDays        int     `json:"slack_days"`
	IsCritical       bool    `json:"is_critical"`
	DelayProbability float64 `json:"delay_probability"`
}

type GraphEdge struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Type    string `json:"type"`
	LagDays int    `json:"lag_days"`
}

type GraphMetadata struct {
	AnalysisID   string `json:"analysis_id"`
	GeneratedAt  string `json:"generated_at"`
	TotalTasks   int    `json:"total_tasks"`
	DurationDays int    `json:"duration_days"`
}

type Graph struct {
	Nodes        []GraphNode   `json:"nodes"`
	Edges        []GraphEdge   `json:"edges"`
	CriticalPath []string      `json:"critical_path"`
	Metadata     GraphMetadata `json:"metadata"`
}

// toGraph flattens a schedule and its analysis into the normalised Graph.
func toGraph(g *schedule.Graph, report *intel.Intelligence) *Graph {
	critical := make(map[string]bool, len(report.CriticalPath))
	for _, id := range report.CriticalPath {
		critical[id] = true
	}

	nodes := make([]GraphNode, 0, g.TaskCount())
	var edges []GraphEdge
	for _, id := range g.TaskIDs() {
		task, _ := g.Task(id)
		nodes = append(nodes, GraphNode{
			ID:               id,
			Name:             task.Name,
			Status:           string(task.Status),
			DurationDays:     task.DurationDays,
			SlackDays:        report.SlackByTask[id],
			IsCritical:       critical[id],
			DelayProbability: report.RiskFactors[id].DelayProbability,
		})
		for _, e := range g.Successors(id) {
			edges = append(edges, GraphEdge{
				From:    e.From,
				To:      e.To,
				Type:    string(e.Type),
				LagDays: e.Lag,
			})
		}
	}

	return &Graph{
		Nodes:        nodes,
		Edges:        edges,
		CriticalPath: report.CriticalPath,
		Metadata: GraphMetadata{
			AnalysisID:   report.AnalysisID,
			GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
			TotalTasks:   report.TaskCount,
			DurationDays: report.ProjectDurationDays,
		},
	}
}

// --- HTTP server ---

type server struct {
	opts intel.Options

	mu     sync.RWMutex
	graph  *Graph
	report *intel.Intelligence
}

// load parses a schedule document, analyzes it and swaps in the result.
func (s *server) load(ctx context.Context, data []byte) error {
	g, _, err := loader.Parse(data)
	if err != nil {
		return err
	}

	report, err := intel.Analyze(ctx, g, s.opts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.graph = toGraph(g, report)
	s.report = report
	s.mu.Unlock()
	return nil
}

func (s *server) handlePostSchedule(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.load(r.Context(), data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(g)
}

func (s *server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	g := s.graph
	s.mu.RUnlock()

	if g == nil {
		http.Error(w, "no schedule loaded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(g)
}

func (s *server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	report := s.report
	s.mu.RUnlock()

	if report == nil {
		http.Error(w, "no schedule loaded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func newMux(srv *server) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/graph", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			srv.handlePostSchedule(w, r)
		case http.MethodGet:
			srv.handleGetGraph(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		srv.handleGetReport(w, r)
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "plumbline viewer\n\n"+
			"  GET  /graph    normalised nodes and edges\n"+
			"  POST /graph    load a new schedule document\n"+
			"  GET  /report   full analysis envelope\n"+
			"  GET  /metrics  prometheus metrics\n"+
			"  GET  /health   liveness check\n")
	})

	return mux
}

// Start launches the viewer HTTP server on the given port in the background.
// Returns the base URL (e.g. "http://localhost:7171") or an error.
func Start(port int, opts intel.Options) (string, error) {
	srv := &server{opts: opts}
	mux := newMux(srv)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return "", fmt.Errorf("listen on port %d: %w", port, err)
	}

	go func() {
		if err := http.Serve(ln, mux); err != nil {
			log.Printf("[viewer] serve: %v", err)
		}
	}()

	addr := fmt.Sprintf("http://localhost:%d", port)
	return addr, nil
}

// PostDocument sends a schedule document to a running viewer server.
func PostDocument(addr string, doc []byte) error {
	resp, err := http.Post(addr+"/graph", "application/json", bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("POST /graph: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST /graph returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return nil
}

// IsPortOpen checks if something is listening on the given address.
func IsPortOpen(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

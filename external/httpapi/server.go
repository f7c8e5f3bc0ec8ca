package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jub0bs/fcors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/belmonts/belix/internal/status"
)

const readHeaderTimeout = 5 * time.Second

type endpoints struct {
	Health  string `json:"health"`
	Status  string `json:"status"`
	Metrics string `json:"metrics"`
}

type rootResponse struct {
	Service   string    `json:"service"`
	Status    string    `json:"status"`
	Uptime    int64     `json:"uptime"`
	Endpoints endpoints `json:"endpoints"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type nextJob struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

type statusResponse struct {
	BotOnline           bool       `json:"botOnline"`
	ConnectedAt         *time.Time `json:"connectedAt"`
	LastMessageSent     *time.Time `json:"lastMessageSent"`
	TotalMessagesSent   int64      `json:"totalMessagesSent"`
	Uptime              int64      `json:"uptime"`
	NextScheduledUpdate *nextJob   `json:"nextScheduledUpdate"`
	Timestamp           time.Time  `json:"timestamp"`
}

type Server struct {
	tracker *status.Tracker
	srv     *http.Server
}

func NewServer(addr string, tracker *status.Tracker) (*Server, error) {
	s := &Server{tracker: tracker}
	h, err := s.Handler()
	if err != nil {
		return nil, err
	}
	s.srv = &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: readHeaderTimeout}
	return s, nil
}

// Handler returns the router wrapped in the CORS middleware.
func (s *Server) Handler() (http.Handler, error) {
	cors, err := fcors.AllowAccess(
		fcors.FromAnyOrigin(),
		fcors.WithMethods(http.MethodGet),
	)
	if err != nil {
		return nil, fmt.Errorf("configure cors: %w", err)
	}
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return cors(r), nil
}

// Start serves in the background until Shutdown is called.
func (s *Server) Start() {
	go func() {
		slog.Info("http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", "error", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func onlineLabel(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	snap := s.tracker.Snapshot()
	writeJSON(w, http.StatusOK, rootResponse{
		Service: status.ServiceName,
		Status:  onlineLabel(snap.Online),
		Uptime:  int64(snap.Uptime / time.Second),
		Endpoints: endpoints{
			Health:  "/health",
			Status:  "/status",
			Metrics: "/metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "OK", Timestamp: time.Now().UTC()})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	snap := s.tracker.Snapshot()
	resp := statusResponse{
		BotOnline:         snap.Online,
		ConnectedAt:       snap.ConnectedAt,
		LastMessageSent:   snap.LastMessageAt,
		TotalMessagesSent: snap.TotalMessagesSeen,
		Uptime:            int64(snap.Uptime / time.Second),
		Timestamp:         snap.Now.UTC(),
	}
	if snap.NextJob != nil {
		resp.NextScheduledUpdate = &nextJob{Name: snap.NextJob.Name, At: snap.NextJob.At}
	}
	code := http.StatusOK
	if !snap.Online {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

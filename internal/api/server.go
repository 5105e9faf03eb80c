package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/samijaber1/bloomwatch/internal/metrics"
	"github.com/samijaber1/bloomwatch/internal/profile"
	"github.com/samijaber1/bloomwatch/internal/storage"
)

// MaxTopPatterns caps /v1/top/{n}
const MaxTopPatterns = 100

// Server is the HTTP API server over stored analyses
type Server struct {
	store    storage.AnalysisStorage
	profiles *profile.Set
	recorder *metrics.Recorder
	logger   *zap.Logger
	router   *mux.Router
	server   *http.Server
}

// NewServer creates a new API server. The recorder is optional.
func NewServer(store storage.AnalysisStorage, profiles *profile.Set, recorder *metrics.Recorder, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:    store,
		profiles: profiles,
		recorder: recorder,
		logger:   logger,
	}

	r := mux.NewRouter()

	// Health endpoints
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	if recorder != nil {
		r.Handle("/metrics", recorder.Handler()).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/analyses", s.handleAnalysisList).Methods(http.MethodGet)
	v1.HandleFunc("/analyses/{id}", s.handleAnalysisGet).Methods(http.MethodGet)
	v1.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	v1.HandleFunc("/top/{n:[0-9]+}", s.handleTop).Methods(http.MethodGet)
	v1.HandleFunc("/profiles", s.handleProfiles).Methods(http.MethodGet)

	r.Use(s.loggingMiddleware)
	s.router = r

	s.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting API server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleReady handles GET /readyz
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Ready: true}

	if s.profiles != nil {
		resp.ProfilesLoaded = len(s.profiles.Profiles())
	}
	if resp.ProfilesLoaded == 0 {
		resp.Ready = false
		resp.Reasons = append(resp.Reasons, "no profiles loaded")
	}

	stats, err := s.store.Stats(r.Context())
	if err != nil {
		resp.Ready = false
		resp.Reasons = append(resp.Reasons, fmt.Sprintf("storage unavailable: %v", err))
	} else {
		resp.Analyses = stats.Analyses
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp)
}

// handleAnalysisList handles GET /v1/analyses
func (s *Server) handleAnalysisList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summaries, err := s.store.ListAnalyses(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list analyses: %v", err))
		return
	}
	if summaries == nil {
		summaries = []storage.AnalysisSummary{}
	}

	respondJSON(w, http.StatusOK, AnalysisListResponse{
		Analyses: summaries,
		Total:    len(summaries),
	})
}

// handleAnalysisGet handles GET /v1/analyses/{id}
func (s *Server) handleAnalysisGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := s.store.GetAnalysis(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get analysis: %v", err))
		return
	}
	if result == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("analysis not found: %s", id))
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleStats handles GET /v1/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to compute stats: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// handleTop handles GET /v1/top/{n}
func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil || n <= 0 || n > MaxTopPatterns {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("n must be between 1 and %d", MaxTopPatterns))
		return
	}

	patterns, err := s.store.TopPatterns(r.Context(), n)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to rank patterns: %v", err))
		return
	}
	if patterns == nil {
		patterns = []storage.PatternStat{}
	}

	respondJSON(w, http.StatusOK, TopPatternsResponse{Patterns: patterns})
}

// handleProfiles handles GET /v1/profiles
func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	summaries := []ProfileSummary{}
	if s.profiles != nil {
		for _, p := range s.profiles.Profiles() {
			summaries = append(summaries, ProfileSummary{
				ID:              p.Metadata.ID,
				Name:            p.Metadata.Name,
				EncounterID:     p.Spec.EncounterID,
				MultiPhase:      p.MultiPhase(),
				FallbackTimeout: p.Policy().FallbackTimeout,
			})
		}
	}

	respondJSON(w, http.StatusOK, ProfileListResponse{Profiles: summaries})
}

// parseFilter reads listing filters from the query string
func parseFilter(r *http.Request) (storage.AnalysisFilter, error) {
	query := r.URL.Query()
	filter := storage.AnalysisFilter{
		ReportCode:  query.Get("report"),
		Participant: query.Get("participant"),
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"encounter", &filter.EncounterID},
		{"limit", &filter.Limit},
		{"offset", &filter.Offset},
	}
	for _, p := range ints {
		if v := query.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return filter, fmt.Errorf("invalid %s: %q", p.name, v)
			}
			*p.dst = n
		}
	}

	if v := query.Get("phase"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 2 {
			return filter, fmt.Errorf("invalid phase: %q", v)
		}
		filter.Phase = &n
	}

	if v := query.Get("rotating"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("invalid rotating: %q", v)
		}
		filter.RotatingOnTank = &b
	}

	return filter, nil
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

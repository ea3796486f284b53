// Package api provides the HTTP REST API server for Intrinsiq.
//
// It exposes endpoints for intrinsic-value assessments, raw financials,
// batch valuation, and rendered valuation reports.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/intrinsiq/internal/config"
	"github.com/seenimoa/intrinsiq/internal/datasource"
	"github.com/seenimoa/intrinsiq/internal/report"
	"github.com/seenimoa/intrinsiq/internal/valuation"
	"github.com/seenimoa/intrinsiq/pkg/models"
	"github.com/seenimoa/intrinsiq/pkg/utils"
)

// maxBatchTickers bounds a single batch valuation request.
const maxBatchTickers = 20

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	agg      *datasource.Aggregator
	analyzer *valuation.ScenarioAnalyzer
}

// NewServer creates a configured API server with all routes and middleware.
// The aggregator and analyzer are injected so callers (and tests) control
// data sources and model parameters.
func NewServer(cfg *config.Config, agg *datasource.Aggregator, analyzer *valuation.ScenarioAnalyzer) *Server {
	srv := &Server{
		cfg:      cfg,
		agg:      agg,
		analyzer: analyzer,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	origins := []string{"*"}
	if s.cfg != nil && len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		// Raw financials
		r.Get("/financials/{ticker}", s.handleFinancials)

		// Valuation
		r.Post("/value/{ticker}", s.handleValue)
		r.Post("/value/batch", s.handleValueBatch)
		r.Post("/valuation", s.handleValuationSnapshot)

		// Rendered report
		r.Get("/report/{ticker}", s.handleReport)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// BatchRequest is the body for POST /api/v1/value/batch.
type BatchRequest struct {
	Tickers []string `json:"tickers"`
}

// BatchResponse bundles per-ticker assessments and fetch failures.
type BatchResponse struct {
	Assessments map[string]*models.Assessment `json:"assessments"`
	Failures    map[string]string             `json:"failures,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"service": "intrinsiq",
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleFinancials(w http.ResponseWriter, r *http.Request) {
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	fin, err := s.agg.FetchFinancials(r.Context(), ticker)
	if err != nil {
		writeFetchError(w, ticker, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: fin})
}

func (s *Server) handleValue(w http.ResponseWriter, r *http.Request) {
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	fin, err := s.agg.FetchFinancials(ctx, ticker)
	if err != nil {
		writeFetchError(w, ticker, err)
		return
	}

	assessment := s.analyzer.Analyze(ticker, fin)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: assessment})
}

func (s *Server) handleValueBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Tickers) == 0 {
		writeError(w, http.StatusBadRequest, "tickers is required")
		return
	}
	if len(req.Tickers) > maxBatchTickers {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("too many tickers (max %d)", maxBatchTickers))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	fins, failures := s.agg.FetchMany(ctx, req.Tickers)

	resp := BatchResponse{
		Assessments: make(map[string]*models.Assessment, len(fins)),
		Failures:    make(map[string]string, len(failures)),
	}
	for ticker, fin := range fins {
		resp.Assessments[ticker] = s.analyzer.Analyze(ticker, fin)
	}
	for ticker, err := range failures {
		resp.Failures[ticker] = err.Error()
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

// handleValuationSnapshot values a caller-supplied financial snapshot
// without touching any data source. Useful for what-if analysis.
func (s *Server) handleValuationSnapshot(w http.ResponseWriter, r *http.Request) {
	var fin models.CompanyFinancials
	if err := json.NewDecoder(r.Body).Decode(&fin); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if fin.Ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	ticker := utils.NormalizeTicker(fin.Ticker)
	assessment := s.analyzer.Analyze(ticker, &fin)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: assessment})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	format := report.FormatText
	if f := strings.ToLower(r.URL.Query().Get("format")); f == "html" {
		format = report.FormatHTML
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	fin, err := s.agg.FetchFinancials(ctx, ticker)
	if err != nil {
		writeFetchError(w, ticker, err)
		return
	}

	assessment := s.analyzer.Analyze(ticker, fin)
	cfg := report.DefaultReportConfig()
	cfg.Format = format

	var out string
	if format == report.FormatHTML {
		out, err = report.GenerateHTML(assessment, cfg)
	} else {
		out, err = report.GenerateText(assessment, cfg)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if format == report.FormatHTML {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out)) //nolint:errcheck
}

// ============================================================
// Helpers
// ============================================================

func writeFetchError(w http.ResponseWriter, ticker string, err error) {
	switch {
	case errors.Is(err, datasource.ErrTickerNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("ticker %s not found", ticker))
	case errors.Is(err, datasource.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "data source rate limit exceeded, retry later")
	default:
		writeError(w, http.StatusBadGateway, fmt.Sprintf("fetch failed for %s: %v", ticker, err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

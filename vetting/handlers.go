package vetting

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// APIVersion is reported by the index endpoint.
const APIVersion = "1.0.0"

type StaticAnalysisRequest struct {
	URL string `json:"url"`
}

type StaticAnalysisMetadata struct {
	Domain             string   `json:"domain"`
	TLD                string   `json:"tld"`
	HasHTTPS           bool     `json:"has_https"`
	DomainAgeDays      *int     `json:"domain_age_days"`
	SuspiciousKeywords []string `json:"suspicious_keywords"`
	SuspiciousTLD      bool     `json:"suspicious_tld"`
}

type StaticAnalysisResponse struct {
	StaticRiskScore int                    `json:"static_risk_score"`
	StaticReasons   []string               `json:"static_reasons"`
	StaticAnalysis  StaticAnalysisMetadata `json:"static_analysis"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Handler serves the analysis API.
type Handler struct {
	analyzer *Analyzer
}

func NewHandler(analyzer *Analyzer) *Handler {
	return &Handler{analyzer: analyzer}
}

// Routes mounts the API. metrics may be nil to leave /metrics out.
func (h *Handler) Routes(metrics http.Handler, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(allowAllOrigins)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	r.Get("/", h.Index)
	r.Get("/health", h.Health)
	r.Post("/analyze/static", h.AnalyzeStatic)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
	return r
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Fake Website Detection System API",
		"version": APIVersion,
		"phase":   "Static Analysis Only",
		"endpoints": map[string]string{
			"POST /analyze/static": "Analyze a website URL using static checks",
		},
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// AnalyzeStatic scores the URL in the request body.
func (h *Handler) AnalyzeStatic(w http.ResponseWriter, r *http.Request) {
	var req StaticAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body: " + err.Error()})
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "url required"})
		return
	}

	target := NormalizeURL(req.URL)

	resp, err := h.analyzer.Analyze(r.Context(), target)
	if err != nil {
		log.Printf("[HTTP] ⚠️ Analysis failed for %s: %v", target, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Error analyzing URL: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
	log.Println("[HTTP] ✔ Static analysis completed for:", target)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// allowAllOrigins answers CORS for any origin, method and header.
func allowAllOrigins(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		if origin := r.Header.Get("Origin"); origin != "" {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		} else {
			h.Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", r.Header.Get("Access-Control-Request-Method"))
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

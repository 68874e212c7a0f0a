// Package server exposes the bootstrap engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/meenmo/curvekit/cmd/curvekit/internal/job"
	"github.com/meenmo/curvekit/convention"
	"github.com/meenmo/curvekit/curve"
	"github.com/meenmo/curvekit/export"
	"github.com/meenmo/curvekit/quotes"
)

// ApiError is the body of every error response.
type ApiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeUnknownCurrency = "UNKNOWN_CURRENCY"
	ErrCodeInternalError   = "INTERNAL_ERROR"
	ErrCodeBodyTooLarge    = "BODY_TOO_LARGE"
	maxBodyBytes           = 1 << 20
	requestIDHeader        = "X-Request-ID"
)

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

func writeJSONError(w http.ResponseWriter, statusCode int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]ApiError{"error": {Code: errCode, Message: message}})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// Server is the HTTP API.
type Server struct {
	router   *mux.Router
	runner   *job.Runner
	metrics  *Metrics
	registry *prometheus.Registry
	origins  []string
	log      zerolog.Logger
}

// New builds a Server with its own metrics registry.
func New(runner *job.Runner, allowedOrigins []string, logger zerolog.Logger) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		router:   mux.NewRouter(),
		runner:   runner,
		metrics:  NewMetrics(reg, "curvekit"),
		registry: reg,
		origins:  allowedOrigins,
		log:      logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.requestID, s.logRequests)
	s.router.HandleFunc("/api/v1/bootstrap", s.handleBootstrap()).Methods("POST")
	s.router.HandleFunc("/api/v1/compare", s.handleCompare()).Methods("POST")
	s.router.HandleFunc("/api/v1/methods", s.handleMethods()).Methods("GET")
	s.router.HandleFunc("/api/v1/conventions", s.handleConventions()).Methods("GET")
	s.router.HandleFunc("/api/v1/conventions/{currency}", s.handleConvention()).Methods("GET")
	s.router.HandleFunc("/api/v1/health", s.handleHealth()).Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods("GET")
}

// Handler returns the router wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})
	return c.Handler(s.router)
}

type ctxKey struct{}

// requestID propagates X-Request-ID, generating one when absent, and attaches a request
// scoped logger to the context.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		logger := s.log.With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, logger)))
	})
}

func (s *Server) logger(r *http.Request) zerolog.Logger {
	if l, ok := r.Context().Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return s.log
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		logger := s.logger(r)
		logger.Info().
			Str("method", r.Method).
			Str("route", route).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (quotes.Request, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, ErrCodeBodyTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes.", maxBodyBytes))
			return quotes.Request{}, false
		}
		writeJSONError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Failed to read request body.")
		return quotes.Request{}, false
	}
	req, err := job.DecodeRequest(body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
		return quotes.Request{}, false
	}
	return req, true
}

func (s *Server) writeRunError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, job.ErrInvalidRequest) || errors.Is(err, curve.ErrUnknownMethod) {
		writeJSONError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
		return
	}
	logger := s.logger(r)
	logger.Error().Err(err).Msg("bootstrap failed")
	writeJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "Bootstrap failed.")
}

// observe records the engine metrics of one result.
func (s *Server) observe(res *curve.Result, took time.Duration) {
	method := string(res.Method)
	outcome := "ok"
	if res.Empty() {
		outcome = "empty"
	}
	s.metrics.BootstrapsTotal.WithLabelValues(method, outcome).Inc()
	s.metrics.BootstrapDuration.WithLabelValues(method).Observe(took.Seconds())
	s.metrics.AdjustedPoints.WithLabelValues(method).Add(float64(len(res.AdjustedPoints())))
	if res.Parameters != nil && !res.Parameters.Converged {
		s.metrics.NelsonSiegelFallbacks.Inc()
	}
}

// handleBootstrap runs one method. ?format=csv returns the grid as CSV instead of JSON.
func (s *Server) handleBootstrap() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := s.decode(w, r)
		if !ok {
			return
		}

		start := time.Now()
		out, err := s.runner.Bootstrap(req)
		if err != nil {
			s.writeRunError(w, r, err)
			return
		}
		s.observe(out.Result, time.Since(start))
		s.metrics.SkippedQuotes.Add(float64(len(out.Skipped)))

		if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q",
				fmt.Sprintf("%s_%s_%s.csv", out.Result.Currency, out.Result.Method, out.AsOf)))
			if err := export.WriteCSV(w, out.Result); err != nil {
				logger := s.logger(r)
				logger.Error().Err(err).Msg("csv write failed")
			}
			return
		}
		writeJSON(w, out)
	}
}

func (s *Server) handleCompare() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := s.decode(w, r)
		if !ok {
			return
		}
		out, err := s.runner.Compare(r.Context(), req)
		if err != nil {
			s.writeRunError(w, r, err)
			return
		}
		for _, row := range out.Methods {
			outcome := "ok"
			if row.GridPoints == 0 {
				outcome = "empty"
			}
			s.metrics.BootstrapsTotal.WithLabelValues(string(row.Method), outcome).Inc()
			s.metrics.BootstrapDuration.WithLabelValues(string(row.Method)).
				Observe((time.Duration(row.DurationMic) * time.Microsecond).Seconds())
			s.metrics.AdjustedPoints.WithLabelValues(string(row.Method)).Add(float64(row.Adjusted))
			if row.Parameters != nil && !row.Parameters.Converged {
				s.metrics.NelsonSiegelFallbacks.Inc()
			}
		}
		s.metrics.SkippedQuotes.Add(float64(len(out.Skipped)))
		writeJSON(w, out)
	}
}

type methodInfo struct {
	Name       curve.Method `json:"name"`
	Monotone   bool         `json:"monotone"`
	Parametric bool         `json:"parametric"`
}

func (s *Server) handleMethods() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var out []methodInfo
		for _, m := range curve.Methods() {
			out = append(out, methodInfo{Name: m, Monotone: m.Monotone(), Parametric: m.Parametric()})
		}
		writeJSON(w, map[string]any{"methods": out})
	}
}

func (s *Server) handleConventions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var out []convention.Entry
		for _, ccy := range convention.Currencies() {
			out = append(out, convention.LookupEntry(ccy))
		}
		writeJSON(w, map[string]any{"conventions": out, "default": convention.Default})
	}
}

// handleConvention returns the registry row for a currency. Unmapped but well-formed codes get
// the default convention, flagged with mapped=false.
func (s *Server) handleConvention() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ccy := convention.Normalize(mux.Vars(r)["currency"])
		if !currencyRegex.MatchString(ccy) {
			writeJSONError(w, http.StatusBadRequest, ErrCodeUnknownCurrency,
				fmt.Sprintf("Invalid currency code: '%s'. Expected three letters.", ccy))
			return
		}
		writeJSON(w, map[string]any{
			"entry":  convention.LookupEntry(ccy),
			"mapped": convention.IsMapped(ccy),
		})
	}
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
}

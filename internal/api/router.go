package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/nasdaq/internal/api/handlers"
	"github.com/wonny/nasdaq/pkg/logger"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: all routes are registered here
func NewRouter(market *handlers.MarketHandler, sessions *handlers.SessionHandler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", sessions.Health).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Session
	api.HandleFunc("/session", sessions.GetSession).Methods("GET")
	api.HandleFunc("/session/refresh", sessions.Refresh).Methods("POST")
	api.HandleFunc("/session/watch", sessions.Watch).Methods("GET")

	// Record rule tables
	api.HandleFunc("/schemas", handlers.GetSchemas).Methods("GET")
	api.HandleFunc("/schemas/{record}", handlers.GetSchema).Methods("GET")

	// Company endpoints
	company := api.PathPrefix("/companies/{symbol}").Subrouter()
	company.HandleFunc("/profile", market.GetProfile).Methods("GET")
	company.HandleFunc("/revenue", market.GetRevenue).Methods("GET")
	company.HandleFunc("/ratios", market.GetRatios).Methods("GET")
	company.HandleFunc("/insider-trades", market.GetInsiderTrades).Methods("GET")
	company.HandleFunc("/institutional-holdings", market.GetInstitutionalHoldings).Methods("GET")
	company.HandleFunc("/sec-filings", market.GetSECFilings).Methods("GET")

	// Quote endpoints
	quote := api.PathPrefix("/quotes/{symbol}").Subrouter()
	quote.HandleFunc("/historical", market.GetHistorical).Methods("GET")
	quote.HandleFunc("/dividends", market.GetDividends).Methods("GET")
	quote.HandleFunc("/option-chain", market.GetOptionChain).Methods("GET")
	quote.HandleFunc("/short-interest", market.GetShortInterest).Methods("GET")
	quote.HandleFunc("/news", market.GetNews).Methods("GET")
	quote.HandleFunc("/press-releases", market.GetPressReleases).Methods("GET")

	// Market-wide endpoints
	api.HandleFunc("/screener", market.GetScreener).Methods("GET")
	api.HandleFunc("/calendar/earnings", market.GetEarningsCalendar).Methods("GET")

	// Apply middleware (outermost first)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// requestIDMiddleware propagates or assigns X-Request-ID
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the logging middleware
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"request_id": r.Header.Get(RequestIDHeader),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     rec.status,
				"duration":   time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error":      err,
						"path":       r.URL.Path,
						"request_id": r.Header.Get(RequestIDHeader),
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

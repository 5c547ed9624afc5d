// Package server exposes the configuration engine over a JSON HTTP API.
// It is the tool's UI boundary: clients render what the engine returns and
// never compute price or validity themselves.
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sensorline/levelquote/internal/catalog"
	"github.com/sensorline/levelquote/internal/configurator"
	qerr "github.com/sensorline/levelquote/internal/errors"
	"github.com/sensorline/levelquote/internal/logging"
)

// Server holds the engine's shared collaborators plus the live sessions.
// Each session owns its own state; the map itself is the only thing the
// mutex guards.
type Server struct {
	db   *sql.DB
	repo *catalog.Repository

	mu       sync.Mutex
	sessions map[string]*configurator.Session
}

// New creates a server over an open catalog database.
func New(db *sql.DB) *Server {
	return &Server{
		db:       db,
		repo:     catalog.NewRepository(db),
		sessions: make(map[string]*configurator.Session),
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/families", s.handleFamiliesList)
	r.Get("/families/{name}", s.handleFamilyDetail)

	r.Post("/configurations", s.handleStartConfiguration)
	r.Get("/configurations/{id}", s.handleConfigurationState)
	r.Post("/configurations/{id}/select", s.handleSelectOption)
	r.Post("/configurations/{id}/clear", s.handleClearOption)
	r.Get("/configurations/{id}/choices", s.handleValidChoices)
	r.Post("/configurations/{id}/finalize", s.handleFinalize)

	r.Get("/quotes", s.handleQuotesList)

	return r
}

func (s *Server) session(id string) (*configurator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) storeSession(sess *configurator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = sess
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("encode response", zap.Error(err))
	}
}

type errorBody struct {
	Type    qerr.Type      `json:"type"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// writeError maps the engine's typed errors onto HTTP statuses. Validation
// problems surface as rejected actions; data-integrity problems surface as
// server errors and are logged for catalog correction.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Type: qerr.TypeOf(err), Message: err.Error()}
	var de *qerr.Error
	if errors.As(err, &de) {
		body.Message = de.Message
		body.Context = de.Context
	}

	var status int
	switch body.Type {
	case qerr.TypeNotFound:
		status = http.StatusNotFound
	case qerr.TypeInvalidChoice, qerr.TypeIncompleteConfiguration, qerr.TypeExhaustedOption:
		status = http.StatusUnprocessableEntity
	case qerr.TypeAlreadyFinalized:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		logging.Error("internal error", zap.Error(err))
	}
	if body.Type == qerr.TypeUnknownAdder {
		logging.Error("catalog data integrity error", zap.Error(err))
	}

	writeJSON(w, status, map[string]errorBody{"error": body})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return qerr.Wrap(qerr.TypeInternal, "invalid request body", err)
	}
	return nil
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
	"github.com/dailycheer/cheer-notifier/internal/biz/usecase"
	"github.com/dailycheer/cheer-notifier/internal/logging"
	"github.com/dailycheer/cheer-notifier/internal/service"
)

// Scheduler is the part of the scheduler the API drives
type Scheduler interface {
	Status() []service.SlotStatus
	SendNow(ctx context.Context) (*usecase.DeliveryResult, error)
	Reconfigure(ctx context.Context) error
}

// History reads the delivery ledger
type History interface {
	History(ctx context.Context, limit int) ([]*domain.DeliveryRecord, error)
}

// Previewer picks a catalog message without delivering it
type Previewer interface {
	Select(t domain.TimeBucket, d domain.DayBucket, s domain.SeasonBucket) domain.Message
}

// Server provides the local admin HTTP API
type Server struct {
	scheduler  Scheduler
	history    History
	previewer  Previewer
	characters *domain.CharacterSet
	logger     logging.Logger

	server *http.Server
	port   int
}

// NewServer creates a new API server
func NewServer(scheduler Scheduler, history History, previewer Previewer, characters *domain.CharacterSet, port int, logger logging.Logger) *Server {
	return &Server{
		scheduler:  scheduler,
		history:    history,
		previewer:  previewer,
		characters: characters,
		port:       port,
		logger:     logging.Component(logger, "api"),
	}
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/history", s.handleHistory)
		r.Get("/preview", s.handlePreview)
		r.Get("/characters", s.handleCharacters)
		r.Post("/send", s.handleSend)
		r.Post("/reload", s.handleReload)
	})

	return r
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.WithField("port", s.port).Info("starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// GetPort returns the server port
func (s *Server) GetPort() int {
	return s.port
}

// ============ Handlers ============

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"slots": s.scheduler.Status(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	records, err := s.history.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []*domain.DeliveryRecord{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := time.Now()

	tb := domain.TimeBucket(q.Get("time"))
	if tb == "" {
		tb = domain.TimeBucketAt(now)
	}
	db := domain.DayBucket(q.Get("day"))
	if db == "" {
		db = domain.DayBucketAt(now)
	}
	sb := domain.SeasonBucket(q.Get("season"))
	if sb == "" {
		sb = domain.SeasonAt(now)
	}
	if !tb.Valid() || !db.Valid() || !sb.Valid() {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid bucket"))
		return
	}

	m := s.previewer.Select(tb, db, sb)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message_id": m.ID,
		"content":    m.Content,
		"time":       tb,
		"day":        db,
		"season":     sb,
	})
}

func (s *Server) handleCharacters(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"characters": s.characters.List(),
	})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	res, err := s.scheduler.SendNow(r.Context())
	if err != nil {
		s.logger.WithError(err).Warn("manual send failed")
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.scheduler.Reconfigure(r.Context()); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"slots": s.scheduler.Status(),
	})
}

// ============ Helpers ============

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

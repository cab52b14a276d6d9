// Package server is the optional HTTP status endpoint of a running
// simulation.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/maizsim/internal/log"
	"github.com/chrissnell/maizsim/internal/output"
	"github.com/chrissnell/maizsim/pkg/responseformat"
)

const defaultPort = 9120

// Reports is what the server reads from the running simulation.
type Reports interface {
	RunID() string
	Latest() (output.CropRecord, bool)
	Written() int
}

// Config sets where the server listens.
type Config struct {
	ListenAddr string
	Port       int
}

// Server serves /latest, /status and, when given a handler, /metrics.
type Server struct {
	ctx       context.Context
	wg        *sync.WaitGroup
	Server    http.Server
	reports   Reports
	formatter *responseformat.Formatter
	logger    *zap.SugaredLogger
}

// Status summarises the run.
type Status struct {
	RunID   string `json:"run_id"`
	Written int    `json:"written"`
	Time    string `json:"time,omitempty"`
	Stage   string `json:"stage,omitempty"`
}

// New builds the server. metricsHandler may be nil.
func New(ctx context.Context, wg *sync.WaitGroup, cfg Config, reports Reports, metricsHandler http.Handler, logger *zap.SugaredLogger) *Server {
	logger = log.OrNop(logger)
	if cfg.ListenAddr == "" {
		logger.Info("server listen address not provided; defaulting to 0.0.0.0 (all interfaces)")
		cfg.ListenAddr = "0.0.0.0"
	}
	if cfg.Port == 0 {
		logger.Infof("server port not provided; defaulting to %d", defaultPort)
		cfg.Port = defaultPort
	}

	s := &Server{
		ctx:       ctx,
		wg:        wg,
		reports:   reports,
		formatter: responseformat.NewFormatter(),
		logger:    logger,
	}
	s.Server.Addr = fmt.Sprintf("%v:%v", cfg.ListenAddr, cfg.Port)
	s.Server.Handler = s.Router(metricsHandler)
	return s
}

// Router configures the HTTP router with all endpoints.
func (s *Server) Router(metricsHandler http.Handler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/latest", s.getLatest).Methods(http.MethodGet)
	router.HandleFunc("/status", s.getStatus).Methods(http.MethodGet)
	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	}
	return router
}

// Start serves until the context is cancelled.
func (s *Server) Start() error {
	s.logger.Infow("starting status server", "addr", s.Server.Addr)
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		if err := s.Server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Errorf("status server error: %v", err)
		}
	}()

	go func() {
		<-s.ctx.Done()
		s.logger.Info("shutting down the status server...")
		s.Server.Shutdown(context.Background())
	}()

	return nil
}

func (s *Server) getLatest(w http.ResponseWriter, req *http.Request) {
	latest, ok := s.reports.Latest()
	if !ok {
		s.formatter.WriteError(w, req, http.StatusServiceUnavailable, "no simulation step has completed")
		return
	}
	if err := s.formatter.WriteResponse(w, req, latest, nil); err != nil {
		s.logger.Errorw("writing latest report", "error", err)
	}
}

func (s *Server) getStatus(w http.ResponseWriter, req *http.Request) {
	st := Status{RunID: s.reports.RunID(), Written: s.reports.Written()}
	if latest, ok := s.reports.Latest(); ok {
		st.Time = latest.Time.Format(time.RFC3339)
		st.Stage = latest.Stage
	}
	if err := s.formatter.WriteResponse(w, req, st, nil); err != nil {
		s.logger.Errorw("writing status", "error", err)
	}
}

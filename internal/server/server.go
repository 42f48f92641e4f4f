// Package server exposes stored summary runs over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/qrystalml/enron-summary/internal/model"
	"github.com/qrystalml/enron-summary/internal/report"
	"github.com/qrystalml/enron-summary/internal/store"
)

// RunReader is the subset of the store the server reads from.
type RunReader interface {
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context, p store.ListParams) ([]model.Run, error)
}

type Service struct {
	runs   RunReader
	router *gin.Engine
	server *http.Server
}

func NewService(runs RunReader) *Service {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if err := router.SetTrustedProxies(nil); err != nil {
		log.Err(err).Msg("Failed to set trusted proxies")
	}

	router.Use(
		gin.Recovery(),
		gin.LoggerWithWriter(log.Logger, "/health"),
	)

	s := &Service{runs: runs, router: router}
	s.initRouter()
	return s
}

func (s *Service) initRouter() {
	s.router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	api := s.router.Group("/api/v1")
	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
	api.GET("/runs/:id/counts", s.handleCounts)
	api.GET("/runs/:id/sent", s.handleSent)
	api.GET("/runs/:id/contacts", s.handleContacts)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Service) ListenAndServe(ctx context.Context, addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting HTTP server on " + addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("HTTP server stopped")
	return nil
}

func (s *Service) GetRouter() *gin.Engine {
	return s.router
}

func (s *Service) handleListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	runs, err := s.runs.ListRuns(c.Request.Context(), store.ListParams{Limit: limit})
	if err != nil {
		s.fail(c, err)
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	c.JSON(http.StatusOK, runs)
}

func (s *Service) handleGetRun(c *gin.Context) {
	run, ok := s.loadRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Service) handleCounts(c *gin.Context) {
	run, ok := s.loadRun(c)
	if !ok {
		return
	}
	respond(c, run.Counts, func(w io.Writer) error { return report.WriteCounts(w, run.Counts) })
}

func (s *Service) handleSent(c *gin.Context) {
	run, ok := s.loadRun(c)
	if !ok {
		return
	}
	respond(c, run.Sent, func(w io.Writer) error { return report.WriteSent(w, run.Sent) })
}

func (s *Service) handleContacts(c *gin.Context) {
	run, ok := s.loadRun(c)
	if !ok {
		return
	}
	respond(c, run.Contacts, func(w io.Writer) error { return report.WriteShares(w, run.Contacts) })
}

func (s *Service) loadRun(c *gin.Context) (*model.Run, bool) {
	run, err := s.runs.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return run, true
}

func (s *Service) fail(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	log.Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// respond writes rows as JSON, or as CSV when ?format=csv.
func respond[T any](c *gin.Context, rows []T, writeCSV func(io.Writer) error) {
	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)
		if err := writeCSV(c.Writer); err != nil {
			log.Err(err).Msg("write csv response")
		}
		return
	}
	if rows == nil {
		rows = []T{}
	}
	c.JSON(http.StatusOK, rows)
}

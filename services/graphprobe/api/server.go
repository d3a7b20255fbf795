// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api serves graph queries over HTTP.
//
// The server wraps a query.Dispatcher held in an atomic pointer, so a graph
// reload swaps the active graph without blocking in-flight requests. Routes:
//
//	GET  /v1/graphprobe/health
//	GET  /v1/graphprobe/stats
//	POST /v1/graphprobe/query   {"command": "path N0 N3"}
//	GET  /metrics               (only when the Prometheus exporter is active)
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/graphprobe/services/graphprobe/graph"
	"github.com/AleutianAI/graphprobe/services/graphprobe/query"
	"github.com/AleutianAI/graphprobe/services/graphprobe/search"
	"github.com/AleutianAI/graphprobe/services/graphprobe/telemetry"
)

// ErrNilDispatcher is returned by New without a dispatcher.
var ErrNilDispatcher = errors.New("api: dispatcher must not be nil")

const (
	// DefaultServiceName names the otelgin server spans.
	DefaultServiceName = "graphprobe"

	shutdownTimeout = 10 * time.Second
)

// Server is the HTTP front end for one active graph.
//
// Thread Safety: Safe for concurrent use.
type Server struct {
	dispatcher atomic.Pointer[query.Dispatcher]
	reloads    atomic.Int64

	limiter     *rate.Limiter
	serviceName string
	loadOpts    []graph.LoadOption
	searchOpts  []search.Option
	logger      *slog.Logger

	router *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit enables token-bucket limiting of stats and query requests.
// A rate of zero or less disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithServiceName sets the service name reported by the tracing middleware.
func WithServiceName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.serviceName = name
		}
	}
}

// WithReloadOptions sets the loader and search options used by Reload.
func WithReloadOptions(loadOpts []graph.LoadOption, searchOpts []search.Option) Option {
	return func(s *Server) {
		s.loadOpts = loadOpts
		s.searchOpts = searchOpts
	}
}

// WithLogger replaces slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Server serving d.
func New(d *query.Dispatcher, opts ...Option) (*Server, error) {
	if d == nil {
		return nil, ErrNilDispatcher
	}

	s := &Server{
		serviceName: DefaultServiceName,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dispatcher.Store(d)
	s.router = s.buildRouter()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Dispatcher returns the active dispatcher.
func (s *Server) Dispatcher() *query.Dispatcher {
	return s.dispatcher.Load()
}

// Swap installs d as the active dispatcher. Requests already running keep
// the dispatcher they started with.
func (s *Server) Swap(d *query.Dispatcher) {
	if d == nil {
		return
	}
	s.dispatcher.Store(d)
	s.reloads.Add(1)
}

// Reloads returns how many times the dispatcher has been swapped.
func (s *Server) Reloads() int64 {
	return s.reloads.Load()
}

// Reload loads the graph at path and swaps it in.
//
// Description:
//
//	On any load error the active graph is kept and the error is logged.
//	The signature matches graph.ReloadHandler so a FileWatcher can call it
//	directly.
func (s *Server) Reload(ctx context.Context, path string) {
	if err := s.reload(ctx, path); err != nil {
		s.logger.Error("graph reload failed, keeping active graph",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Server) reload(ctx context.Context, path string) error {
	result, err := graph.LoadFile(ctx, path, s.loadOpts...)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	d, err := query.NewDispatcher(result.Graph,
		query.WithSearchOptions(s.searchOpts...),
		query.WithLoadResult(result),
		query.WithLogger(s.logger),
	)
	if err != nil {
		return fmt.Errorf("build dispatcher: %w", err)
	}

	s.Swap(d)
	s.logger.Info("graph reloaded",
		slog.String("path", path),
		slog.Int("nodes", result.NodeCount),
		slog.Int("edges", result.EdgeCount),
		slog.Int64("reloads", s.Reloads()),
	)
	return nil
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(s.serviceName))
	router.Use(s.requestLogger())

	v1 := router.Group("/v1/graphprobe")
	v1.GET("/health", s.handleHealth)

	limited := v1.Group("", s.rateLimit())
	limited.GET("/stats", s.handleStats)
	limited.POST("/query", s.handleQuery)

	if h := telemetry.MetricsHandler(); h != nil {
		router.GET("/metrics", gin.WrapH(h))
	}
	return router
}

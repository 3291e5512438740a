package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fitclub/internal/config"
	"fitclub/internal/logger"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts one feature's endpoints.
type RouteRegistrar interface {
	RegisterRoutes(r gin.IRouter)
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

// New builds the router with the shared middleware chain, the system
// endpoints and every feature's routes.
func New(cfg *config.Config, checks map[string]HealthCheck, features ...RouteRegistrar) *Server {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		corsMiddleware(cfg.CORSAllowedOrigins),
		RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	router.GET("/health", Health(checks))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	for _, f := range features {
		f.RegisterRoutes(router)
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	logger.Info("server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Package server owns the HTTP surface: the single /graphql endpoint plus
// health and metrics. All application behavior lives behind the schema; the
// server's job is session cookies, request context, and transport errors.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	authdomain "github.com/inqira/inqira/internal/auth/domain"
	"github.com/inqira/inqira/internal/auth/session"
	"github.com/inqira/inqira/internal/authorization"
	"github.com/inqira/inqira/internal/config"
	"github.com/inqira/inqira/internal/graph"
	"github.com/inqira/inqira/internal/observability"
	projectdomain "github.com/inqira/inqira/internal/project/domain"
)

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Schema   *graph.Schema
	Auth     authdomain.Service
	Projects projectdomain.Service
	Authz    authorization.Service
	Sessions *session.Manager
	Metrics  *observability.Metrics
}

// Server is the HTTP front of the application.
type Server struct {
	cfg      config.Config
	log      *zap.Logger
	schema   *graph.Schema
	auth     authdomain.Service
	projects projectdomain.Service
	authz    authorization.Service
	sessions *session.Manager
	metrics  *observability.Metrics

	engine *gin.Engine
}

func New(p Params) *Server {
	s := &Server{
		cfg:      p.Config,
		log:      p.Log.Named("server"),
		schema:   p.Schema,
		auth:     p.Auth,
		projects: p.Projects,
		authz:    p.Authz,
		sessions: p.Sessions,
		metrics:  p.Metrics,
	}
	s.engine = s.buildEngine()
	return s
}

func (s *Server) buildEngine() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORSAllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(s.requestLogger())

	engine.GET("/health", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		s.metrics.Registry(),
		promhttp.HandlerOpts{},
	)))
	engine.POST("/graphql", s.handleGraphQL)

	return engine
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": s.cfg.AppName,
		"version": s.cfg.AppVersion,
	})
}

func registerHooks(lc fx.Lifecycle, s *Server) {
	httpServer := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.log.Info("http server starting", zap.String("addr", s.cfg.HTTPAddr))
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.log.Info("http server stopping")
			return httpServer.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(registerHooks),
)

// Package httpserver exposes the helpdesk HTTP API.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/and161185/helpdesk/internal/model"
	"github.com/and161185/helpdesk/internal/service"
)

// IdentityResolver maps a session token to its owner.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (model.Identity, bool, error)
}

// Pinger checks backing store liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tune the router.
type Options struct {
	Log *zap.Logger
	// AllowAllOrigins makes CORS fully permissive, including responses to
	// requests without an Origin header.
	AllowAllOrigins bool
	// AllowOrigins lists CORS origins; empty allows any.
	AllowOrigins []string
	// Health is pinged by GET /healthz; nil means always healthy.
	Health Pinger
}

// Server wires services into HTTP handlers.
type Server struct {
	auth     service.AuthService
	messages service.MessageService
	sessions IdentityResolver
	health   Pinger
	log      *zap.Logger
	allowAll bool
	origins  []string
}

// New constructs a Server with injected services.
func New(auth service.AuthService, messages service.MessageService, sessions IdentityResolver, opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		auth:     auth,
		messages: messages,
		sessions: sessions,
		health:   opts.Health,
		log:      log,
		allowAll: opts.AllowAllOrigins || len(opts.AllowOrigins) == 0,
		origins:  opts.AllowOrigins,
	}
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = false

	r.Use(requestID())
	if s.allowAll {
		r.Use(openCORS())
	}
	r.Use(
		cors.New(s.corsConfig()),
		ginzap.GinzapWithConfig(s.log, &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead || c.Request.URL.Path == "/healthz"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{zap.String("request_id", c.GetString(requestIDKey))}
				if id, ok := IdentityFrom(c); ok {
					fields = append(fields, zap.Int64("user_id", id.UserID))
				}
				if a := c.Query("action"); a != "" {
					fields = append(fields, zap.String("action", a))
				}
				return fields
			},
		}),
		ginzap.CustomRecoveryWithZap(s.log, true, func(c *gin.Context, _ any) {
			s.internal(c)
		}),
	)

	r.GET("/healthz", s.healthz)

	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodOptions} {
		r.Handle(m, "/auth", s.handleAuth)
		r.Handle(m, "/messages", s.authenticate(), s.handleMessages)
	}

	r.NoRoute(notFound)
	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:              []string{"Content-Type", TokenHeader, "Authorization"},
		ExposeHeaders:             []string{RequestIDHeader},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}
	if s.allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.origins
	}
	return cfg
}

func (s *Server) healthz(c *gin.Context) {
	if s.health != nil {
		if err := s.health.Ping(c.Request.Context()); err != nil {
			s.log.Warn("health check failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// preflight answers OPTIONS requests that reached a handler (no Origin header).
func preflight(c *gin.Context) bool {
	if c.Request.Method != http.MethodOptions {
		return false
	}
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	return true
}

package http

import (
	"context"
	"log"
	"time"

	"recall/internal/config"
	"recall/internal/domain"
	"recall/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg      config.Config
	r        *gin.Engine
	memory   *usecase.MemoryService
	verifier *usecase.ReceiptVerifier
	audit    AuditReader
	emitter  *usecase.AuditEmitter

	wellKnown domain.DiscoveryDocument

	rateLimiter       domain.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration
}

type AuditReader interface {
	Recent(ctx context.Context, n int) ([]domain.AuditEvent, error)
}

type ServerDeps struct {
	Memory      *usecase.MemoryService
	Verifier    *usecase.ReceiptVerifier
	Audit       AuditReader
	Emitter     *usecase.AuditEmitter
	WellKnown   domain.DiscoveryDocument
	RateLimiter domain.RateLimiter
}

func NewServer(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:               cfg,
		r:                 r,
		memory:            deps.Memory,
		verifier:          deps.Verifier,
		audit:             deps.Audit,
		emitter:           deps.Emitter,
		wellKnown:         deps.WellKnown,
		rateLimiter:       deps.RateLimiter,
		rateLimitRequests: cfg.RateLimitRequests,
		rateLimitWindow:   cfg.RateLimitWindow,
	}
	s.routes()
	return s
}

func (s *Server) Run() error {
	addr := s.cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("recall listening on %s", addr)
	return s.r.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() *gin.Engine {
	return s.r
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	s.r.GET("/.well-known/receipts.json", s.handleWellKnown)

	v1 := s.r.Group("/v1")
	{
		v1.POST("/mem/write", s.rateLimit(routeMemWrite), s.handleMemWrite)
		v1.POST("/mem/search", s.rateLimit(routeMemSearch), s.handleMemSearch)
		v1.POST("/mem/revoke", s.rateLimit(routeMemRevoke), s.handleMemRevoke)
		v1.POST("/verify", s.rateLimit(routeVerify), s.handleVerify)
		v1.GET("/audit", s.handleAudit)
	}
}

// Package api exposes the member services over HTTP
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/members/internal/config"
	"github.com/cornerstone-fellowship/members/pkg/db"
	"github.com/cornerstone-fellowship/members/pkg/notify"
)

// Server holds the dependencies shared by all handlers
type Server struct {
	store    db.Database
	notifier notify.Notifier
	logger   *zap.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewServer creates a server. loc is the timezone shift dates and times are interpreted in.
func NewServer(store db.Database, notifier notify.Notifier, logger *zap.Logger, loc *time.Location) *Server {
	return &Server{
		store:    store,
		notifier: notifier,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
	}
}

// Router builds the gin engine with all routes registered
func (s *Server) Router(cfg config.ServerConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), accessLog(s.logger))

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		events := v1.Group("/events")
		{
			events.POST("", s.createEvent)
			events.GET("/:id/capacity", s.checkCapacity)
			events.PATCH("/:id/status", s.updateEventStatus)
			events.POST("/:id/rsvps", rateLimit(cfg.RateLimit), s.submitRSVP)
		}

		rsvps := v1.Group("/rsvps")
		{
			rsvps.GET("/:code", s.getRSVP)
			rsvps.DELETE("/:code", s.cancelRSVP)
		}

		shifts := v1.Group("/shifts")
		{
			shifts.POST("", s.createShift)
			shifts.GET("", s.listShifts)
			shifts.DELETE("/:id", s.cancelShift)
			shifts.POST("/:id/signups", s.signUpForShift)
			shifts.DELETE("/:id/signups/:volunteerId", s.cancelShiftSignup)
			shifts.POST("/:id/signups/:volunteerId/checkin", s.checkIn)
			shifts.POST("/:id/signups/:volunteerId/checkout", s.checkOut)
		}
	}

	return router
}

// HTTPServer wraps the router in an http.Server with the configured timeouts
func (s *Server) HTTPServer(cfg config.ServerConfig) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(cfg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) health(c *gin.Context) {
	if p, ok := s.store.(pinger); ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			s.logger.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cornerstone-fellowship/members/pkg/core/services"
	"github.com/cornerstone-fellowship/members/pkg/db"
)

type createEventRequest struct {
	Slug            string     `json:"slug"`
	Title           string     `json:"title"`
	StartsAt        time.Time  `json:"startsAt"`
	EndsAt          *time.Time `json:"endsAt"`
	Location        string     `json:"location"`
	MaxCapacity     *int       `json:"maxCapacity"`
	WaitlistEnabled bool       `json:"waitlistEnabled"`
}

type updateEventStatusRequest struct {
	Status string `json:"status"`
}

type submitRSVPRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Guests int    `json:"guests"`
}

func (s *Server) createEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeProblem(c, badRequest("malformed request body: "+err.Error()))
		return
	}

	event, err := services.CreateEvent(c.Request.Context(), s.store, s.logger, services.NewEvent{
		Slug:            req.Slug,
		Title:           req.Title,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		Location:        req.Location,
		MaxCapacity:     req.MaxCapacity,
		WaitlistEnabled: req.WaitlistEnabled,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toEventResponse(event))
}

func (s *Server) checkCapacity(c *gin.Context) {
	status, err := services.CheckCapacity(c.Request.Context(), s.store, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, capacityResponse{
		Available:         status.Available,
		SpotsLeft:         status.SpotsLeft,
		WaitlistAvailable: status.WaitlistAvailable,
	})
}

func (s *Server) updateEventStatus(c *gin.Context) {
	var req updateEventStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeProblem(c, badRequest("malformed request body: "+err.Error()))
		return
	}

	event, err := services.UpdateEventStatus(c.Request.Context(), s.store, s.logger, c.Param("id"), db.EventStatus(req.Status))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toEventResponse(event))
}

func (s *Server) submitRSVP(c *gin.Context) {
	var req submitRSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeProblem(c, badRequest("malformed request body: "+err.Error()))
		return
	}

	result, err := services.SubmitRSVP(c.Request.Context(), s.store, s.notifier, s.logger, c.Param("id"),
		services.Registrant{Name: req.Name, Email: req.Email, Phone: req.Phone}, req.Guests)
	if err != nil {
		s.fail(c, err)
		return
	}

	status := http.StatusCreated
	if result.Waitlisted {
		status = http.StatusAccepted
	}
	c.JSON(status, submitRSVPResponse{
		RSVP:       toRSVPResponse(result.RSVP),
		Waitlisted: result.Waitlisted,
	})
}

func (s *Server) getRSVP(c *gin.Context) {
	rsvp, err := services.GetRSVP(c.Request.Context(), s.store, c.Param("code"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toRSVPResponse(rsvp))
}

func (s *Server) cancelRSVP(c *gin.Context) {
	result, err := services.CancelRSVP(c.Request.Context(), s.store, s.notifier, s.logger, c.Param("code"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toCancelRSVPResponse(result))
}

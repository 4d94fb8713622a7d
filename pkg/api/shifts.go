package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/members/pkg/core/services"
	"github.com/cornerstone-fellowship/members/pkg/db"
)

type createShiftRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Location    string `json:"location"`
	Role        string `json:"role"`
	SpotsNeeded int    `json:"spotsNeeded"`
}

// Volunteer identity is trusted as sent; authentication happens upstream
type signUpRequest struct {
	VolunteerID string `json:"volunteerId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Notes       string `json:"notes"`
}

func (s *Server) createShift(c *gin.Context) {
	var req createShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeProblem(c, badRequest("malformed request body: "+err.Error()))
		return
	}

	shift, err := services.CreateShift(c.Request.Context(), s.store, s.logger, services.NewShift{
		Title:       req.Title,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		Role:        req.Role,
		SpotsNeeded: req.SpotsNeeded,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toShiftResponse(shift))
}

func (s *Server) listShifts(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		writeProblem(c, badRequest("from and to query parameters are required"))
		return
	}

	shifts, err := services.ListShifts(c.Request.Context(), s.store, from, to)
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := make([]shiftResponse, 0, len(shifts))
	for i := range shifts {
		resp = append(resp, toShiftResponse(&shifts[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) cancelShift(c *gin.Context) {
	shift, err := services.CancelShift(c.Request.Context(), s.store, s.notifier, s.logger, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toShiftResponse(shift))
}

func (s *Server) signUpForShift(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeProblem(c, badRequest("malformed request body: "+err.Error()))
		return
	}

	assignment, err := services.SignUpForShift(c.Request.Context(), s.store, s.notifier, s.logger, c.Param("id"),
		services.Volunteer{ID: req.VolunteerID, Name: req.Name, Email: req.Email}, req.Notes, s.now(), s.loc)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAssignmentResponse(assignment))
}

func (s *Server) cancelShiftSignup(c *gin.Context) {
	assignment, err := services.CancelShiftSignup(c.Request.Context(), s.store, s.logger,
		c.Param("id"), c.Param("volunteerId"), s.now(), s.loc)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toAssignmentResponse(assignment))
}

func (s *Server) checkIn(c *gin.Context) {
	s.recordAttendance(c, services.CheckIn)
}

func (s *Server) checkOut(c *gin.Context) {
	s.recordAttendance(c, services.CheckOut)
}

type attendanceFunc = func(ctx context.Context, store db.ShiftStore, logger *zap.Logger, shiftID, volunteerID string, now time.Time) (*db.Assignment, error)

func (s *Server) recordAttendance(c *gin.Context, record attendanceFunc) {
	assignment, err := record(c.Request.Context(), s.store, s.logger, c.Param("id"), c.Param("volunteerId"), s.now())
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toAssignmentResponse(assignment))
}

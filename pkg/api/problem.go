package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/members/pkg/core/services"
)

const problemContentType = "application/problem+json"

// Problem is an RFC 9457 problem details body
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

type problemKind struct {
	err    error
	slug   string
	title  string
	status int
}

// Checked in order; ErrScheduleConflict must precede anything a ScheduleConflictError could also match
var problemKinds = []problemKind{
	{services.ErrInvalidInput, "invalid-input", "Invalid Input", http.StatusBadRequest},
	{services.ErrNotFound, "not-found", "Not Found", http.StatusNotFound},
	{services.ErrScheduleConflict, "schedule-conflict", "Schedule Conflict", http.StatusConflict},
	{services.ErrDuplicateSignup, "duplicate-signup", "Already Signed Up", http.StatusConflict},
	{services.ErrAlreadyFull, "shift-full", "Shift Full", http.StatusConflict},
	{services.ErrFull, "event-full", "Event Full", http.StatusConflict},
	{services.ErrInvalidState, "invalid-state", "Invalid State", http.StatusConflict},
	{services.ErrTooLate, "too-late", "Too Late", http.StatusUnprocessableEntity},
}

// problemFor maps a service error to its problem details
func problemFor(err error) *Problem {
	for _, k := range problemKinds {
		if errors.Is(err, k.err) {
			return &Problem{
				Type:   "/problems/" + k.slug,
				Title:  k.title,
				Status: k.status,
				Detail: err.Error(),
			}
		}
	}
	return &Problem{
		Type:   "about:blank",
		Title:  http.StatusText(http.StatusInternalServerError),
		Status: http.StatusInternalServerError,
	}
}

func badRequest(detail string) *Problem {
	return &Problem{
		Type:   "/problems/invalid-input",
		Title:  "Invalid Input",
		Status: http.StatusBadRequest,
		Detail: detail,
	}
}

func writeProblem(c *gin.Context, p *Problem) {
	p.Instance = c.Request.URL.Path
	c.Header("Content-Type", problemContentType)
	c.AbortWithStatusJSON(p.Status, p)
}

// fail writes the problem for err. Unmapped errors are logged and reported without detail.
func (s *Server) fail(c *gin.Context, err error) {
	p := problemFor(err)
	if p.Status == http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	writeProblem(c, p)
}

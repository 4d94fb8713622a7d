package api

import (
	"time"

	"github.com/cornerstone-fellowship/members/pkg/core/services"
	"github.com/cornerstone-fellowship/members/pkg/db"
)

type eventResponse struct {
	ID               string     `json:"id"`
	Slug             string     `json:"slug"`
	Title            string     `json:"title"`
	StartsAt         time.Time  `json:"startsAt"`
	EndsAt           *time.Time `json:"endsAt,omitempty"`
	Location         string     `json:"location,omitempty"`
	MaxCapacity      *int       `json:"maxCapacity"`
	CurrentAttendees int        `json:"currentAttendees"`
	Status           string     `json:"status"`
	WaitlistEnabled  bool       `json:"waitlistEnabled"`
}

func toEventResponse(e *db.Event) eventResponse {
	return eventResponse{
		ID:               e.ID,
		Slug:             e.Slug,
		Title:            e.Title,
		StartsAt:         e.StartsAt,
		EndsAt:           e.EndsAt,
		Location:         e.Location,
		MaxCapacity:      e.MaxCapacity,
		CurrentAttendees: e.CurrentAttendees,
		Status:           string(e.Status),
		WaitlistEnabled:  e.WaitlistEnabled,
	}
}

type rsvpResponse struct {
	ConfirmationCode string    `json:"confirmationCode"`
	EventID          string    `json:"eventId"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Guests           int       `json:"guests"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toRSVPResponse(r *db.RSVP) rsvpResponse {
	return rsvpResponse{
		ConfirmationCode: r.ConfirmationCode,
		EventID:          r.EventID,
		Name:             r.Name,
		Email:            r.Email,
		Guests:           r.Guests,
		Status:           string(r.Status),
		CreatedAt:        r.CreatedAt,
	}
}

type submitRSVPResponse struct {
	RSVP       rsvpResponse `json:"rsvp"`
	Waitlisted bool         `json:"waitlisted"`
}

type cancelRSVPResponse struct {
	RSVP     rsvpResponse   `json:"rsvp"`
	Promoted []rsvpResponse `json:"promoted"`
}

func toCancelRSVPResponse(result *services.CancelResult) cancelRSVPResponse {
	resp := cancelRSVPResponse{
		RSVP:     toRSVPResponse(result.RSVP),
		Promoted: make([]rsvpResponse, 0, len(result.Promoted)),
	}
	for i := range result.Promoted {
		resp.Promoted = append(resp.Promoted, toRSVPResponse(&result.Promoted[i]))
	}
	return resp
}

type capacityResponse struct {
	Available         bool `json:"available"`
	SpotsLeft         *int `json:"spotsLeft"`
	WaitlistAvailable bool `json:"waitlistAvailable"`
}

type shiftResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Location    string `json:"location,omitempty"`
	Role        string `json:"role,omitempty"`
	SpotsNeeded int    `json:"spotsNeeded"`
	Status      string `json:"status"`
}

func toShiftResponse(s *db.Shift) shiftResponse {
	return shiftResponse{
		ID:          s.ID,
		Title:       s.Title,
		Date:        s.Date,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Location:    s.Location,
		Role:        s.Role,
		SpotsNeeded: s.SpotsNeeded,
		Status:      string(s.Status),
	}
}

type assignmentResponse struct {
	ID           string     `json:"id"`
	ShiftID      string     `json:"shiftId"`
	VolunteerID  string     `json:"volunteerId"`
	Status       string     `json:"status"`
	CheckedInAt  *time.Time `json:"checkedInAt,omitempty"`
	CheckedOutAt *time.Time `json:"checkedOutAt,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

func toAssignmentResponse(a *db.Assignment) assignmentResponse {
	return assignmentResponse{
		ID:           a.ID,
		ShiftID:      a.ShiftID,
		VolunteerID:  a.VolunteerID,
		Status:       string(a.Status),
		CheckedInAt:  a.CheckedInAt,
		CheckedOutAt: a.CheckedOutAt,
		Notes:        a.Notes,
	}
}

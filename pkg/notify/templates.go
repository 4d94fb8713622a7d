package notify

import (
	"fmt"
	"strings"

	"github.com/cornerstone-fellowship/members/pkg/db"
)

// Message kinds
const (
	KindRSVPConfirmed  = "rsvp_confirmed"
	KindRSVPWaitlisted = "rsvp_waitlisted"
	KindRSVPPromoted   = "rsvp_promoted"
	KindRSVPCancelled  = "rsvp_cancelled"
	KindShiftConfirmed = "shift_confirmed"
	KindShiftCancelled = "shift_cancelled"
)

const eventTimeLayout = "Monday, January 2 at 3:04 PM"

func partyLine(rsvp *db.RSVP) string {
	if rsvp.Guests == 0 {
		return "a party of 1"
	}
	return fmt.Sprintf("a party of %d (you plus %d guest%s)", rsvp.PartySize(), rsvp.Guests, plural(rsvp.Guests))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// RSVPConfirmed tells a registrant their seats are reserved
func RSVPConfirmed(event *db.Event, rsvp *db.RSVP) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", rsvp.Name)
	fmt.Fprintf(&b, "You're registered for %s on %s", event.Title, event.StartsAt.Format(eventTimeLayout))
	if event.Location != "" {
		fmt.Fprintf(&b, " at %s", event.Location)
	}
	fmt.Fprintf(&b, " for %s.\n\n", partyLine(rsvp))
	fmt.Fprintf(&b, "Your confirmation code is %s. Keep it to look up or cancel your registration.\n", rsvp.ConfirmationCode)

	return Message{
		Kind:    KindRSVPConfirmed,
		To:      rsvp.Email,
		Subject: fmt.Sprintf("You're registered: %s", event.Title),
		Body:    b.String(),
	}
}

// RSVPWaitlisted tells a registrant they are on the waitlist
func RSVPWaitlisted(event *db.Event, rsvp *db.RSVP) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", rsvp.Name)
	fmt.Fprintf(&b, "%s is currently full, so %s has been added to the waitlist.\n", event.Title, partyLine(rsvp))
	b.WriteString("We'll email you if seats open up. Waitlisted parties are confirmed in the order they signed up.\n\n")
	fmt.Fprintf(&b, "Your confirmation code is %s.\n", rsvp.ConfirmationCode)

	return Message{
		Kind:    KindRSVPWaitlisted,
		To:      rsvp.Email,
		Subject: fmt.Sprintf("You're on the waitlist: %s", event.Title),
		Body:    b.String(),
	}
}

// RSVPPromoted tells a waitlisted registrant they now have confirmed seats
func RSVPPromoted(event *db.Event, rsvp *db.RSVP) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", rsvp.Name)
	fmt.Fprintf(&b, "Good news! Seats opened up for %s on %s and %s is now confirmed.\n\n",
		event.Title, event.StartsAt.Format(eventTimeLayout), partyLine(rsvp))
	fmt.Fprintf(&b, "Your confirmation code is still %s.\n", rsvp.ConfirmationCode)

	return Message{
		Kind:    KindRSVPPromoted,
		To:      rsvp.Email,
		Subject: fmt.Sprintf("You're confirmed: %s", event.Title),
		Body:    b.String(),
	}
}

// RSVPCancelled acknowledges a cancellation
func RSVPCancelled(event *db.Event, rsvp *db.RSVP) Message {
	return Message{
		Kind:    KindRSVPCancelled,
		To:      rsvp.Email,
		Subject: fmt.Sprintf("Registration cancelled: %s", event.Title),
		Body: fmt.Sprintf("Hi %s,\n\nYour registration %s for %s has been cancelled.\n",
			rsvp.Name, rsvp.ConfirmationCode, event.Title),
	}
}

// ShiftConfirmed tells a volunteer their signup is recorded
func ShiftConfirmed(shift *db.Shift, assignment *db.Assignment) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", assignment.VolunteerName)
	fmt.Fprintf(&b, "Thanks for signing up to serve as %s on %s, %s-%s", shift.Title, shift.Date, shift.StartTime, shift.EndTime)
	if shift.Location != "" {
		fmt.Fprintf(&b, " at %s", shift.Location)
	}
	b.WriteString(".\n")

	return Message{
		Kind:    KindShiftConfirmed,
		To:      assignment.VolunteerEmail,
		Subject: fmt.Sprintf("Shift confirmed: %s on %s", shift.Title, shift.Date),
		Body:    b.String(),
	}
}

// ShiftCancelled tells a volunteer the organizer cancelled their shift
func ShiftCancelled(shift *db.Shift, assignment *db.Assignment) Message {
	return Message{
		Kind:    KindShiftCancelled,
		To:      assignment.VolunteerEmail,
		Subject: fmt.Sprintf("Shift cancelled: %s on %s", shift.Title, shift.Date),
		Body: fmt.Sprintf("Hi %s,\n\nThe %s shift on %s (%s-%s) has been cancelled. You don't need to come in.\n",
			assignment.VolunteerName, shift.Title, shift.Date, shift.StartTime, shift.EndTime),
	}
}

package commands

import "github.com/cornerstone-fellowship/members/pkg/db"

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

func rsvpColor(status db.RSVPStatus) string {
	switch status {
	case db.RSVPStatusConfirmed:
		return colorGreen
	case db.RSVPStatusWaitlisted:
		return colorYellow
	default:
		return colorDim
	}
}

// fillColor colours a shift by how close it is to fully staffed:
// green when filled, yellow from half, red below half
func fillColor(status db.ShiftStatus, signedUp, needed int) string {
	switch {
	case status == db.ShiftStatusCancelled:
		return colorDim
	case signedUp >= needed:
		return colorGreen
	case signedUp*2 >= needed:
		return colorYellow
	default:
		return colorRed
	}
}

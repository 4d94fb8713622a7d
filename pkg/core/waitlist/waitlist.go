package waitlist

import (
	"sort"

	"github.com/cornerstone-fellowship/members/pkg/db"
)

// SortFIFO orders RSVPs by submission time, breaking ties by submission sequence
func SortFIFO(rsvps []db.RSVP) {
	sort.SliceStable(rsvps, func(i, j int) bool {
		if !rsvps[i].CreatedAt.Equal(rsvps[j].CreatedAt) {
			return rsvps[i].CreatedAt.Before(rsvps[j].CreatedAt)
		}
		return rsvps[i].Seq < rsvps[j].Seq
	})
}

// PlanPromotions selects which waitlisted RSVPs to confirm given the remaining capacity.
// Entries are scanned in FIFO order; each party that fits is promoted and its seats are
// deducted before the scan continues, so an earlier party that fits is never passed over
// for a later one. A nil remaining capacity means the event is unlimited.
func PlanPromotions(waitlisted []db.RSVP, remaining *int) []db.RSVP {
	queue := make([]db.RSVP, 0, len(waitlisted))
	for _, r := range waitlisted {
		if r.Status == db.RSVPStatusWaitlisted {
			queue = append(queue, r)
		}
	}
	SortFIFO(queue)

	if remaining == nil {
		return queue
	}

	left := *remaining
	var promoted []db.RSVP
	for _, r := range queue {
		if left <= 0 {
			break
		}
		if r.PartySize() <= left {
			promoted = append(promoted, r)
			left -= r.PartySize()
		}
	}
	return promoted
}

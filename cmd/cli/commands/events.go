package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/members/pkg/core/services"
	"github.com/cornerstone-fellowship/members/pkg/db"
)

const eventTimeLayout = "2006-01-02 15:04"

// CreateEventCmd creates the createEvent command
func CreateEventCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createEvent <slug> <title> <starts_at>",
		Short: "Create an event (starts_at as \"2006-01-02 15:04\" in the configured timezone)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			startsAt, err := time.ParseInLocation(eventTimeLayout, args[2], app.Location)
			if err != nil {
				return fmt.Errorf("starts_at must look like %q: %w", eventTimeLayout, err)
			}

			capacity, _ := cmd.Flags().GetInt("capacity")
			waitlist, _ := cmd.Flags().GetBool("waitlist")
			location, _ := cmd.Flags().GetString("location")
			endsAtRaw, _ := cmd.Flags().GetString("ends")

			input := services.NewEvent{
				Slug:            args[0],
				Title:           args[1],
				StartsAt:        startsAt,
				Location:        location,
				WaitlistEnabled: waitlist,
			}
			if capacity > 0 {
				input.MaxCapacity = &capacity
			}
			if endsAtRaw != "" {
				endsAt, err := time.ParseInLocation(eventTimeLayout, endsAtRaw, app.Location)
				if err != nil {
					return fmt.Errorf("--ends must look like %q: %w", eventTimeLayout, err)
				}
				input.EndsAt = &endsAt
			}

			event, err := services.CreateEvent(app.Ctx, app.Database, app.Logger, input)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Event created successfully!\n\n")
			fmt.Printf("Event ID: %s\n", event.ID)
			fmt.Printf("Title:    %s\n", event.Title)
			fmt.Printf("Starts:   %s\n", event.StartsAt.In(app.Location).Format(eventTimeLayout))
			fmt.Printf("Capacity: %s\n\n", capacityLabel(event.MaxCapacity))
			return nil
		},
	}

	cmd.Flags().Int("capacity", 0, "Maximum confirmed attendees (0 for unlimited)")
	cmd.Flags().Bool("waitlist", false, "Waitlist registrations once the event is full")
	cmd.Flags().String("location", "", "Where the event takes place")
	cmd.Flags().String("ends", "", "End time, same format as starts_at")

	return cmd
}

// SubmitRSVPCmd creates the submitRSVP command
func SubmitRSVPCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submitRSVP <event_id> <name> <email>",
		Short: "Register a party for an event",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			guests, _ := cmd.Flags().GetInt("guests")
			phone, _ := cmd.Flags().GetString("phone")

			result, err := services.SubmitRSVP(app.Ctx, app.Database, app.Notifier, app.Logger, args[0],
				services.Registrant{Name: args[1], Email: args[2], Phone: phone}, guests)
			if err != nil {
				return err
			}

			if result.Waitlisted {
				fmt.Printf("\n✓ Added to the waitlist\n\n")
			} else {
				fmt.Printf("\n✓ Registration confirmed\n\n")
			}
			fmt.Printf("Confirmation code: %s\n", result.RSVP.ConfirmationCode)
			fmt.Printf("Party size:        %d\n\n", result.RSVP.PartySize())
			return nil
		},
	}

	cmd.Flags().Int("guests", 0, "Number of guests besides the registrant")
	cmd.Flags().String("phone", "", "Contact phone number")

	return cmd
}

// CancelRSVPCmd creates the cancelRSVP command
func CancelRSVPCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancelRSVP <confirmation_code>",
		Short: "Cancel a registration and promote from the waitlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.CancelRSVP(app.Ctx, app.Database, app.Notifier, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Registration %s cancelled\n\n", result.RSVP.ConfirmationCode)
			if len(result.Promoted) > 0 {
				fmt.Printf("Promoted from the waitlist:\n")
				for _, r := range result.Promoted {
					fmt.Printf("  ✓ %s (%s) - party of %d\n", r.Name, r.Email, r.PartySize())
				}
				fmt.Println()
			}
			return nil
		},
	}
}

// CheckCapacityCmd creates the checkCapacity command
func CheckCapacityCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "checkCapacity <event_id>",
		Short: "Show whether an event can take more registrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := services.CheckCapacity(app.Ctx, app.Database, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\nAvailable:  %t\n", status.Available)
			fmt.Printf("Spots left: %s\n", capacityLabel(status.SpotsLeft))
			fmt.Printf("Waitlist:   %t\n\n", status.WaitlistAvailable)
			return nil
		},
	}
}

// SetEventStatusCmd creates the setEventStatus command
func SetEventStatusCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "setEventStatus <event_id> <upcoming|ongoing|completed|cancelled>",
		Short: "Move an event to a new lifecycle status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := services.UpdateEventStatus(app.Ctx, app.Database, app.Logger, args[0], db.EventStatus(args[1]))
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ %s is now %s\n\n", event.Title, event.Status)
			return nil
		},
	}
}

// ListRSVPsCmd creates the listRSVPs command
func ListRSVPsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listRSVPs <event_id>",
		Short: "List an event's registrations in submission order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("listRSVPs command", zap.String("event_id", args[0]))

			rsvps, err := services.ListRSVPs(app.Ctx, app.Database, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d registrations:\n\n", len(rsvps))
			for i, r := range rsvps {
				fmt.Printf("  %2d. %s%-10s%s %s %-24s party of %d\n",
					i+1, rsvpColor(r.Status), r.Status, colorReset, r.ConfirmationCode, r.Name, r.PartySize())
			}
			fmt.Println()
			return nil
		},
	}
}

func capacityLabel(n *int) string {
	if n == nil {
		return "unlimited"
	}
	return strconv.Itoa(*n)
}

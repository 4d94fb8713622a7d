package commands

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/members/pkg/core/services"
)

// CreateShiftCmd creates the createShift command
func CreateShiftCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createShift <title> <date> <start_time> <end_time> <spots_needed>",
		Short: "Create a one-off volunteer shift (date YYYY-MM-DD, times HH:MM)",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			spots, err := strconv.Atoi(args[4])
			if err != nil {
				return fmt.Errorf("spots_needed must be a number: %w", err)
			}
			location, _ := cmd.Flags().GetString("location")
			role, _ := cmd.Flags().GetString("role")

			shift, err := services.CreateShift(app.Ctx, app.Database, app.Logger, services.NewShift{
				Title:       args[0],
				Date:        args[1],
				StartTime:   args[2],
				EndTime:     args[3],
				Location:    location,
				Role:        role,
				SpotsNeeded: spots,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Shift created successfully!\n\n")
			fmt.Printf("Shift ID: %s\n", shift.ID)
			fmt.Printf("When:     %s %s-%s\n", shift.Date, shift.StartTime, shift.EndTime)
			fmt.Printf("Spots:    %d\n\n", shift.SpotsNeeded)
			return nil
		},
	}

	cmd.Flags().String("location", "", "Where the shift takes place")
	cmd.Flags().String("role", "", "Role volunteers fill on this shift")

	return cmd
}

// DefineShiftsCmd creates the defineShifts command
func DefineShiftsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "defineShifts <from> <to>",
		Short: "Create shifts from the configured templates for a date range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(app.Cfg.ShiftTemplates) == 0 {
				return errors.New("no shiftTemplates configured")
			}

			created, err := services.DefineShifts(app.Ctx, app.Database, app.Logger, app.Cfg.ShiftTemplates, args[0], args[1], app.Location)
			if err != nil {
				return err
			}

			if len(created) == 0 {
				fmt.Println("No new shifts to create - every occurrence already exists.")
				return nil
			}

			fmt.Printf("\n✓ Created %d shifts:\n\n", len(created))
			for i, s := range created {
				date, _ := time.Parse(time.DateOnly, s.Date)
				fmt.Printf("  %2d. %s %s-%s  %s\n", i+1, date.Format("2006-01-02 (Monday)"), s.StartTime, s.EndTime, s.Title)
			}
			fmt.Println()
			return nil
		},
	}
}

// ListShiftsCmd creates the listShifts command
func ListShiftsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listShifts <from> <to>",
		Short: "Show shifts in a date range and how many volunteers each has",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("listShifts command", zap.String("from", args[0]), zap.String("to", args[1]))

			shifts, err := services.ListShifts(app.Ctx, app.Database, args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d shifts:\n\n", len(shifts))
			for _, s := range shifts {
				roster, err := services.ShiftRoster(app.Ctx, app.Database, s.ID)
				if err != nil {
					return err
				}
				cell := fmt.Sprintf("%d/%d", len(roster), s.SpotsNeeded)
				fmt.Printf("  %s %s-%s  %s%-6s%s %-10s %s\n",
					s.Date, s.StartTime, s.EndTime,
					fillColor(s.Status, len(roster), s.SpotsNeeded), cell, colorReset,
					s.Status, s.Title)
			}

			fmt.Printf("\nLegend:\n")
			fmt.Printf("  %sX/Y%s = fully staffed\n", colorGreen, colorReset)
			fmt.Printf("  %sX/Y%s = at least half staffed\n", colorYellow, colorReset)
			fmt.Printf("  %sX/Y%s = under half staffed\n", colorRed, colorReset)
			fmt.Printf("  %sX/Y%s = cancelled\n\n", colorDim, colorReset)
			return nil
		},
	}
}

// SignUpForShiftCmd creates the signUpForShift command
func SignUpForShiftCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signUpForShift <shift_id> <volunteer_id> <name> <email>",
		Short: "Sign a volunteer up for a shift",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, _ := cmd.Flags().GetString("notes")

			assignment, err := services.SignUpForShift(app.Ctx, app.Database, app.Notifier, app.Logger, args[0],
				services.Volunteer{ID: args[1], Name: args[2], Email: args[3]}, notes, time.Now(), app.Location)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ %s signed up (assignment %s)\n\n", assignment.VolunteerName, assignment.ID)
			return nil
		},
	}

	cmd.Flags().String("notes", "", "Notes for the shift organizer")

	return cmd
}

// CancelShiftSignupCmd creates the cancelShiftSignup command
func CancelShiftSignupCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancelShiftSignup <shift_id> <volunteer_id>",
		Short: "Withdraw a volunteer from a shift before it starts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := services.CancelShiftSignup(app.Ctx, app.Database, app.Logger, args[0], args[1], time.Now(), app.Location)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Signup cancelled\n\n")
			return nil
		},
	}
}

// CancelShiftCmd creates the cancelShift command
func CancelShiftCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancelShift <shift_id>",
		Short: "Cancel a shift and notify every scheduled volunteer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shift, err := services.CancelShift(app.Ctx, app.Database, app.Notifier, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ %s on %s cancelled\n\n", shift.Title, shift.Date)
			return nil
		},
	}
}

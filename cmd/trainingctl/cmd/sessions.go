package cmd

import (
	"time"

	"github.com/gartstein/ehs/internal/training/handlers"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Schedule and advance training sessions",
}

var scheduleSessionCmd = &cobra.Command{
	Use:   "schedule [opportunity_id]",
	Short: "Schedule an awarded opportunity",
	Long: `Create the session for an opportunity whose proposal was accepted.

Example:
  trainingctl sessions schedule 3f1c... --start 2025-05-22T09:00:00Z --location "Houston, TX" --employee emp-1,emp-2`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		start, _ := flags.GetString("start")
		end, _ := flags.GetString("end")
		format, _ := flags.GetString("format")
		location, _ := flags.GetString("location")
		employees, _ := flags.GetStringSlice("employee")

		startsAt, err := time.Parse(time.RFC3339, start)
		if err != nil {
			cmd.Println("Error: --start must be an RFC 3339 timestamp")
			return
		}
		req := handlers.ScheduleSessionRequest{
			StartsAt:    startsAt,
			Format:      format,
			Location:    location,
			EmployeeIDs: employees,
		}
		if end != "" {
			endsAt, err := time.Parse(time.RFC3339, end)
			if err != nil {
				cmd.Println("Error: --end must be an RFC 3339 timestamp")
				return
			}
			req.EndsAt = &endsAt
		}

		client := newClient(cmd)
		if client == nil {
			return
		}

		result, err := client.ScheduleSession(args[0], req)
		if err != nil {
			printError(cmd, "Schedule", err)
			return
		}
		cmd.Printf("✓ Session scheduled!\nSession ID: %s\nStarts: %s\n", result.Session.ID, result.Session.StartsAt.Format(time.RFC1123))
	},
}

var advanceSessionCmd = &cobra.Command{
	Use:   "advance [session_id]",
	Short: "Move a session to its next status",
	Long: `Advance a session: Scheduled -> InProgress -> Completed, or Scheduled -> Cancelled.
A rating between 0 and 5 may be given on completion.

Example:
  trainingctl sessions advance 7d4e... --status completed --rating 4.8`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		status, _ := flags.GetString("status")
		if status == "" {
			cmd.Println("Error: --status is required")
			return
		}
		req := handlers.AdvanceSessionRequest{Status: status}
		if flags.Changed("rating") {
			rating, _ := flags.GetFloat64("rating")
			req.Rating = &rating
		}

		client := newClient(cmd)
		if client == nil {
			return
		}

		result, err := client.AdvanceSession(args[0], req)
		if err != nil {
			printError(cmd, "Advance", err)
			return
		}
		cmd.Printf("✓ Session %s is %s\n", result.Session.ID, result.Session.Status)
	},
}

func init() {
	flags := scheduleSessionCmd.Flags()
	flags.String("start", "", "start time, RFC 3339 (required)")
	flags.String("end", "", "end time, RFC 3339 (defaults to start)")
	flags.String("format", "", "delivery format (defaults to the opportunity's)")
	flags.String("location", "", "where the session takes place (required)")
	flags.StringSlice("employee", []string{}, "enrolled employee ID (repeatable, required)")

	advanceSessionCmd.Flags().StringP("status", "s", "", "next status (required)")
	advanceSessionCmd.Flags().Float64("rating", 0, "rating from 0 to 5, only on completion")

	sessionsCmd.AddCommand(scheduleSessionCmd, advanceSessionCmd)
	rootCmd.AddCommand(sessionsCmd)
}

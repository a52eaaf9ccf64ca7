package cmd

import (
	"github.com/spf13/cobra"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the training calendar for a month",
	Long: `List the calendar entries visible to the caller for one month: scheduled
sessions plus opportunities that are still waiting for a vendor or a date.

Filters: all, or a status such as scheduled, completed, pendingvendor.
Vendors may use assigned or unassigned.

Example:
  trainingctl calendar --month 2025-05 --filter all`,
	Run: func(cmd *cobra.Command, args []string) {
		month, _ := cmd.Flags().GetString("month")
		filter, _ := cmd.Flags().GetString("filter")

		client := newClient(cmd)
		if client == nil {
			return
		}

		cal, err := client.Calendar(month, filter)
		if err != nil {
			printError(cmd, "Calendar", err)
			return
		}

		cmd.Printf("%sCalendar %s%s\n", colorBold, cal.Month, colorReset)
		cmd.Println("──────────────────────────────")
		if len(cal.Events) == 0 {
			cmd.Println("No entries.")
			return
		}
		for _, day := range cal.Days {
			for _, ev := range day.Events {
				cmd.Printf("%s  %s%-16s%s %s %s(%s)%s\n",
					day.Date.Format("Mon 02"), colorCyan, ev.Status, colorReset,
					ev.Title, colorDim, ev.Location, colorReset)
			}
		}
	},
}

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorDim   = "\033[2m"
	colorCyan  = "\033[36m"
)

func init() {
	calendarCmd.Flags().String("month", "", "month as YYYY-MM (defaults to the current month)")
	calendarCmd.Flags().String("filter", "all", "status filter")
	rootCmd.AddCommand(calendarCmd)
}

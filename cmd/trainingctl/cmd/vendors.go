package cmd

import (
	"github.com/spf13/cobra"
)

var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "Review vendor registrations",
}

func reviewCommand(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " [vendor_id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client := newClient(cmd)
			if client == nil {
				return
			}
			result, err := client.ReviewVendor(args[0], action)
			if err != nil {
				printError(cmd, "Review", err)
				return
			}
			cmd.Printf("✓ Vendor %s (%s) is %s\n", result.Vendor.Name, result.Vendor.ID, result.Vendor.Status)
		},
	}
}

func init() {
	vendorsCmd.AddCommand(
		reviewCommand("approve", "Approve a pending vendor"),
		reviewCommand("reject", "Reject a pending vendor"),
	)
	rootCmd.AddCommand(vendorsCmd)
}

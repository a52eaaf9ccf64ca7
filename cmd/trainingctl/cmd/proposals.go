package cmd

import (
	"github.com/gartstein/ehs/internal/training/handlers"
	"github.com/gartstein/ehs/internal/training/models"
	"github.com/spf13/cobra"
)

var proposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "Submit and decide vendor proposals",
}

var submitProposalCmd = &cobra.Command{
	Use:   "submit [opportunity_id]",
	Short: "Submit a bid on an open opportunity",
	Long: `Submit a proposal for an open opportunity. The bid is placed for the vendor
account of the caller's token.

Example:
  trainingctl proposals submit 3f1c... --content-fee 750 --training-fee 2000 --travel-fee 500 --trainer "Dana Reyes"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		contentFee, _ := flags.GetFloat64("content-fee")
		trainingFee, _ := flags.GetFloat64("training-fee")
		travelFee, _ := flags.GetFloat64("travel-fee")
		trainerNames, _ := flags.GetStringSlice("trainer")
		notes, _ := flags.GetString("notes")

		if len(trainerNames) == 0 {
			cmd.Println("Error: at least one --trainer is required")
			return
		}

		client := newClient(cmd)
		if client == nil {
			return
		}

		req := handlers.SubmitProposalRequest{
			Fees:  models.Fees{ContentFee: contentFee, TrainingFee: trainingFee, TravelFee: travelFee},
			Notes: notes,
		}
		for _, name := range trainerNames {
			req.Trainers = append(req.Trainers, models.Trainer{Name: name})
		}

		result, err := client.SubmitProposal(args[0], req)
		if err != nil {
			printError(cmd, "Submit", err)
			return
		}
		cmd.Printf("✓ Proposal submitted!\nProposal ID: %s\nTotal fee: %.2f\n", result.Proposal.ID, result.Proposal.TotalFee)
	},
}

var decideProposalCmd = &cobra.Command{
	Use:   "decide [proposal_id]",
	Short: "Accept or reject a pending proposal",
	Long: `Record the decision on a pending proposal. Accepting awards the opportunity
to the proposing vendor.

Example:
  trainingctl proposals decide 9a2b... --decision accepted`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		decision, _ := cmd.Flags().GetString("decision")
		if status, ok := models.ParseProposalStatus(decision); !ok || !status.IsDecision() {
			cmd.Println("Error: --decision must be accepted or rejected")
			return
		}

		client := newClient(cmd)
		if client == nil {
			return
		}

		result, err := client.DecideProposal(args[0], decision)
		if err != nil {
			printError(cmd, "Decision", err)
			return
		}
		cmd.Printf("✓ Proposal %s is %s\n", result.Proposal.ID, result.Proposal.Status)
		if result.Opportunity != nil {
			cmd.Printf("Opportunity %s is %s\n", result.Opportunity.ID, result.Opportunity.Status)
		}
		for _, p := range result.Rejected {
			cmd.Printf("Rejected sibling proposal %s\n", p.ID)
		}
	},
}

func init() {
	flags := submitProposalCmd.Flags()
	flags.Float64("content-fee", 0, "content fee")
	flags.Float64("training-fee", 0, "training fee")
	flags.Float64("travel-fee", 0, "travel fee")
	flags.StringSlice("trainer", []string{}, "trainer name (repeatable, required)")
	flags.String("notes", "", "free-form notes for the client")

	decideProposalCmd.Flags().StringP("decision", "d", "", "accepted or rejected (required)")

	proposalsCmd.AddCommand(submitProposalCmd, decideProposalCmd)
	rootCmd.AddCommand(proposalsCmd)
}

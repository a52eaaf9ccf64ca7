package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "trainingctl",
	Short: "trainingctl drives the EHS training lifecycle from the terminal",
	Long: `trainingctl is the command-line client of the EHS training service.

It covers the lifecycle transitions: vendors bid on opportunities, proposals
are accepted or rejected, awarded work is scheduled as sessions and sessions
are delivered.

Common workflows:

  Approve a newly registered vendor:
    trainingctl vendors approve <vendor-id>

  Bid on an opportunity as a vendor:
    trainingctl proposals submit <opportunity-id> --content-fee 750 --training-fee 2000 --trainer "Dana Reyes"

  Accept a proposal:
    trainingctl proposals decide <proposal-id> --decision accepted

  Schedule and deliver:
    trainingctl sessions schedule <opportunity-id> --start 2025-05-22T09:00:00Z --location "Houston, TX" --employee emp-1
    trainingctl sessions advance <session-id> --status completed --rating 4.8

  Show the month:
    trainingctl calendar --month 2025-05

Configuration:
  EHS_URL      API endpoint (default: http://localhost:8080)
  EHS_TOKEN    bearer token issued by the authentication service`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".trainingctl")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("EHS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.trainingctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:8080", "training service URL")
	_ = viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("token", "t", "", "bearer token for authentication")
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}

// newClient returns a client for the configured endpoint, or nil after
// telling the user that no token is set.
func newClient(cmd *cobra.Command) *Client {
	token := viper.GetString("token")
	if token == "" {
		cmd.Println("API token not found. Please set it using the --token flag or the EHS_TOKEN environment variable")
		return nil
	}
	return NewClient(viper.GetString("url"), token)
}

// printError reports a failed call, including the API status when there is one.
func printError(cmd *cobra.Command, action string, err error) {
	if apiErr, ok := err.(*APIError); ok {
		cmd.Printf("%s failed (%d): %s\n", action, apiErr.StatusCode, apiErr.Message)
		return
	}
	cmd.Printf("%s failed: %v\n", action, err)
}

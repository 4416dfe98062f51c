package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CREDITX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var client *apiClient
	rootCmd := &cobra.Command{
		Use:   "creditx-cli",
		Short: "CreditX CLI - operate the credit scoring API from a terminal",
		Long: `creditx-cli talks to a running creditx-server.

Examples:
  creditx-cli submit --pan ABCDE1234F --first-name Asha --last-name Rao \
    --loan-type home --bank-statement bank.pdf --ais ais.pdf
  creditx-cli ask <request-id> "Why was this application declined?"
  creditx-cli list --org acme
  creditx-cli expense --statement statement.pdf
  creditx-cli eligibility https://www.myscheme.gov.in/schemes/pmay`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgFile := v.GetString("config"); cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return err
				}
			}
			client = newAPIClient(v.GetString("server"), v.GetString("api-key"), v.GetString("token"), v.GetDuration("timeout"))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("server", "http://localhost:8000", "CreditX server base URL")
	flags.String("api-key", "", "API key sent as X-API-Key")
	flags.String("token", "", "Bearer token for JWT auth")
	flags.Duration("timeout", 30*time.Minute, "Request timeout")
	flags.String("config", "", "Optional config file (yaml, toml or json)")
	flags.Bool("json", false, "Print raw JSON responses")
	_ = v.BindPFlags(flags)

	clientFn := func() *apiClient { return client }
	rootCmd.AddCommand(
		newSubmitCmd(clientFn, v),
		newGetCmd(clientFn, v),
		newListCmd(clientFn, v),
		newAskCmd(clientFn),
		newHistoryCmd(clientFn, v),
		newStatusCmd(clientFn, v),
		newExpenseCmd(clientFn, v),
		newEligibilityCmd(clientFn, v),
	)
	return rootCmd
}

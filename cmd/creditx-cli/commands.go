package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type clientFunc func() *apiClient

func newSubmitCmd(client clientFunc, v *viper.Viper) *cobra.Command {
	var s submission
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a credit application and print the verdict",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, raw, err := client().Submit(s)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), v, raw, func(w io.Writer) {
				printApplication(w, app)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&s.UserID, "user", "", "Submitting user id")
	f.StringVar(&s.OrgID, "org", "", "Organization id")
	f.StringVar(&s.PanID, "pan", "", "Applicant PAN")
	f.StringVar(&s.FirstName, "first-name", "", "Applicant first name")
	f.StringVar(&s.MiddleName, "middle-name", "", "Applicant middle name")
	f.StringVar(&s.LastName, "last-name", "", "Applicant last name")
	f.StringVar(&s.LoanType, "loan-type", "", "Loan type")
	f.StringVar(&s.LoanDescription, "description", "", "Loan description")
	f.StringVar(&s.BankStatement, "bank-statement", "", "Path to the bank statement (PDF or text)")
	f.StringVar(&s.AIS, "ais", "", "Path to the annual information statement (PDF or text)")
	_ = cmd.MarkFlagRequired("pan")
	_ = cmd.MarkFlagRequired("bank-statement")
	_ = cmd.MarkFlagRequired("ais")
	return cmd
}

func newGetCmd(client clientFunc, v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "get [request-id]",
		Short: "Show a stored application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, raw, err := client().Get(args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), v, raw, func(w io.Writer) {
				printApplication(w, app)
			})
		},
	}
}

func newListCmd(client clientFunc, v *viper.Viper) *cobra.Command {
	var orgID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applications for an organization",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, raw, err := client().List(orgID)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), v, raw, func(w io.Writer) {
				if len(list.Data) == 0 {
					fmt.Fprintln(w, "no applications")
					return
				}
				for _, app := range list.Data {
					fmt.Fprintf(w, "%-36s  %-10s  %-9s  %s %s\n",
						app.RequestID, app.PanID, orDash(app.Decision), app.FirstName, app.LastName)
				}
			})
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "Organization id")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func newAskCmd(client clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [request-id] [question]",
		Short: "Ask a follow-up question about an application",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			answer, _, err := client().Ask(args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer.Message)
			return nil
		},
	}
}

func newHistoryCmd(client clientFunc, v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "history [request-id]",
		Short: "Print the conversation log of an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, raw, err := client().History(args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), v, raw, func(w io.Writer) {
				if len(log.Turns) == 0 {
					fmt.Fprintln(w, "no conversation yet")
					return
				}
				for _, t := range log.Turns {
					fmt.Fprintf(w, "user: %s\nai: %s\n\n", t.UserQuery, t.AIResponse)
				}
			})
		},
	}
}

func newStatusCmd(client clientFunc, v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:       "status [request-id] [approved|declined]",
		Short:     "Approve or decline an application",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"approved", "declined"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, raw, err := client().UpdateStatus(args[0], args[1])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), v, raw, func(w io.Writer) {
				fmt.Fprintf(w, "%s is now %s\n", app.RequestID, app.Status)
			})
		},
	}
}

func newExpenseCmd(client clientFunc, v *viper.Viper) *cobra.Command {
	var statement string
	var additional []string
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Analyze spending in a bank statement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, raw, err := client().AnalyzeExpenses(statement, additional)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), v, raw, func(w io.Writer) {
				fmt.Fprintf(w, "summary: %s\n", report.Summary)
				fmt.Fprintf(w, "transactions: %d\n", len(report.Transactions))
				for _, note := range report.UnusualTransactions {
					fmt.Fprintf(w, "unusual: %s\n", note)
				}
				for _, note := range report.Suggestions {
					fmt.Fprintf(w, "suggestion: %s\n", note)
				}
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&statement, "statement", "", "Path to the bank statement (PDF or text)")
	f.StringSliceVar(&additional, "additional", nil, "Supporting documents, repeatable")
	_ = cmd.MarkFlagRequired("statement")
	return cmd
}

func newEligibilityCmd(client clientFunc, v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "eligibility [url]",
		Short: "Extract eligibility criteria from a welfare scheme page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, raw, err := client().Eligibility(args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), v, raw, func(w io.Writer) {
				fmt.Fprintln(w, out.Criteria)
			})
		},
	}
}

func render(w io.Writer, v *viper.Viper, raw []byte, pretty func(io.Writer)) error {
	if v.GetBool("json") {
		_, err := fmt.Fprintln(w, string(raw))
		return err
	}
	pretty(w)
	return nil
}

func printApplication(w io.Writer, app *application) {
	fmt.Fprintf(w, "request:   %s\n", app.RequestID)
	fmt.Fprintf(w, "applicant: %s %s (%s)\n", app.FirstName, app.LastName, app.PanID)
	fmt.Fprintf(w, "loan:      %s\n", app.LoanType)
	fmt.Fprintf(w, "status:    %s\n", app.Status)
	fmt.Fprintf(w, "decision:  %s\n", orDash(app.Decision))
	if app.VerdictError != "" {
		fmt.Fprintf(w, "verdict error: %s\n", app.VerdictError)
	}
	if reason, ok := app.Verdict["Justification for the Decision"].(string); ok && reason != "" {
		fmt.Fprintf(w, "reason:    %s\n", reason)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

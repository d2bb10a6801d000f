package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"budgetbuddy/internal/cli"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
)

// session holds the application opened by the root command's pre-run hook.
type session struct {
	app *cli.App
}

func (s *session) service() *services.BudgetService {
	return s.app.Service
}

func (s *session) close() {
	if s.app == nil {
		return
	}
	if err := s.app.Close(); err != nil {
		s.app.Logger.Error("Cleanup failed", log.FieldError, err.Error())
	}
	s.app = nil
}

func newRootCmd(s *session) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "budgetctl",
		Short:         "Track expenses, loans, budgets and income from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			logOut := io.Discard
			if verbose {
				logOut = cmd.ErrOrStderr()
			}
			logger := cli.SetupLogger(cfg, logOut)

			app, err := cli.Bootstrap(cmd.Context(), cfg, logger, cli.Options{Publish: true})
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			s.app = app
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write logs to stderr")

	root.AddCommand(incomeCmd(s))
	root.AddCommand(expenseCmd(s))
	root.AddCommand(loanCmd(s))
	root.AddCommand(budgetCmd(s))
	root.AddCommand(categoryCmd(s))
	root.AddCommand(reportCmd(s))
	root.AddCommand(alertsCmd(s))
	root.AddCommand(classifyCmd(s))
	return root
}

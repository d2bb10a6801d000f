package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"budgetbuddy/internal/alert"
	"budgetbuddy/internal/cli"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/services"
)

func incomeCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Manage the monthly income",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set AMOUNT",
		Short: "Set the monthly income",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notices, err := s.service().SetIncome(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printNotices(cmd.OutOrStdout(), notices)
			return nil
		},
	})
	return cmd
}

func expenseCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record expenses",
	}

	var in services.ExpenseInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Add an expense; without --category the description is classified",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := in
			if input.Date == "" {
				input.Date = s.service().Now().Format(core.DateLayout)
			}
			e, notices, err := s.service().AddExpense(cmd.Context(), input)
			if err != nil {
				return err
			}
			printNotices(cmd.OutOrStdout(), notices)
			fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("category: "+e.Category))
			return nil
		},
	}
	add.Flags().StringVar(&in.Date, "date", "", "expense date YYYY-MM-DD (default today)")
	add.Flags().StringVar(&in.Amount, "amount", "", "amount spent")
	add.Flags().StringVar(&in.Description, "description", "", "what the money was spent on")
	add.Flags().StringVar(&in.Category, "category", "", "category label (default classified)")
	_ = add.MarkFlagRequired("amount")
	_ = add.MarkFlagRequired("description")

	cmd.AddCommand(add)
	return cmd
}

func loanCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Register loans and EMIs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME AMOUNT",
		Short: "Register a loan; expenses mentioning its name classify as EMI/Loan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			notices, err := s.service().AddLoan(cmd.Context(), services.LoanInput{Name: args[0], Amount: args[1]})
			if err != nil {
				return err
			}
			printNotices(cmd.OutOrStdout(), notices)
			return nil
		},
	})
	return cmd
}

func budgetCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage category budgets and savings goals",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set CATEGORY LIMIT [SAVINGS_GOAL]",
		Short: "Set or replace the budget for a category",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := services.BudgetInput{Category: args[0], BudgetLimit: args[1]}
			if len(args) == 3 {
				in.SavingsGoal = args[2]
			}
			_, notices, err := s.service().SetBudget(cmd.Context(), in)
			if err != nil {
				return err
			}
			printNotices(cmd.OutOrStdout(), notices)
			return nil
		},
	})
	return cmd
}

func categoryCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage category labels",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add LABEL",
		Short: "Register a custom category label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notices, err := s.service().AddCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printNotices(cmd.OutOrStdout(), notices)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in and custom labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, c := range s.service().Store().Categories() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	})
	return cmd
}

func reportCmd(s *session) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the month's category totals, goal progress and expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ym, err := resolveMonth(s, month)
			if err != nil {
				return err
			}
			writeReport(cmd.OutOrStdout(), s.service().Engine(), s.service().Dashboard(ym))
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month YYYY-MM (default current)")
	return cmd
}

func alertsCmd(s *session) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Show budget and overspend alerts for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ym, err := resolveMonth(s, month)
			if err != nil {
				return err
			}
			lines := s.service().Status(ym)
			if len(lines) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render("No alerts for "+ym.String()))
				return nil
			}
			for _, l := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), cli.StyleMessage(l))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month YYYY-MM (default current)")
	return cmd
}

func classifyCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "classify DESCRIPTION...",
		Short: "Preview the category a description would get",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), s.service().Classify(strings.Join(args, " ")))
			return nil
		},
	}
}

func resolveMonth(s *session, raw string) (core.YearMonth, error) {
	if strings.TrimSpace(raw) == "" {
		return s.service().CurrentMonth(), nil
	}
	ym, err := core.ParseYearMonth(raw)
	if err != nil {
		return core.YearMonth{}, core.Invalid("month", err)
	}
	return ym, nil
}

func printNotices(w io.Writer, notices []alert.Notice) {
	for _, n := range notices {
		fmt.Fprintln(w, cli.StyleMessage(n.Message))
	}
}

func writeReport(w io.Writer, engine *alert.Engine, d services.Dashboard) {
	fmt.Fprintln(w, cli.TitleStyle.Render("Report "+d.Month.String()))
	if d.Income != nil {
		fmt.Fprintf(w, "Income: %s\n", engine.Format(*d.Income))
	} else {
		fmt.Fprintln(w, cli.SubtleStyle.Render("Income: not set"))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", cli.TableHeaderStyle.Render("Category"), cli.TableHeaderStyle.Render("Spent"))
	for _, ca := range d.Chart {
		fmt.Fprintf(tw, "%s\t%s\n", ca.Name, engine.Format(ca.Amount))
	}
	fmt.Fprintf(tw, "%s\t%s\n", "Total", engine.Format(d.Total))
	_ = tw.Flush()

	if len(d.Goals) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, cli.TitleStyle.Render("Goals"))
		for _, g := range d.Goals {
			fmt.Fprintln(w, cli.StyleMessage(g))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.TitleStyle.Render("Expenses"))
	if len(d.Expenses) == 0 {
		fmt.Fprintln(w, cli.SubtleStyle.Render("No expenses this month."))
		return
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("Date"),
		cli.TableHeaderStyle.Render("Amount"),
		cli.TableHeaderStyle.Render("Category"),
		cli.TableHeaderStyle.Render("Description"))
	for _, e := range d.Expenses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Date, engine.Format(e.Amount), e.Category, e.Description)
	}
	_ = tw.Flush()
}

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dvloznov/household-finance/internal/aggregate"
	"github.com/dvloznov/household-finance/internal/domain"
)

func dashboardCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the monthly overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			m, err := parseMonthFlag(month, now)
			if err != nil {
				return err
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			d := aggregate.BuildDashboard(s.Ledger.Transactions(), s.Ledger.Budget(), s.Ledger.Goals(), m, s.Config.Recurring.Keywords, now)
			renderDashboard(cmd.OutOrStdout(), d)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default: current month)")
	return cmd
}

func parseMonthFlag(s string, now time.Time) (domain.Month, error) {
	if s == "" {
		return domain.MonthOf(now), nil
	}
	return domain.ParseMonth(s)
}

func renderDashboard(w io.Writer, d aggregate.Dashboard) {
	fmt.Fprintln(w, TitleStyle.Render("Resumo de "+d.Month.String()))

	totals := []string{
		"Receitas      " + SuccessStyle.Render(domain.FormatEUR(d.Totals.Income)),
		"Despesas      " + ErrorStyle.Render(domain.FormatEUR(d.Totals.Expense)),
		"Poupança      " + domain.FormatEUR(d.Totals.Savings),
		"Investimento  " + domain.FormatEUR(d.Totals.Investment),
		"Saldo         " + balanceStyle(d.Totals.Balance.IsNegative()).Render(domain.FormatEUR(d.Totals.Balance)),
	}
	fmt.Fprintln(w, BoxStyle.Render(strings.Join(totals, "\n")))

	if d.Forecast.Extrapolated {
		line := fmt.Sprintf("Previsão de fim de mês: %s (gasto médio diário %s)",
			domain.FormatEUR(d.Forecast.ProjectedBalance), domain.FormatEUR(d.Forecast.AvgDailySpend))
		fmt.Fprintln(w, balanceStyle(d.Forecast.Status == aggregate.StatusDanger).Render(line))
	}

	if len(d.Categories) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, BoldStyle.Render("Despesas por categoria"))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, c := range d.Categories {
			fmt.Fprintf(tw, "  %s\t%s\n", c.Category, domain.FormatEUR(c.Total))
		}
		tw.Flush()
	}

	if len(d.Plan.Categories) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, BoldStyle.Render("Orçamento vs real"))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, c := range d.Plan.Categories {
			pct := c.Percent.StringFixed(0) + "%"
			if c.OverBudget {
				pct = ErrorStyle.Render(pct)
			}
			fmt.Fprintf(tw, "  %s\t%s\t/ %s\t%s\n", c.Category, domain.FormatEUR(c.Actual), domain.FormatEUR(c.Planned), pct)
		}
		tw.Flush()
	}

	if len(d.Recurring) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", BoldStyle.Render("Subscrições e despesas fixas"), SubtleStyle.Render(domain.FormatEUR(d.MonthlySubscriptions)+"/mês"))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, r := range d.Recurring {
			fmt.Fprintf(tw, "  %s\t%s\t%dx\n", r.Name, domain.FormatEUR(r.Amount), r.Count)
		}
		tw.Flush()
	}

	if len(d.Goals) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, BoldStyle.Render("Objetivos"))
		renderGoals(w, d.Goals)
		if d.GoalsInsight != nil {
			style := SuccessStyle
			if d.GoalsInsight.Level == aggregate.InsightWarning {
				style = WarningStyle
			}
			fmt.Fprintln(w, style.Render(d.GoalsInsight.Message))
		}
	}

	if len(d.Recent) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, BoldStyle.Render("Últimos movimentos"))
		renderTransactions(w, d.Recent)
	}
}

func balanceStyle(bad bool) lipgloss.Style {
	if bad {
		return ErrorStyle
	}
	return SuccessStyle
}

func renderGoals(w io.Writer, goals []aggregate.GoalStatus) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, g := range goals {
		fmt.Fprintf(tw, "  %s\t%s / %s\t%s%%\t%d meses\t%s/mês\n",
			g.Goal.Name,
			domain.FormatEUR(g.Goal.CurrentAmount),
			domain.FormatEUR(g.Goal.TargetAmount),
			g.Percent.StringFixed(0),
			g.MonthsRemaining,
			domain.FormatEUR(g.SuggestedMonthly))
	}
	tw.Flush()
}

func renderTransactions(w io.Writer, txs []domain.Transaction) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, tx := range txs {
		amount := domain.FormatEUR(tx.Amount)
		if tx.Type == domain.TypeIncome {
			amount = SuccessStyle.Render("+" + amount)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n", tx.Date, tx.Description, amount, tx.Category, tx.Member, SubtleStyle.Render(tx.ID))
	}
	tw.Flush()
}

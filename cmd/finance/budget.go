package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dvloznov/household-finance/internal/domain"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage the monthly budget",
	}
	cmd.AddCommand(listBudgetCmd())
	cmd.AddCommand(addBudgetCmd())
	return cmd
}

func listBudgetCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List planned items for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := parseMonthFlag(month, time.Now())
			if err != nil {
				return err
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, TitleStyle.Render("Orçamento de "+m.String()))
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			n := 0
			for _, it := range s.Ledger.Budget() {
				if it.Month != m {
					continue
				}
				n++
				recurring := ""
				if it.IsRecurring {
					recurring = SubtleStyle.Render("recorrente")
				}
				fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", it.Description, it.Type, it.Category, domain.FormatEUR(it.Amount), recurring)
			}
			tw.Flush()
			if n == 0 {
				fmt.Fprintln(w, SubtleStyle.Render("Sem itens planeados."))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default: current month)")
	return cmd
}

func addBudgetCmd() *cobra.Command {
	var (
		month, description, amount, typ, category string
		recurring                                 bool
		recurrence                                int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a planned item; recurring items repeat monthly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := parseMonthFlag(month, time.Now())
			if err != nil {
				return err
			}
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			t, err := domain.ParseType(typ)
			if err != nil {
				return err
			}
			if category == "" {
				category = domain.CategoryFallback
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			items, err := s.Ledger.AddBudgetItem(cmd.Context(), domain.BudgetItem{
				Month:       m,
				Description: description,
				Amount:      amt,
				Type:        t,
				Category:    category,
				IsRecurring: recurring,
			}, recurrence)
			if err != nil {
				return err
			}
			last := items[len(items)-1].Month
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(fmt.Sprintf("%d item(s) planeado(s) de %s a %s.", len(items), m, last)))
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "first month as YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&description, "description", "", "item description")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in euros, e.g. 45.90")
	cmd.Flags().StringVar(&typ, "type", string(domain.TypeExpense), "Receita, Despesa, Poupança or Investimento")
	cmd.Flags().StringVar(&category, "category", "", "category (default: Outros)")
	cmd.Flags().BoolVar(&recurring, "recurring", false, "repeat the item monthly")
	cmd.Flags().IntVar(&recurrence, "months", domain.DefaultRecurrenceCount, "how many months a recurring item covers")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

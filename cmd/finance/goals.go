package main

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dvloznov/household-finance/internal/aggregate"
	"github.com/dvloznov/household-finance/internal/domain"
)

func goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Manage savings goals",
	}
	cmd.AddCommand(listGoalsCmd())
	cmd.AddCommand(addGoalCmd())
	return cmd
}

func listGoalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List goals with progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			goals := s.Ledger.Goals()
			w := cmd.OutOrStdout()
			if len(goals) == 0 {
				fmt.Fprintln(w, SubtleStyle.Render("Sem objetivos definidos."))
				return nil
			}
			now := time.Now()
			statuses := make([]aggregate.GoalStatus, 0, len(goals))
			for _, g := range goals {
				statuses = append(statuses, aggregate.GoalProgress(g, now))
			}
			renderGoals(w, statuses)

			income := aggregate.MonthlyTotals(s.Ledger.Transactions(), domain.MonthOf(now)).Income
			if insight := aggregate.GoalsInsight(goals, income); insight != nil {
				fmt.Fprintln(w, insight.Message)
			}
			return nil
		},
	}
}

func addGoalCmd() *cobra.Command {
	var (
		name, target, current, deadline, category, priority string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a savings goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := buildGoal(name, target, current, deadline, category, priority, time.Now())
			if err != nil {
				return err
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Ledger.UpsertGoal(cmd.Context(), g); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Objetivo criado: "+g.Name))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "goal name")
	cmd.Flags().StringVar(&target, "target", "", "target amount in euros")
	cmd.Flags().StringVar(&current, "current", "0", "amount already saved")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline as YYYY-MM-DD")
	cmd.Flags().StringVar(&category, "category", string(domain.GoalOther), "emergency, vacation, house, education, retirement or other")
	cmd.Flags().StringVar(&priority, "priority", string(domain.PriorityMedium), "high, medium or low")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("deadline")
	return cmd
}

func buildGoal(name, target, current, deadline, category, priority string, now time.Time) (domain.Goal, error) {
	t, err := decimal.NewFromString(target)
	if err != nil {
		return domain.Goal{}, fmt.Errorf("invalid --target %q: %w", target, err)
	}
	c, err := decimal.NewFromString(current)
	if err != nil {
		return domain.Goal{}, fmt.Errorf("invalid --current %q: %w", current, err)
	}
	d, err := civil.ParseDate(deadline)
	if err != nil {
		return domain.Goal{}, fmt.Errorf("invalid --deadline %q: %w", deadline, err)
	}
	g := domain.Goal{
		ID:            uuid.NewString(),
		Name:          name,
		TargetAmount:  t,
		CurrentAmount: c,
		Deadline:      d,
		Category:      domain.GoalCategory(category),
		Priority:      domain.Priority(priority),
		CreatedAt:     now.UTC(),
	}
	return g, g.Validate()
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dvloznov/household-finance/internal/aggregate"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List or delete transactions",
	}
	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(deleteTransactionCmd())
	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			txs := s.Ledger.Transactions()
			if month != "" {
				m, err := parseMonthFlag(month, time.Now())
				if err != nil {
					return err
				}
				txs = aggregate.InMonth(txs, m)
			}
			if len(txs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), SubtleStyle.Render("Sem transações."))
				return nil
			}
			renderTransactions(cmd.OutOrStdout(), aggregate.RecentTransactions(txs, len(txs)))
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "only show YYYY-MM")
	return cmd
}

func deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Ledger.DeleteTransaction(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Transação apagada."))
			return nil
		},
	}
}

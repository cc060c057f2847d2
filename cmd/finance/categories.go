package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvloznov/household-finance/internal/app"
	"github.com/dvloznov/household-finance/internal/domain"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, c := range domain.AvailableCategories(app.Vocabulary(s.Categorizer), s.Ledger.Transactions(), s.Ledger.Budget()) {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

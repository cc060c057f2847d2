package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dvloznov/household-finance/internal/advisor"
)

func adviseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advise <question>",
		Short: "Ask the AI advisor about the household finances",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if s.Advisor == nil {
				return errors.New("the advisor needs ai.api_key (or GEMINI_API_KEY)")
			}
			snap := advisor.Snapshot{Transactions: s.Ledger.Transactions(), Goals: s.Ledger.Goals()}
			reply, err := s.Advisor.Ask(cmd.Context(), snap, nil, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
}

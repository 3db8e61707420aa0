package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/splitledger/internal/domain"
)

func newSplitCmd() *cobra.Command {
	var (
		amount       string
		method       string
		participants []string
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Compute a split offline",
		Long: `Runs the split engine without a server.

Participants are given as ID for equal splits and as ID=VALUE for exact
amounts or percentages:

  splitledger-cli split --amount 100 --method percentage --participant 1=50 --participant 2=50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := domain.ParseMoney(amount)
			if err != nil {
				return err
			}

			splitMethod := domain.SplitMethod(strings.ToLower(method))
			if !splitMethod.IsValid() {
				return domain.ErrInvalidSplitMethod
			}

			shares, err := parseShares(participants)
			if err != nil {
				return err
			}

			parts, err := domain.ComputeSplit(splitMethod, total, shares)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-16s %s\n", "PARTICIPANT", "AMOUNT OWED")
			for _, p := range parts {
				fmt.Fprintf(out, "%-16d %s\n", p.ParticipantID, p.Amount)
			}
			fmt.Fprintf(out, "%-16s %s\n", "TOTAL", total)

			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Expense amount, up to 3 decimal places")
	cmd.Flags().StringVar(&method, "method", "equal", "Split method: equal, exact or percentage")
	cmd.Flags().StringArrayVar(&participants, "participant", nil, "Participant as ID or ID=VALUE (repeatable)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("participant")

	return cmd
}

func parseShares(args []string) ([]domain.Share, error) {
	if len(args) == 0 {
		return nil, domain.ErrMissingParticipants
	}

	shares := make([]domain.Share, 0, len(args))
	seen := make(map[int64]bool, len(args))
	for _, arg := range args {
		idPart, valuePart, hasValue := strings.Cut(arg, "=")

		id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("participant %q: %w", arg, domain.ErrInvalidParticipantID)
		}
		if seen[id] {
			return nil, domain.ErrDuplicateParticipants
		}
		seen[id] = true

		share := domain.Share{ParticipantID: id}
		if hasValue {
			value, err := decimal.NewFromString(strings.TrimSpace(valuePart))
			if err != nil {
				return nil, fmt.Errorf("participant %q: split value is not a number", arg)
			}
			share.Value = value
		}
		shares = append(shares, share)
	}

	return shares, nil
}

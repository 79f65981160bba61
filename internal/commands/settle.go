package commands

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/splitme/splitme/internal/calculator"
	"github.com/splitme/splitme/internal/chain"
	"github.com/splitme/splitme/internal/wallet"
)

func newSettleCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Approve and settle debts on chain from the PRIVATE_KEY account",
	}
	cmd.AddCommand(newSettleExpenseCommand(a), newSettleAllCommand(a))
	return cmd
}

func newSettleExpenseCommand(a *app) *cobra.Command {
	var amount string

	cmd := &cobra.Command{
		Use:   "expense <expense-id>",
		Short: "Pay toward your share of one expense",
		Long: `Pay toward your share of an expense, identified by its contract id. Without
--amount the full equal share is paid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			expenseID, err := parseChainID(args[0])
			if err != nil {
				return err
			}

			env, err := a.dial(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			_, contracts, err := a.contracts(env)
			if err != nil {
				return err
			}
			opts, err := a.transactor(ctx, env)
			if err != nil {
				return err
			}

			var value decimal.Decimal
			if amount != "" {
				value, err = wallet.ParseAmount(amount)
				if err != nil {
					return err
				}
			} else {
				info, err := contracts.SplitMe.GetExpense(ctx, expenseID)
				if err != nil {
					return err
				}
				if info.Settled {
					return fmt.Errorf("expense %s is already settled", expenseID)
				}
				value, err = shareOf(info, opts.From)
				if err != nil {
					return err
				}
			}

			settler := chain.NewSettler(contracts.Token, contracts.SplitMe, chain.WaitMined(env.client), a.logger)
			res, err := settler.SettleExpense(ctx, opts, expenseID, wallet.ToBaseUnits(value, wallet.TokenDecimals))
			if err != nil {
				return err
			}
			printSettlement(cmd, env, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "token amount to pay (default: your full share)")

	return cmd
}

func newSettleAllCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "all <group-id>",
		Short: "Pay everything you owe in a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			groupID, err := parseChainID(args[0])
			if err != nil {
				return err
			}

			env, err := a.dial(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			_, contracts, err := a.contracts(env)
			if err != nil {
				return err
			}
			opts, err := a.transactor(ctx, env)
			if err != nil {
				return err
			}

			settler := chain.NewSettler(contracts.Token, contracts.SplitMe, chain.WaitMined(env.client), a.logger)
			res, err := settler.SettleAll(ctx, opts, groupID)
			if err != nil {
				return err
			}
			printSettlement(cmd, env, res)
			return nil
		},
	}
}

func parseChainID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// shareOf returns the equal share owed by member for an on-chain expense.
func shareOf(info *chain.ExpenseInfo, member common.Address) (decimal.Decimal, error) {
	if wallet.SameAddress(info.PaidBy.Hex(), member.Hex()) {
		return decimal.Zero, fmt.Errorf("expense %s was paid by you", info.ID)
	}
	participants := make([]string, len(info.Participants))
	for i, p := range info.Participants {
		participants[i] = p.Hex()
	}
	shares, err := calculator.SplitEqually(wallet.FromBaseUnits(info.Amount, wallet.TokenDecimals), participants)
	if err != nil {
		return decimal.Zero, err
	}
	for _, s := range shares {
		if wallet.SameAddress(s.Participant, member.Hex()) {
			return s.Amount, nil
		}
	}
	return decimal.Zero, fmt.Errorf("%s is not a participant of expense %s", member.Hex(), info.ID)
}

func printSettlement(cmd *cobra.Command, env *chainEnv, res *chain.SettleResult) {
	out := cmd.OutOrStdout()
	if res.ApproveTx != (common.Hash{}) {
		fmt.Fprintf(out, "Approved: %s\n", env.describeTx(res.ApproveTx))
	}
	fmt.Fprintf(out, "Settled %s: %s\n",
		wallet.FormatAmount(wallet.FromBaseUnits(res.Amount, wallet.TokenDecimals)),
		env.describeTx(res.SettleTx))
}

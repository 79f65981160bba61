package commands

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"

	"github.com/splitme/splitme/internal/chain"
	"github.com/splitme/splitme/internal/wallet"
)

func newFaucetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "faucet",
		Short: "Mint test ExpenseTokens to the PRIVATE_KEY account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

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

			tx, err := contracts.Token.Faucet(opts)
			if err != nil {
				return err
			}
			receipt, err := bind.WaitMined(ctx, env.client, tx)
			if err != nil {
				return fmt.Errorf("faucet: %w", err)
			}
			if receipt.Status != types.ReceiptStatusSuccessful {
				return fmt.Errorf("faucet %s: %w", tx.Hash().Hex(), chain.ErrTxFailed)
			}

			balance, err := contracts.Token.BalanceOf(ctx, opts.From)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Faucet: %s\n", env.describeTx(tx.Hash()))
			fmt.Fprintf(out, "Balance of %s: %s\n",
				wallet.ShortAddress(opts.From.Hex()),
				wallet.FormatAmount(wallet.FromBaseUnits(balance, wallet.TokenDecimals)))
			return nil
		},
	}
}

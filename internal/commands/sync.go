package commands

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/splitme/splitme/internal/reconcile"
	"github.com/splitme/splitme/internal/storage/sqlite"
)

func newSyncCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Apply new contract events to the local database once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := sqlite.New(a.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer store.Close()

			env, err := a.dial(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			record, contracts, err := a.contracts(env)
			if err != nil {
				return err
			}

			r := reconcile.New(env.client, contracts.SplitMe, store, common.HexToAddress(record.SplitMeAddress),
				reconcile.Options{StartBlock: a.cfg.SyncStartBlock}, a.logger)
			res, err := r.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Blocks %d-%d: %d events (%d matched, %d mirrored, %d applied, %d duplicate, %d skipped)\n",
				res.FromBlock, res.ToBlock, res.Events,
				res.Outcomes[reconcile.OutcomeMatched], res.Outcomes[reconcile.OutcomeMirrored],
				res.Outcomes[reconcile.OutcomeApplied], res.Outcomes[reconcile.OutcomeDuplicate],
				res.Outcomes[reconcile.OutcomeSkipped])
			return nil
		},
	}
}

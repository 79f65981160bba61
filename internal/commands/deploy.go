package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/splitme/splitme/internal/deploy"
)

func newDeployCommand(a *app) *cobra.Command {
	var balanceChecker bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy ExpenseToken and SplitMe from Hardhat artifacts",
		Long: `Deploy ExpenseToken and then SplitMe, owned by the PRIVATE_KEY account, and
record the addresses in DEPLOYMENTS_DIR/<network>.json.

With --balance-checker only the BalanceChecker helper is deployed, recorded in
DEPLOYMENTS_DIR/balance-checker-<network>.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := a.cfg

			env, err := a.dial(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			opts, err := a.transactor(ctx, env)
			if err != nil {
				return err
			}
			deployer := deploy.NewDeployer(env.client, opts, a.logger)
			out := cmd.OutOrStdout()

			if balanceChecker {
				art, err := deploy.LoadArtifact(cfg.ArtifactsDir, deploy.BalanceCheckerContract)
				if err != nil {
					return err
				}
				record, err := deployer.DeployBalanceChecker(ctx, env.network.Name, art)
				if err != nil {
					return err
				}
				if err := deploy.WriteBalanceCheckerRecord(cfg.DeploymentsDir, record); err != nil {
					return err
				}
				fmt.Fprintf(out, "BalanceChecker: %s\n", record.BalanceCheckerAddress)
				fmt.Fprintf(out, "Saved %s\n", deploy.BalanceCheckerRecordPath(cfg.DeploymentsDir, record.Network))
				return nil
			}

			token, err := deploy.LoadArtifact(cfg.ArtifactsDir, deploy.ExpenseTokenContract)
			if err != nil {
				return err
			}
			splitMe, err := deploy.LoadArtifact(cfg.ArtifactsDir, deploy.SplitMeContract)
			if err != nil {
				return err
			}

			record, err := deployer.DeployContracts(ctx, env.network.Name, token, splitMe)
			if err != nil {
				return err
			}
			if err := deploy.WriteRecord(cfg.DeploymentsDir, record); err != nil {
				return err
			}

			fmt.Fprintf(out, "ExpenseToken: %s\n", record.ExpenseTokenAddress)
			fmt.Fprintf(out, "SplitMe:      %s\n", record.SplitMeAddress)
			fmt.Fprintf(out, "Saved %s\n", deploy.RecordPath(cfg.DeploymentsDir, record.Network))
			return nil
		},
	}
	cmd.Flags().BoolVar(&balanceChecker, "balance-checker", false, "deploy only the BalanceChecker helper")

	return cmd
}

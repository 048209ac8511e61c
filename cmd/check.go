package cmd

import (
	"fmt"

	"github.com/ory/viper"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/metailurini/listset"
	"github.com/metailurini/listset/internal/stress"
	"github.com/metailurini/listset/internal/workload"
)

var errNotLinearizable = errors.New("history is not linearizable")

func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check many short concurrent histories for linearizability",
		Long: `Check many short concurrent histories for linearizability.

Each round runs a few workers over a handful of keys on a fresh set,
records every call with its invocation and response time, and searches
for a sequential order that explains all results.`,
		PreRunE: bindEnv("rounds", "workers", "ops", "keyspace", "seed"),
		RunE:    runCheck,
	}
	cmd.Flags().Int("rounds", 200, "Number of histories to check (Env: $LISTSET_ROUNDS)")
	cmd.Flags().Int("workers", 4, "Workers per history (Env: $LISTSET_WORKERS)")
	cmd.Flags().Int("ops", 32, "Calls per worker per history (Env: $LISTSET_OPS)")
	cmd.Flags().Int64("keyspace", 4, "Number of distinct keys (Env: $LISTSET_KEYSPACE)")
	cmd.Flags().Int64("seed", 1, "Seed of the first round (Env: $LISTSET_SEED)")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	rounds := viper.GetInt("rounds")
	base := stress.Config{
		Workers:      viper.GetInt("workers"),
		OpsPerWorker: viper.GetInt("ops"),
		KeySpace:     viper.GetInt64("keyspace"),
		Distribution: workload.Uniform,
		Mix:          workload.Mix{AddPercent: 35, RemovePercent: 35},
		Record:       true,
	}
	seed := viper.GetInt64("seed")
	logger := log.WithField("cmd", "check")

	var events int
	for i := 0; i < rounds; i++ {
		cfg := base
		cfg.Seed = seed + int64(i)*int64(cfg.Workers)

		set := listset.New[int64]()
		report, err := stress.Run(cmd.Context(), set, cfg, logger.WithField("round", i))
		if err != nil {
			return err
		}
		if cmd.Context().Err() != nil {
			return cmd.Context().Err()
		}

		res, err := report.Linearizable()
		if err != nil {
			return err
		}
		if !res.OK {
			for _, e := range report.History {
				if e.Key == res.Key {
					logger.WithField("round", i).Error(e.String())
				}
			}
			return errors.Wrapf(errNotLinearizable, "round %d (seed %d), key %d", i, cfg.Seed, res.Key)
		}
		if err := report.Verify(set); err != nil {
			return err
		}
		events += len(report.History)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "checked %d histories, %d events: all linearizable\n", rounds, events)
	return nil
}

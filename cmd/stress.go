package cmd

import (
	"strconv"
	"strings"

	"github.com/ory/viper"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/metailurini/listset/internal/stress"
	"github.com/metailurini/listset/internal/workload"
)

func NewStressCmd() *cobra.Command {
	def := stress.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run a concurrent workload and verify the final state",
		Long: `Run a concurrent workload against a set and verify the final state.

The run stops after --ops calls per worker or after --duration, whichever
comes first. After the run the set is checked against the results of every
successful add and remove.`,
		PreRunE: bindEnv("impl", "workers", "ops", "duration", "keyspace", "dist", "mix",
			"disjoint", "seed", "record", "metrics-addr"),
		RunE: runStress,
	}

	cmd.Flags().String("impl", "lockfree", "Set implementation: lockfree or locked (Env: $LISTSET_IMPL)")
	cmd.Flags().Int("workers", def.Workers, "Number of concurrent workers (Env: $LISTSET_WORKERS)")
	cmd.Flags().Int("ops", def.OpsPerWorker, "Calls per worker, 0 for no limit (Env: $LISTSET_OPS)")
	cmd.Flags().Duration("duration", 0, "Stop after this long, 0 for no limit (Env: $LISTSET_DURATION)")
	cmd.Flags().Int64("keyspace", def.KeySpace, "Number of distinct keys (Env: $LISTSET_KEYSPACE)")
	cmd.Flags().String("dist", def.Distribution.String(), "Key distribution: uniform, ascending or zipf (Env: $LISTSET_DIST)")
	cmd.Flags().String("mix", "25:25", "Add and remove share in percent as ADD:REMOVE (Env: $LISTSET_MIX)")
	cmd.Flags().Bool("disjoint", false, "Give each worker its own key range (Env: $LISTSET_DISJOINT)")
	cmd.Flags().Int64("seed", def.Seed, "Seed for the generated workload (Env: $LISTSET_SEED)")
	cmd.Flags().Bool("record", false, "Record the history and check it for linearizability (Env: $LISTSET_RECORD)")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address during the run (Env: $LISTSET_METRICS_ADDR)")
	return cmd
}

// stressConfig gathers the stress options.
type stressConfig struct {
	Impl        string
	MetricsAddr string
	Run         stress.Config
}

func newStressConfig() (stressConfig, error) {
	dist, err := workload.ParseDistribution(viper.GetString("dist"))
	if err != nil {
		return stressConfig{}, err
	}
	mix, err := parseMix(viper.GetString("mix"))
	if err != nil {
		return stressConfig{}, err
	}
	cfg := stressConfig{
		Impl:        viper.GetString("impl"),
		MetricsAddr: viper.GetString("metrics-addr"),
		Run: stress.Config{
			Workers:      viper.GetInt("workers"),
			OpsPerWorker: viper.GetInt("ops"),
			Duration:     viper.GetDuration("duration"),
			KeySpace:     viper.GetInt64("keyspace"),
			Distribution: dist,
			Mix:          mix,
			Disjoint:     viper.GetBool("disjoint"),
			Seed:         viper.GetInt64("seed"),
			Record:       viper.GetBool("record"),
		},
	}
	return cfg, cfg.Run.Validate()
}

var errInvalidMix = errors.New("invalid mix")

// parseMix reads "ADD:REMOVE" or one of the named mixes.
func parseMix(s string) (workload.Mix, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read-mostly":
		return workload.ReadMostly, nil
	case "balanced":
		return workload.Balanced, nil
	case "write-heavy":
		return workload.WriteHeavy, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return workload.Mix{}, errors.Wrapf(errInvalidMix, "%q is not ADD:REMOVE", s)
	}
	add, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return workload.Mix{}, errors.Wrapf(errInvalidMix, "add share %q", parts[0])
	}
	remove, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return workload.Mix{}, errors.Wrapf(errInvalidMix, "remove share %q", parts[1])
	}
	mix := workload.Mix{AddPercent: add, RemovePercent: remove}
	return mix, mix.Validate()
}

func runStress(cmd *cobra.Command, args []string) error {
	cfg, err := newStressConfig()
	if err != nil {
		return err
	}
	set, err := newIntSet(cfg.Impl)
	if err != nil {
		return err
	}
	logger := log.WithFields(log.Fields{"cmd": "stress", "impl": cfg.Impl})

	if src, ok := set.(statsSource); ok && cfg.MetricsAddr != "" {
		stop, err := serveMetrics(cfg.MetricsAddr, src.Stats, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	report, err := stress.Run(cmd.Context(), set, cfg.Run, logger)
	if err != nil {
		return err
	}
	if err := report.Verify(set); err != nil {
		return err
	}
	logger.Info("final state verified")

	out := cmd.OutOrStdout()
	renderReport(out, cfg.Impl, report)
	if src, ok := set.(statsSource); ok {
		renderStats(out, src.Stats())
	}

	if cfg.Run.Record {
		res, err := report.Linearizable()
		if err != nil {
			return err
		}
		if !res.OK {
			return errors.Errorf("history is not linearizable for key %d", res.Key)
		}
		logger.WithField("events", len(report.History)).Info("history is linearizable")
	}
	return nil
}

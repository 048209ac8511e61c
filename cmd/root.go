package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ory/viper"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/metailurini/listset"
	"github.com/metailurini/listset/internal/refset"
	"github.com/metailurini/listset/internal/stress"
)

// NewRootCmd creates the root of the command tree. It has no action of its own.
func NewRootCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listset",
		Short: "Exercise the lock-free ordered integer set",
		Long: `listset drives the lock-free ordered integer set under concurrent load.

	Run a write-heavy stress test on 16 workers:
	{{.CommandPath}} stress --workers 16 --mix 45:45

	Check short concurrent histories for linearizability:
	{{.CommandPath}} check --rounds 500

Every flag can also be set as LISTSET_<FLAG> in the environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging(viper.GetString("log-level"))
		},
	}
	cmd.SetOut(out)
	cmd.SetGlobalNormalizationFunc(normalizeFlag)

	cmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error (Env: $LISTSET_LOG_LEVEL)")
	if err := viper.BindPFlag("log-level", cmd.PersistentFlags().Lookup("log-level")); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()
	viper.SetEnvPrefix("listset")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	cmd.AddCommand(NewStressCmd(), NewCheckCmd(), NewTraceCmd())
	return cmd
}

// Execute runs the command tree and exits non-zero on error.
func Execute(ctx context.Context) {
	root := NewRootCmd(os.Stdout)
	if err := root.ExecuteContext(ctx); err != nil {
		if ctx.Err() != nil {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bindFunc which conforms to the cobra PreRunE method signature
type bindFunc func(*cobra.Command, []string) error

// bindEnv returns a bindFunc that binds env vars to the named flags.
func bindEnv(flags ...string) bindFunc {
	return func(cmd *cobra.Command, args []string) (err error) {
		for _, flag := range flags {
			if err = viper.BindPFlag(flag, cmd.Flags().Lookup(flag)); err != nil {
				return
			}
		}
		return
	}
}

// normalizeFlag accepts underscores in flag names, so --metrics_addr
// matches --metrics-addr the way LISTSET_METRICS_ADDR does.
func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func configureLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	log.SetOutput(os.Stderr)
	log.SetLevel(lvl)
	return nil
}

var errUnknownImpl = errors.New("unknown implementation")

// statsSource is implemented by sets that expose contention counters.
type statsSource interface {
	Stats() listset.Stats
}

func newIntSet(impl string) (stress.IntSet, error) {
	switch strings.ToLower(impl) {
	case "lockfree", "lock-free":
		return listset.New[int64](), nil
	case "locked", "mutex":
		return refset.New[int64](), nil
	}
	return nil, errors.Wrapf(errUnknownImpl, "%q (want lockfree or locked)", impl)
}

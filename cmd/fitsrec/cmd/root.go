package cmd

import (
	"fmt"
	"os"

	"github.com/jacobsa/timeutil"
	"github.com/kmilos/fitsrec/cfg"
	"github.com/kmilos/fitsrec/internal/logger"
	"github.com/kmilos/fitsrec/internal/metrics"
	"github.com/kmilos/fitsrec/internal/recio"
	"github.com/kmilos/fitsrec/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	bindErr      error
	unmarshalErr error
	runConfig    cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "fitsrec",
	Short: "Drive the buffered FITS record I/O engine from the command line",
	Long: `fitsrec exercises the buffered record I/O engine directly against
files on disk: pool occupancy and counters, raw byte dumps, and
synthetic concurrent load.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if unmarshalErr != nil {
			return unmarshalErr
		}
		return cfg.ValidateConfig(&runConfig)
	},
}

// Execute runs the CLI; errors are printed and the process exits nonzero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a fitsrec.yaml config file")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(benchCmd)
}

func initConfig() {
	runConfig = cfg.GetDefaultConfig()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			unmarshalErr = fmt.Errorf("reading config file: %w", err)
			return
		}
	}

	if err := viper.Unmarshal(&runConfig, viper.DecodeHook(cfg.DecodeHook())); err != nil {
		unmarshalErr = fmt.Errorf("unmarshalling config: %w", err)
		return
	}

	if err := logger.Init(runConfig.Logging); err != nil {
		unmarshalErr = fmt.Errorf("initializing logger: %w", err)
	}
}

// openEngine builds an Engine from the resolved config, wired to a
// Prometheus collector and the real-time clock; shared by every
// subcommand.
func openEngine() (*recio.Engine, error) {
	collector := metrics.NewCollector()
	eng, err := recio.NewEngine(
		runConfig.Engine.NumBuffers,
		int64(runConfig.Engine.RecordLength),
		int64(runConfig.Engine.MinDirectBytes),
		timeutil.RealClock(),
		collector,
	)
	if err != nil {
		return nil, err
	}
	if runConfig.Debug.ExitOnInvariantViolation {
		eng.OnInvariantViolation = func(msg string) {
			logger.Errorf("invariant violation: %s", msg)
			os.Exit(1)
		}
	} else {
		eng.OnInvariantViolation = func(msg string) {
			logger.Errorf("invariant violation: %s", msg)
		}
	}
	eng.LogMutexHold = runConfig.Debug.LogMutex
	return eng, nil
}

// openDriver opens path as a storage driver per the resolved config's
// direct-I/O preference.
func openDriver(path string, create bool) (*storage.FileDriver, error) {
	return storage.OpenFile(path, create, runConfig.Storage.DirectIO)
}

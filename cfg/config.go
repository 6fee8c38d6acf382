package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full configuration surface for the engine and CLI.
type Config struct {
	Engine EngineConfig `yaml:"engine"`

	Storage StorageConfig `yaml:"storage"`

	Debug DebugConfig `yaml:"debug"`

	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig configures the buffer pool (spec.md §2-§3).
type EngineConfig struct {
	// NumBuffers is NBUF: the number of slots in the pool.
	NumBuffers int `yaml:"num-buffers"`

	// RecordLength is BUFLEN: bytes per record.
	RecordLength ByteSize `yaml:"record-length"`

	// MinDirectBytes is MINDIRECT: the direct-I/O bypass threshold.
	MinDirectBytes ByteSize `yaml:"min-direct-bytes"`
}

// StorageConfig configures the storage driver.
type StorageConfig struct {
	// DirectIO opens the file with O_DIRECT where the platform supports
	// it (Linux); every transfer through the driver, cached record
	// loads and flushes included, then goes through that descriptor.
	DirectIO bool `yaml:"direct-io"`
}

// DebugConfig groups exit-on-invariant-violation/log-mutex debug
// toggles.
type DebugConfig struct {
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation"`

	LogMutex bool `yaml:"log-mutex"`
}

type LoggingConfig struct {
	Severity LogSeverity `yaml:"severity"`

	Format LogFormat `yaml:"format"`

	FilePath string `yaml:"file-path"`

	LogRotate LogRotateLoggingConfig `yaml:"log-rotate"`
}

type LogRotateLoggingConfig struct {
	MaxFileSizeMb   int  `yaml:"max-file-size-mb"`
	BackupFileCount int  `yaml:"backup-file-count"`
	Compress        bool `yaml:"compress"`
}

// BindFlags registers the CLI flags and binds them into viper.
func BindFlags(flagSet *pflag.FlagSet) error {
	var err error

	flagSet.IntP("num-buffers", "", DefaultNumBuffers, "Number of record buffers in the pool (NBUF).")
	if err = viper.BindPFlag("engine.num-buffers", flagSet.Lookup("num-buffers")); err != nil {
		return err
	}

	flagSet.Int64P("record-length", "", DefaultRecordLength, "Bytes per record (BUFLEN).")
	if err = viper.BindPFlag("engine.record-length", flagSet.Lookup("record-length")); err != nil {
		return err
	}

	flagSet.Int64P("min-direct-bytes", "", DefaultMinDirectBytes, "Direct-I/O bypass threshold (MINDIRECT).")
	if err = viper.BindPFlag("engine.min-direct-bytes", flagSet.Lookup("min-direct-bytes")); err != nil {
		return err
	}

	flagSet.BoolP("direct-io", "", false, "Open files with O_DIRECT where supported.")
	if err = viper.BindPFlag("storage.direct-io", flagSet.Lookup("direct-io")); err != nil {
		return err
	}

	flagSet.BoolP("debug-invariants", "", false, "Exit the process when an internal pool invariant is violated.")
	if err = viper.BindPFlag("debug.exit-on-invariant-violation", flagSet.Lookup("debug-invariants")); err != nil {
		return err
	}

	flagSet.BoolP("debug-mutex", "", false, "Log the pool mutex hold duration at TRACE on every unlock.")
	if err = viper.BindPFlag("debug.log-mutex", flagSet.Lookup("debug-mutex")); err != nil {
		return err
	}

	flagSet.StringP("log-severity", "", string(InfoLogSeverity), "Minimum log severity: TRACE, DEBUG, INFO, WARNING, ERROR, OFF.")
	if err = viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity")); err != nil {
		return err
	}

	flagSet.StringP("log-format", "", string(TextLogFormat), "Log output format: text or json.")
	if err = viper.BindPFlag("logging.format", flagSet.Lookup("log-format")); err != nil {
		return err
	}

	flagSet.StringP("log-file", "", "", "Path to a log file; empty means stderr.")
	if err = viper.BindPFlag("logging.file-path", flagSet.Lookup("log-file")); err != nil {
		return err
	}

	return nil
}

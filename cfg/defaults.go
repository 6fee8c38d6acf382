package cfg

// Constants named after spec.md §6: BUFLEN = 2880 (standard FITS record),
// NBUF historically 40, MINDIRECT historically a small multiple of BUFLEN.
const (
	DefaultRecordLength   = 2880
	DefaultNumBuffers     = 40
	DefaultMinDirectBytes = 8 * DefaultRecordLength
)

// GetDefaultConfig returns the configuration used before any flags or
// config file have been parsed.
func GetDefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			NumBuffers:     DefaultNumBuffers,
			RecordLength:   ByteSize(DefaultRecordLength),
			MinDirectBytes: ByteSize(DefaultMinDirectBytes),
		},
		Logging: LoggingConfig{
			Severity: InfoLogSeverity,
			Format:   TextLogFormat,
			LogRotate: LogRotateLoggingConfig{
				BackupFileCount: 10,
				Compress:        true,
				MaxFileSizeMb:   512,
			},
		},
	}
}

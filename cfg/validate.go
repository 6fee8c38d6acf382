package cfg

import "fmt"

func isValidLogRotateConfig(c *LogRotateLoggingConfig) error {
	if c.MaxFileSizeMb <= 0 {
		return fmt.Errorf("max-file-size-mb should be at least 1")
	}
	if c.BackupFileCount < 0 {
		return fmt.Errorf("backup-file-count should be 0 (retain all) or positive")
	}
	return nil
}

func isValidEngineConfig(c *EngineConfig) error {
	if c.NumBuffers < 1 {
		return fmt.Errorf("num-buffers must be at least 1, got %d", c.NumBuffers)
	}
	if c.RecordLength < 1 {
		return fmt.Errorf("record-length must be positive, got %d", c.RecordLength)
	}
	if c.MinDirectBytes < c.RecordLength {
		return fmt.Errorf("min-direct-bytes (%d) must be at least record-length (%d)", c.MinDirectBytes, c.RecordLength)
	}
	return nil
}

// ValidateConfig returns a non-nil error if the config is invalid.
func ValidateConfig(c *Config) error {
	if err := isValidEngineConfig(&c.Engine); err != nil {
		return fmt.Errorf("error parsing engine config: %w", err)
	}
	if err := isValidLogRotateConfig(&c.Logging.LogRotate); err != nil {
		return fmt.Errorf("error parsing log-rotate config: %w", err)
	}
	return nil
}

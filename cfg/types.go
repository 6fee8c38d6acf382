// Package cfg holds the configuration surface for the fitsrec engine and
// the cmd/fitsrec CLI: flag binding, validation, and the custom scalar
// types the config decodes into.
package cfg

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ByteSize accepts plain integers ("2880") or suffixed sizes ("10KiB",
// "2880B") for the engine's record-length and min-direct knobs.
type ByteSize int64

func (b *ByteSize) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		return fmt.Errorf("empty byte size")
	}

	mult := int64(1)
	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "KIB"):
		mult = 1024
		s = s[:len(s)-3]
	case strings.HasSuffix(upper, "MIB"):
		mult = 1024 * 1024
		s = s[:len(s)-3]
	case strings.HasSuffix(upper, "B"):
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid byte size %q: %w", string(text), err)
	}

	*b = ByteSize(v * mult)
	return nil
}

func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(b), 10)), nil
}

// LogSeverity is one of TRACE, DEBUG, INFO, WARNING, ERROR, OFF.
type LogSeverity string

const (
	TraceLogSeverity   LogSeverity = "TRACE"
	DebugLogSeverity   LogSeverity = "DEBUG"
	InfoLogSeverity    LogSeverity = "INFO"
	WarningLogSeverity LogSeverity = "WARNING"
	ErrorLogSeverity   LogSeverity = "ERROR"
	OffLogSeverity     LogSeverity = "OFF"
)

var validSeverities = []string{"TRACE", "DEBUG", "INFO", "WARNING", "ERROR", "OFF"}

func (l *LogSeverity) UnmarshalText(text []byte) error {
	level := strings.ToUpper(string(text))
	if !slices.Contains(validSeverities, level) {
		return fmt.Errorf("invalid log severity %q: must be one of %v", string(text), validSeverities)
	}
	*l = LogSeverity(level)
	return nil
}

// LogFormat is either "text" or "json".
type LogFormat string

const (
	TextLogFormat LogFormat = "text"
	JSONLogFormat LogFormat = "json"
)

func (f *LogFormat) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	if v != string(TextLogFormat) && v != string(JSONLogFormat) {
		return fmt.Errorf("invalid log format %q: must be \"text\" or \"json\"", string(text))
	}
	*f = LogFormat(v)
	return nil
}

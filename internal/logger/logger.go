// Package logger provides the leveled, slog-backed logging used
// throughout the engine and CLI. Severity names (TRACE..OFF) follow
// cfg.LogSeverity; TRACE and OFF are synthesized on top of log/slog's
// four built-in levels.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/kmilos/fitsrec/cfg"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Custom levels bracketing slog's built-in range so TRACE sits below
// DEBUG and OFF sits above ERROR.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelOff   = slog.Level(12)
)

type factory struct {
	format string
	mu     sync.Mutex
}

var (
	defaultLoggerFactory = &factory{format: string(cfg.TextLogFormat)}
	defaultLogger        = slog.New(defaultLoggerFactory.createJsonOrTextHandler(os.Stderr, new(slog.LevelVar), ""))
	programLevel         = new(slog.LevelVar)
)

// severityHandler renders the severity as `severity=LEVEL message="..."`
// for text, `{"severity":"LEVEL",...}` for json, with a custom message
// prefix.
type severityHandler struct {
	inner  slog.Handler
	format string
	w      io.Writer
	prefix string
	level  *slog.LevelVar
}

func (f *factory) createJsonOrTextHandler(w io.Writer, level *slog.LevelVar, prefix string) slog.Handler {
	return &severityHandler{format: f.format, w: w, prefix: prefix, level: level}
}

func (h *severityHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *severityHandler) Handle(_ context.Context, r slog.Record) error {
	sev := severityName(r.Level)
	msg := h.prefix + r.Message

	if h.format == string(cfg.JSONLogFormat) {
		payload := struct {
			Timestamp struct {
				Seconds int64 `json:"seconds"`
				Nanos   int64 `json:"nanos"`
			} `json:"timestamp"`
			Severity string `json:"severity"`
			Message  string `json:"message"`
		}{
			Severity: sev,
			Message:  msg,
		}
		payload.Timestamp.Seconds = r.Time.Unix()
		payload.Timestamp.Nanos = int64(r.Time.Nanosecond())

		enc, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(h.w, string(enc))
		return err
	}

	_, err := fmt.Fprintf(h.w, "time=%q severity=%s message=%q\n", r.Time.Format(time.RFC3339Nano), sev, msg)
	return err
}

func (h *severityHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *severityHandler) WithGroup(_ string) slog.Handler      { return h }

func severityName(l slog.Level) string {
	switch {
	case l < LevelDebug:
		return "TRACE"
	case l < LevelInfo:
		return "DEBUG"
	case l < LevelWarn:
		return "INFO"
	case l < LevelError:
		return "WARNING"
	case l < LevelOff:
		return "ERROR"
	default:
		return "OFF"
	}
}

func setLoggingLevel(severity cfg.LogSeverity, lv *slog.LevelVar) {
	switch severity {
	case cfg.TraceLogSeverity:
		lv.Set(LevelTrace)
	case cfg.DebugLogSeverity:
		lv.Set(LevelDebug)
	case cfg.InfoLogSeverity:
		lv.Set(LevelInfo)
	case cfg.WarningLogSeverity:
		lv.Set(LevelWarn)
	case cfg.ErrorLogSeverity:
		lv.Set(LevelError)
	case cfg.OffLogSeverity:
		lv.Set(LevelOff)
	default:
		lv.Set(LevelInfo)
	}
}

// Init configures the package-level logger from the logging config,
// wiring lumberjack for rotation when a file path is set.
func Init(c cfg.LoggingConfig) error {
	var w io.Writer = os.Stderr
	if c.FilePath != "" {
		w = &lumberjack.Logger{
			Filename:   c.FilePath,
			MaxSize:    c.LogRotate.MaxFileSizeMb,
			MaxBackups: c.LogRotate.BackupFileCount,
			Compress:   c.LogRotate.Compress,
		}
	}

	defaultLoggerFactory.mu.Lock()
	defaultLoggerFactory.format = string(c.Format)
	defaultLoggerFactory.mu.Unlock()

	setLoggingLevel(c.Severity, programLevel)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(w, programLevel, ""))
	return nil
}

func Tracef(format string, args ...any) { defaultLogger.Log(context.Background(), LevelTrace, fmt.Sprintf(format, args...)) }
func Debugf(format string, args ...any) { defaultLogger.Debug(fmt.Sprintf(format, args...)) }
func Infof(format string, args ...any)  { defaultLogger.Info(fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...any)  { defaultLogger.Warn(fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { defaultLogger.Error(fmt.Sprintf(format, args...)) }

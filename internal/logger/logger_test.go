package logger

import (
	"bytes"
	"log/slog"
	"regexp"
	"testing"

	"github.com/kmilos/fitsrec/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const (
	textTraceString = `^time="[^"]+" severity=TRACE message="trace msg"`
	textDebugString = `^time="[^"]+" severity=DEBUG message="debug msg"`
	textInfoString  = `^time="[^"]+" severity=INFO message="info msg"`
	textWarnString  = `^time="[^"]+" severity=WARNING message="warn msg"`
	textErrorString = `^time="[^"]+" severity=ERROR message="error msg"`
)

type LoggerTest struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTest))
}

func redirectLogsToBuffer(buf *bytes.Buffer, severity cfg.LogSeverity) {
	lv := new(slog.LevelVar)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(buf, lv, ""))
	setLoggingLevel(severity, lv)
}

func callEachLevel() []func() {
	return []func(){
		func() { Tracef("trace msg") },
		func() { Debugf("debug msg") },
		func() { Infof("info msg") },
		func() { Warnf("warn msg") },
		func() { Errorf("error msg") },
	}
}

func (t *LoggerTest) capture(severity cfg.LogSeverity) []string {
	var buf bytes.Buffer
	redirectLogsToBuffer(&buf, severity)

	var out []string
	for _, f := range callEachLevel() {
		f()
		out = append(out, buf.String())
		buf.Reset()
	}
	return out
}

func (t *LoggerTest) assertMatches(expected []string, got []string) {
	for i := range got {
		if expected[i] == "" {
			assert.Empty(t.T(), got[i])
			continue
		}
		assert.Regexp(t.T(), regexp.MustCompile(expected[i]), got[i])
	}
}

func (t *LoggerTest) TestLevelOff() {
	t.assertMatches([]string{"", "", "", "", ""}, t.capture(cfg.OffLogSeverity))
}

func (t *LoggerTest) TestLevelError() {
	t.assertMatches([]string{"", "", "", "", textErrorString}, t.capture(cfg.ErrorLogSeverity))
}

func (t *LoggerTest) TestLevelWarning() {
	t.assertMatches([]string{"", "", "", textWarnString, textErrorString}, t.capture(cfg.WarningLogSeverity))
}

func (t *LoggerTest) TestLevelInfo() {
	t.assertMatches([]string{"", "", textInfoString, textWarnString, textErrorString}, t.capture(cfg.InfoLogSeverity))
}

func (t *LoggerTest) TestLevelDebug() {
	t.assertMatches([]string{"", textDebugString, textInfoString, textWarnString, textErrorString}, t.capture(cfg.DebugLogSeverity))
}

func (t *LoggerTest) TestLevelTrace() {
	t.assertMatches([]string{textTraceString, textDebugString, textInfoString, textWarnString, textErrorString}, t.capture(cfg.TraceLogSeverity))
}

func (t *LoggerTest) TestSetLoggingLevel() {
	cases := []struct {
		severity cfg.LogSeverity
		want     slog.Level
	}{
		{cfg.TraceLogSeverity, LevelTrace},
		{cfg.DebugLogSeverity, LevelDebug},
		{cfg.InfoLogSeverity, LevelInfo},
		{cfg.WarningLogSeverity, LevelWarn},
		{cfg.ErrorLogSeverity, LevelError},
		{cfg.OffLogSeverity, LevelOff},
	}

	for _, c := range cases {
		lv := new(slog.LevelVar)
		setLoggingLevel(c.severity, lv)
		assert.Equal(t.T(), c.want, lv.Level())
	}
}

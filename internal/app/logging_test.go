package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dshills/markstorm/internal/dispatcher/hook"
	"github.com/dshills/markstorm/internal/plugin/lua"
	"github.com/dshills/markstorm/internal/preview"
)

func newBufferLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(LoggerConfig{Level: level, Output: &buf, Prefix: "markstorm"}), &buf
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"Warn", LogLevelWarn, false},
		{"warning", LogLevelWarn, false},
		{" error ", LogLevelError, false},
		{"loud", LogLevelInfo, true},
		{"", LogLevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLogger_LineFormat(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelDebug)

	logger.Info("applied %s in %dms", "bold", 3)

	line := buf.String()
	if !strings.HasSuffix(line, "[INFO] markstorm: applied bold in 3ms\n") {
		t.Errorf("line = %q", line)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelWarn)

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	out := buf.String()
	for _, absent := range []string{"[DEBUG]", "[INFO]"} {
		if strings.Contains(out, absent) {
			t.Errorf("expected %s to be filtered out, got %q", absent, out)
		}
	}
	for _, present := range []string{"[WARN]", "[ERROR]"} {
		if !strings.Contains(out, present) {
			t.Errorf("expected %s in output, got %q", present, out)
		}
	}
}

func TestLogger_Fields(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	logger.WithField("zeta", 1).WithComponent("lua").WithField("action", "bold").Info("ran")

	if !strings.Contains(buf.String(), " {action=bold, component=lua, zeta=1}") {
		t.Errorf("expected fields in key order, got %q", buf.String())
	}
}

func TestLogger_WithFieldReplaces(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	logger.WithComponent("config").WithComponent("preview").Info("x")

	out := buf.String()
	if strings.Contains(out, "component=config") || !strings.Contains(out, "{component=preview}") {
		t.Errorf("expected replaced component, got %q", out)
	}
}

func TestLogger_WithFieldDoesNotModifyParent(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	_ = logger.WithComponent("lua")
	logger.Info("root")

	if strings.Contains(buf.String(), "component") {
		t.Errorf("parent logger gained a field: %q", buf.String())
	}
}

func TestLogger_DerivedShareLevel(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelError)
	child := logger.WithComponent("dispatcher")

	child.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output at error level, got %q", buf.String())
	}

	logger.SetLevel(LogLevelDebug)
	child.Debug("shown")
	if !strings.Contains(buf.String(), "shown {component=dispatcher}") {
		t.Errorf("child did not follow parent level, got %q", buf.String())
	}
	if child.Level() != LogLevelDebug {
		t.Errorf("child.Level() = %v, want DEBUG", child.Level())
	}
}

func TestLogger_SetOutput(t *testing.T) {
	logger, first := newBufferLogger(LogLevelInfo)
	child := logger.WithComponent("config")

	var second bytes.Buffer
	logger.SetOutput(&second)
	child.Info("moved")

	if first.Len() != 0 {
		t.Errorf("old output written: %q", first.String())
	}
	if !strings.Contains(second.String(), "moved") {
		t.Errorf("new output = %q", second.String())
	}
}

func TestLogger_DisableEnable(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	logger.Disable()
	logger.Error("should not appear")
	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got %q", buf.String())
	}

	logger.Enable()
	logger.Info("should appear")
	if buf.Len() == 0 {
		t.Error("expected output when enabled")
	}
}

func TestNewLogger_DefaultOutput(t *testing.T) {
	logger := NewLogger(LoggerConfig{})
	if logger.sink.output == nil {
		t.Error("expected default output to be set")
	}
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig()

	if cfg.Level != LogLevelInfo {
		t.Errorf("Level = %v, want INFO", cfg.Level)
	}
	if cfg.Output == nil {
		t.Error("expected default output to be set")
	}
	if cfg.Prefix != "markstorm" {
		t.Errorf("Prefix = %q, want markstorm", cfg.Prefix)
	}
}

func TestLogger_SatisfiesComponentLoggers(t *testing.T) {
	var _ hook.Logger = (*Logger)(nil)
	var _ lua.Logger = (*Logger)(nil)
	var _ preview.Logger = (*Logger)(nil)
}

package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Debug("debug %d", 1)
	l.Info("info")
	l.Warn("warn %s", "x")
	l.Error("error")

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "[INFO]") {
		t.Errorf("output contains messages below level: %q", out)
	}
	if !strings.Contains(out, "paramcheck [WARN] warn x") {
		t.Errorf("output missing warning: %q", out)
	}
	if !strings.Contains(out, "[ERROR] error") {
		t.Errorf("output missing error: %q", out)
	}
}

func TestLogger_None(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelNone)
	l.Error("dropped")

	if buf.Len() != 0 {
		t.Errorf("LevelNone wrote %q", buf.String())
	}
	if l.Enabled(LevelError) {
		t.Error("Enabled(LevelError) = true; want false")
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelNone)
	l.SetLevel(LevelDebug)
	l.Debug("now visible")

	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("output = %q; want debug message", buf.String())
	}
	if !l.Enabled(LevelDebug) {
		t.Error("Enabled(LevelDebug) = false; want true")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		err  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"", LevelNone, false},
		{"off", LevelNone, false},
		{"loud", LevelNone, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseLevel(%q) error = %v; want error %v", tt.in, err, tt.err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevel_String(t *testing.T) {
	if LevelDebug.String() != "DEBUG" || Level(99).String() != "" {
		t.Errorf("unexpected level names: %q %q", LevelDebug.String(), Level(99).String())
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)
	run := l.With("run", "r1").With("param", "age")

	run.Info("resolved")
	if !strings.Contains(buf.String(), "[INFO] resolved run=r1 param=age") {
		t.Errorf("output = %q; want fields appended", buf.String())
	}

	l.SetLevel(LevelError)
	if run.Enabled(LevelInfo) {
		t.Error("derived logger ignores parent level")
	}
	buf.Reset()
	run.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("derived logger wrote %q below level", buf.String())
	}
}

func TestDefault_IsSilent(t *testing.T) {
	l := Default()
	if l.Enabled(LevelError) {
		t.Error("Default().Enabled(LevelError) = true; want false")
	}
	if l.Output() != os.Stderr {
		t.Error("Default() does not write to stderr")
	}
}

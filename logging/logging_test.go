package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestWriterLoggerFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %q", buf.String())
	}

	logger.WithFields(Fields{"b": 2, "a": 1}).Warn("reconfigured", Fields{"c": 3})
	line := buf.String()
	if !strings.Contains(line, "[WARN] reconfigured a=1 b=2 c=3") {
		t.Errorf("unexpected line: %q", line)
	}

	buf.Reset()
	logger.Error(errors.New("boom"), "prepare failed")
	if !strings.Contains(buf.String(), "[ERROR] prepare failed: boom") {
		t.Errorf("unexpected error line: %q", buf.String())
	}
}

func TestWithContextPicksUpFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf)

	ctx := ContextWithFields(context.Background(), Fields{"file": "take1.wav"})
	logger.WithContext(ctx).Info("decoding")

	if !strings.Contains(buf.String(), "file=take1.wav") {
		t.Errorf("context fields missing: %q", buf.String())
	}
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf)
	logger.WithFields(Fields{"buffer_size": 4096}).Info("prepared")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "prepared" {
		t.Errorf("msg mismatch: expected prepared, got %v", entry["msg"])
	}
	if entry["buffer_size"] != float64(4096) {
		t.Errorf("buffer_size mismatch: expected 4096, got %v", entry["buffer_size"])
	}
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	if _, ok := GetGlobalLogger().(*NoOpLogger); !ok {
		t.Errorf("expected NoOpLogger after SetGlobalLogger(nil), got %T", GetGlobalLogger())
	}
	// must not panic
	Info("dropped")
}

package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
)

func newTestLogger(level Level) (*Logger, *bytes.Buffer) {
	color.NoColor = true

	var buf bytes.Buffer
	lg := New(&buf, level)
	lg.now = func() time.Time {
		return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	}
	return lg, &buf
}

func TestLoggerFormat(t *testing.T) {
	lg, buf := newTestLogger(InfoLevel)

	lg.Infof("загружено %d треков", 42)

	expected := "2024-03-01 12:30:00 [INFO] загружено 42 треков\n"
	if buf.String() != expected {
		t.Errorf("Ожидалось %q, получено %q", expected, buf.String())
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	lg, buf := newTestLogger(WarnLevel)

	lg.Debugf("debug")
	lg.Infof("info")
	lg.Warnf("warn")
	lg.Errorf("error")

	output := buf.String()
	if strings.Contains(output, "[DEBUG]") || strings.Contains(output, "[INFO]") {
		t.Errorf("Сообщения ниже уровня WARN не должны выводиться: %s", output)
	}
	if !strings.Contains(output, "[WARN] warn") || !strings.Contains(output, "[ERROR] error") {
		t.Errorf("Ожидались сообщения WARN и ERROR: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"loud", InfoLevel, true},
	}

	for _, test := range tests {
		level, err := ParseLevel(test.input)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseLevel(%q) ошибка = %v, ожидалась ошибка: %v", test.input, err, test.wantErr)
		}
		if level != test.expected {
			t.Errorf("ParseLevel(%q) = %v; ожидалось %v", test.input, level, test.expected)
		}
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var lg *Logger
	lg.Infof("не должно паниковать")
}

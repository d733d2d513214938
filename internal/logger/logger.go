// Package logger содержит простой уровневый логгер с цветными метками
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level уровень логирования
type Level int

// Уровни логирования
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = map[Level]string{
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
}

var levelColors = map[Level]*color.Color{
	DebugLevel: color.New(color.FgHiBlack),
	InfoLevel:  color.New(color.FgCyan),
	WarnLevel:  color.New(color.FgYellow),
	ErrorLevel: color.New(color.FgRed, color.Bold),
}

// String возвращает имя уровня
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel разбирает уровень из строки конфигурации
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	}
	return InfoLevel, fmt.Errorf("неизвестный уровень логирования: %q", s)
}

// Logger пишет строки вида "2006-01-02 15:04:05 [INFO] сообщение"
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
	now   func() time.Time
}

// New создает логгер, пишущий в out
func New(out io.Writer, level Level) *Logger {
	return &Logger{
		out:   out,
		level: level,
		now:   time.Now,
	}
}

// Default возвращает логгер уровня info в stderr
func Default() *Logger {
	return New(os.Stderr, InfoLevel)
}

// Discard возвращает логгер, который ничего не пишет
func Discard() *Logger {
	return New(io.Discard, ErrorLevel+1)
}

// SetLevel меняет минимальный уровень
func (lg *Logger) SetLevel(level Level) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	lg.level = level
}

func (lg *Logger) log(level Level, msg string, args ...any) {
	if lg == nil {
		return
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	if level < lg.level {
		return
	}

	ts := lg.now().Format("2006-01-02 15:04:05")
	tag := levelColors[level].Sprintf("[%s]", level)
	fmt.Fprintf(lg.out, "%s %s %s\n", ts, tag, fmt.Sprintf(msg, args...))
}

// Debugf пишет отладочное сообщение
func (lg *Logger) Debugf(msg string, args ...any) { lg.log(DebugLevel, msg, args...) }

// Infof пишет информационное сообщение
func (lg *Logger) Infof(msg string, args ...any) { lg.log(InfoLevel, msg, args...) }

// Warnf пишет предупреждение
func (lg *Logger) Warnf(msg string, args ...any) { lg.log(WarnLevel, msg, args...) }

// Errorf пишет ошибку
func (lg *Logger) Errorf(msg string, args ...any) { lg.log(ErrorLevel, msg, args...) }

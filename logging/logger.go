package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RowanDark/symtab/ratelimit"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var levelStrings = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelStrings[l]; ok {
		return name
	}
	return "INFO"
}

type Options struct {
	Level    Level
	Console  io.Writer
	FilePath string
}

// sink is shared by a logger and every logger derived from it with Named.
type sink struct {
	mu      sync.Mutex
	level   Level
	writer  io.Writer
	console io.Writer
	file    *os.File
}

type Logger struct {
	sink *sink
	name string
}

func ParseLevel(value string) (Level, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return LevelInfo, nil
	}
	level, ok := levelNames[value]
	if !ok {
		return LevelInfo, fmt.Errorf("unknown log level %q", value)
	}
	return level, nil
}

func New(opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{console}
	var logFile *os.File
	if filePath := strings.TrimSpace(opts.FilePath); filePath != "" {
		dir := filepath.Dir(filePath)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
				return nil, fmt.Errorf("creating log directory: %w", err)
			}
		}
		f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		logFile = f
		writers = append(writers, f)
	}

	return &Logger{sink: &sink{
		level:   opts.Level,
		writer:  io.MultiWriter(writers...),
		console: console,
		file:    logFile,
	}}, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{sink: &sink{level: LevelError + 1, writer: io.Discard, console: io.Discard}}
}

// Named returns a logger sharing l's outputs whose lines are tagged with name.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return nil
	}
	if l.name != "" {
		name = l.name + "." + name
	}
	return &Logger{sink: l.sink, name: name}
}

func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file != nil {
		err := l.sink.file.Close()
		l.sink.file = nil
		l.sink.writer = l.sink.console
		return err
	}
	return nil
}

func (l *Logger) ConsoleWriter() io.Writer {
	return l.sink.console
}

func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	l.sink.level = level
	l.sink.mu.Unlock()
}

func (l *Logger) Level() Level {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// Enabled reports whether a line at level would be written. Callers on hot
// paths check it before formatting arguments.
func (l *Logger) Enabled(level Level) bool {
	if l == nil {
		return false
	}
	return level >= l.Level()
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if l == nil {
		return
	}
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()
	if level < s.level {
		return
	}
	timestamp := time.Now().UTC().Format(time.RFC3339)
	message := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}
	var line string
	if l.name != "" {
		line = fmt.Sprintf("%s [%s] %s: %s", timestamp, level, l.name, message)
	} else {
		line = fmt.Sprintf("%s [%s] %s", timestamp, level, message)
	}
	_, _ = s.writer.Write([]byte(line))
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(LevelDebug, format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(LevelInfo, format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(LevelWarn, format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(LevelError, format, args...)
}

type writerAdapter struct {
	logger *Logger
	level  Level
}

func (w writerAdapter) Write(p []byte) (int, error) {
	if len(p) == 0 || w.logger == nil {
		return len(p), nil
	}
	text := strings.ReplaceAll(string(p), "\r", "")
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		w.logger.logf(w.level, "%s", trimmed)
	}
	return len(p), nil
}

func (l *Logger) Writer(level Level) io.Writer {
	return writerAdapter{logger: l, level: level}
}

// Throttled forwards lines to a Logger while a token bucket allows it and
// counts the lines it drops.
type Throttled struct {
	logger     *Logger
	limiter    *ratelimit.Limiter
	suppressed atomic.Uint64
}

// NewThrottled allows at most rate lines per second after an initial burst.
// A non-positive rate disables throttling.
func NewThrottled(logger *Logger, rate float64, burst int) *Throttled {
	return &Throttled{logger: logger, limiter: ratelimit.New(rate, burst)}
}

func (t *Throttled) allow(level Level) bool {
	if t == nil || !t.logger.Enabled(level) {
		return false
	}
	if !t.limiter.Allow() {
		t.suppressed.Add(1)
		return false
	}
	return true
}

func (t *Throttled) Warnf(format string, args ...interface{}) {
	if t.allow(LevelWarn) {
		t.logger.Warnf(format, args...)
	}
}

func (t *Throttled) Errorf(format string, args ...interface{}) {
	if t.allow(LevelError) {
		t.logger.Errorf(format, args...)
	}
}

// Suppressed returns the number of lines dropped so far.
func (t *Throttled) Suppressed() uint64 {
	if t == nil {
		return 0
	}
	return t.suppressed.Load()
}

// Status exposes the state of the underlying token bucket.
func (t *Throttled) Status() ratelimit.Status {
	if t == nil {
		return ratelimit.Status{}
	}
	return t.limiter.Status()
}

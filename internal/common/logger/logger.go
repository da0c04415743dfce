package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/aiagents/collab-hub/internal/common/constants"
)

type Fields map[string]interface{}

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	CRITICAL
)

var levelNames = map[LogLevel]string{
	DEBUG:    "DEBUG",
	INFO:     "INFO",
	WARNING:  "WARNING",
	ERROR:    "ERROR",
	CRITICAL: "CRITICAL",
}

// redactedKeys never reach the output with their value.
var redactedKeys = map[string]struct{}{
	"password":      {},
	"token":         {},
	"session_token": {},
	"secret":        {},
}

// callerDepth skips emit and the Logger or Entry method that called it.
const callerDepth = 2

type Logger struct {
	mu          sync.RWMutex
	level       LogLevel
	out         *log.Logger
	serviceName string
}

var (
	instance *Logger
	once     sync.Once
)

// GetInstance returns a process-wide stderr logger for code that runs before
// configuration is loaded.
func GetInstance() *Logger {
	once.Do(func() {
		instance = &Logger{level: INFO, out: log.New(os.Stderr, "", log.LstdFlags)}
	})
	return instance
}

// New builds a logger writing to stdout. A non-empty logDir adds a rotating
// file <logDir>/<serviceName>.log.
func New(logDir, serviceName, level string) (*Logger, error) {
	l := &Logger{
		level:       parseLevel(level),
		out:         log.New(os.Stdout, "", log.LstdFlags),
		serviceName: serviceName,
	}
	if logDir == "" {
		return l, nil
	}
	if err := l.Initialize(logDir, serviceName, level); err != nil {
		return nil, err
	}
	return l, nil
}

func NewWithWriter(w io.Writer, serviceName, level string) *Logger {
	return &Logger{
		level:       parseLevel(level),
		out:         log.New(w, "", 0),
		serviceName: serviceName,
	}
}

func (l *Logger) Initialize(logDir, serviceName, level string) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	rotating := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, serviceName+".log"),
		MaxSize:    constants.LoggerMaxSize,
		MaxBackups: constants.LoggerMaxBackups,
		MaxAge:     constants.LoggerMaxAge,
		Compress:   true,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = log.New(io.MultiWriter(os.Stdout, rotating), "", log.LstdFlags)
	l.level = parseLevel(level)
	l.serviceName = serviceName
	return nil
}

func (l *Logger) ShouldLog(level LogLevel) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

func (l *Logger) WithFields(ctx context.Context, fields Fields) *Entry {
	return &Entry{logger: l, ctx: ctx, fields: fields}
}

func (l *Logger) Debug(msg string)    { l.emit(DEBUG, nil, nil, msg) }
func (l *Logger) Info(msg string)     { l.emit(INFO, nil, nil, msg) }
func (l *Logger) Warn(msg string)     { l.emit(WARNING, nil, nil, msg) }
func (l *Logger) Error(msg string)    { l.emit(ERROR, nil, nil, msg) }
func (l *Logger) Critical(msg string) { l.emit(CRITICAL, nil, nil, msg) }

func (l *Logger) Debugf(format string, args ...any) { l.emit(DEBUG, nil, nil, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)  { l.emit(INFO, nil, nil, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.emit(WARNING, nil, nil, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.emit(ERROR, nil, nil, fmt.Sprintf(format, args...)) }

func (l *Logger) Criticalf(format string, args ...any) {
	l.emit(CRITICAL, nil, nil, fmt.Sprintf(format, args...))
}

func (l *Logger) Fatalf(format string, args ...any) {
	l.emit(CRITICAL, nil, nil, fmt.Sprintf(format, args...))
	os.Exit(1)
}

// Entry carries request context and structured fields for one log call.
type Entry struct {
	logger *Logger
	ctx    context.Context
	fields Fields
}

// WithFields returns a copy of e with extra merged in; extra wins on conflicts.
func (e *Entry) WithFields(extra Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(extra))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return &Entry{logger: e.logger, ctx: e.ctx, fields: merged}
}

func (e *Entry) Debug(msg string)    { e.logger.emit(DEBUG, e.ctx, e.fields, msg) }
func (e *Entry) Info(msg string)     { e.logger.emit(INFO, e.ctx, e.fields, msg) }
func (e *Entry) Warn(msg string)     { e.logger.emit(WARNING, e.ctx, e.fields, msg) }
func (e *Entry) Error(msg string)    { e.logger.emit(ERROR, e.ctx, e.fields, msg) }
func (e *Entry) Critical(msg string) { e.logger.emit(CRITICAL, e.ctx, e.fields, msg) }

func (e *Entry) Debugf(format string, args ...any) {
	e.logger.emit(DEBUG, e.ctx, e.fields, fmt.Sprintf(format, args...))
}

func (e *Entry) Infof(format string, args ...any) {
	e.logger.emit(INFO, e.ctx, e.fields, fmt.Sprintf(format, args...))
}

func (e *Entry) Warnf(format string, args ...any) {
	e.logger.emit(WARNING, e.ctx, e.fields, fmt.Sprintf(format, args...))
}

func (e *Entry) Errorf(format string, args ...any) {
	e.logger.emit(ERROR, e.ctx, e.fields, fmt.Sprintf(format, args...))
}

func (e *Entry) Criticalf(format string, args ...any) {
	e.logger.emit(CRITICAL, e.ctx, e.fields, fmt.Sprintf(format, args...))
}

// emit writes one line:
//
//	[LEVEL] [service] [trace_id=... key=value ...] file.go:42 message
func (l *Logger) emit(level LogLevel, ctx context.Context, fields Fields, msg string) {
	l.mu.RLock()
	minLevel, service, out := l.level, l.serviceName, l.out
	l.mu.RUnlock()

	if level < minLevel {
		return
	}

	var b strings.Builder
	b.WriteString("[" + levelNames[level] + "]")
	if service != "" {
		b.WriteString(" [" + service + "]")
	}
	if kv := formatFields(ctx, fields); kv != "" {
		b.WriteString(" [" + kv + "]")
	}

	file, line := "unknown", 0
	if _, path, n, ok := runtime.Caller(callerDepth); ok {
		file, line = filepath.Base(path), n
	}
	fmt.Fprintf(&b, " %s:%d %s", file, line, msg)

	_ = out.Output(0, b.String())
}

func formatFields(ctx context.Context, fields Fields) string {
	var parts []string
	if ctx != nil {
		if traceID, ok := ctx.Value(constants.TraceIDKey).(string); ok && traceID != "" {
			parts = append(parts, "trace_id="+traceID)
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		parts = append(parts, k+"="+formatValue(k, fields[k]))
	}
	return strings.Join(parts, " ")
}

func formatValue(key string, v interface{}) string {
	if _, secret := redactedKeys[strings.ToLower(key)]; secret {
		return "[REDACTED]"
	}
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

func parseLevel(value string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "DEBUG":
		return DEBUG
	case "WARNING", "WARN":
		return WARNING
	case "ERROR":
		return ERROR
	case "CRITICAL":
		return CRITICAL
	default:
		return INFO
	}
}

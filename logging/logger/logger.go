package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ncobase/todox/config"
	"github.com/ncobase/todox/ctxutil"

	"github.com/sirupsen/logrus"
)

// VersionKey is the log field carrying the build version.
const VersionKey = "version"

// Logger wraps logrus with context-aware structured logging.
type Logger struct {
	*logrus.Logger
	version string
	logFile *os.File
	logPath string
}

var (
	std  *Logger
	once sync.Once
)

// StdLogger returns the singleton logger instance
func StdLogger() *Logger {
	once.Do(func() {
		std = &Logger{
			Logger: logrus.New(),
		}
		std.SetFormatter(&logrus.JSONFormatter{})
	})
	return std
}

// New initializes the standard logger from configuration and
// returns a cleanup function.
func New(c *config.Logger) (func(), error) {
	return StdLogger().Init(c)
}

// SetVersion sets the version for logging
func (l *Logger) SetVersion(v string) {
	l.version = v
}

// Init initializes the logger with the given configuration
func (l *Logger) Init(c *config.Logger) (func(), error) {
	l.SetLevel(logrus.Level(c.Level))

	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{})
	}

	switch c.Output {
	case "stdout":
		l.SetOutput(os.Stdout)
	case "stderr":
		l.SetOutput(os.Stderr)
	case "file":
		l.logPath = c.OutputFile
		if l.logPath != "" {
			if err := l.setupLogFile(); err != nil {
				return nil, err
			}
			go l.periodicLogRotation()
		}
	}

	return func() {
		if l.logFile != nil {
			_ = l.logFile.Close()
		}
	}, nil
}

func (l *Logger) setupLogFile() error {
	if err := os.MkdirAll(filepath.Dir(l.logPath), 0777); err != nil {
		return err
	}
	return l.rotateLog()
}

func (l *Logger) rotateLog() error {
	if l.logFile != nil {
		if err := l.logFile.Close(); err != nil {
			return err
		}
	}

	logFilePath := fmt.Sprintf("%s.%s.log", strings.TrimSuffix(l.logPath, ".log"), time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0666)
	if err != nil {
		return err
	}

	l.logFile = f
	l.SetOutput(l.logFile)
	return nil
}

func (l *Logger) periodicLogRotation() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := l.rotateLog(); err != nil {
			l.Logger.Errorf("Error rotating log: %v", err)
		}
	}
}

// entryFromContext creates a new log entry with fields from context
func (l *Logger) entryFromContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{}

	if traceID := ctxutil.GetTraceID(ctx); traceID != "" {
		fields[ctxutil.TraceIDKey] = traceID
	}

	if l.version != "" {
		fields[VersionKey] = l.version
	}

	return l.WithFields(fields)
}

// fieldsFromPairs converts alternating key-value arguments to logrus fields.
// A trailing value without a key is stored under "extra".
func fieldsFromPairs(kvs []any) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kvs); i += 2 {
		key, ok := kvs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvs[i])
		}
		fields[key] = kvs[i+1]
	}
	if len(kvs)%2 != 0 {
		fields["extra"] = kvs[len(kvs)-1]
	}
	return fields
}

func (l *Logger) log(ctx context.Context, level logrus.Level, msg string, kvs ...any) {
	l.entryFromContext(ctx).WithFields(fieldsFromPairs(kvs)).Log(level, msg)
}

func (l *Logger) logf(ctx context.Context, level logrus.Level, format string, args ...any) {
	l.entryFromContext(ctx).Logf(level, format, args...)
}

func (l *Logger) Trace(ctx context.Context, msg string, kvs ...any) {
	l.log(ctx, logrus.TraceLevel, msg, kvs...)
}
func (l *Logger) Debug(ctx context.Context, msg string, kvs ...any) {
	l.log(ctx, logrus.DebugLevel, msg, kvs...)
}
func (l *Logger) Info(ctx context.Context, msg string, kvs ...any) {
	l.log(ctx, logrus.InfoLevel, msg, kvs...)
}
func (l *Logger) Warn(ctx context.Context, msg string, kvs ...any) {
	l.log(ctx, logrus.WarnLevel, msg, kvs...)
}
func (l *Logger) Error(ctx context.Context, msg string, kvs ...any) {
	l.log(ctx, logrus.ErrorLevel, msg, kvs...)
}
func (l *Logger) Fatal(ctx context.Context, msg string, kvs ...any) {
	l.log(ctx, logrus.FatalLevel, msg, kvs...)
}

func (l *Logger) Tracef(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.TraceLevel, format, args...)
}
func (l *Logger) Debugf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.DebugLevel, format, args...)
}
func (l *Logger) Infof(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.InfoLevel, format, args...)
}
func (l *Logger) Warnf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.WarnLevel, format, args...)
}
func (l *Logger) Errorf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.ErrorLevel, format, args...)
}
func (l *Logger) Fatalf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.FatalLevel, format, args...)
}

// SetOutput sets the output destination for the logger
func (l *Logger) SetOutput(out io.Writer) {
	l.Logger.SetOutput(out)
}

// Package-level helpers on the standard logger

func SetVersion(v string) { StdLogger().SetVersion(v) }

func EntryWithFields(ctx context.Context, fields logrus.Fields) *logrus.Entry {
	return StdLogger().entryFromContext(ctx).WithFields(fields)
}

func Debug(ctx context.Context, msg string, kvs ...any) { StdLogger().Debug(ctx, msg, kvs...) }
func Info(ctx context.Context, msg string, kvs ...any)  { StdLogger().Info(ctx, msg, kvs...) }
func Warn(ctx context.Context, msg string, kvs ...any)  { StdLogger().Warn(ctx, msg, kvs...) }
func Error(ctx context.Context, msg string, kvs ...any) { StdLogger().Error(ctx, msg, kvs...) }

func Debugf(ctx context.Context, format string, args ...any) {
	StdLogger().Debugf(ctx, format, args...)
}
func Infof(ctx context.Context, format string, args ...any) {
	StdLogger().Infof(ctx, format, args...)
}
func Warnf(ctx context.Context, format string, args ...any) {
	StdLogger().Warnf(ctx, format, args...)
}
func Errorf(ctx context.Context, format string, args ...any) {
	StdLogger().Errorf(ctx, format, args...)
}

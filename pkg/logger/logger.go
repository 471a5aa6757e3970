package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Logger is the keyval logging interface used across the gateway.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

func parseLevel(s string) level {
	switch strings.ToLower(s) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

type stdLogger struct {
	out   *log.Logger
	errw  *log.Logger
	level level
}

// New creates a logger writing to stdout/stderr at the given level.
// Unknown level strings fall back to info.
func New(levelName string) Logger {
	return &stdLogger{
		out:   log.New(os.Stdout, "", log.Ldate|log.Ltime),
		errw:  log.New(os.Stderr, "", log.Ldate|log.Ltime),
		level: parseLevel(levelName),
	}
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() Logger {
	discard := log.New(io.Discard, "", 0)
	return &stdLogger{out: discard, errw: discard, level: levelError + 1}
}

func (l *stdLogger) Debug(msg string, keyvals ...interface{}) {
	if l.level <= levelDebug {
		l.out.Println("DEBUG " + format(msg, keyvals...))
	}
}

func (l *stdLogger) Info(msg string, keyvals ...interface{}) {
	if l.level <= levelInfo {
		l.out.Println("INFO " + format(msg, keyvals...))
	}
}

func (l *stdLogger) Warn(msg string, keyvals ...interface{}) {
	if l.level <= levelWarn {
		l.out.Println("WARN " + format(msg, keyvals...))
	}
}

func (l *stdLogger) Error(msg string, keyvals ...interface{}) {
	if l.level <= levelError {
		l.errw.Println("ERROR " + format(msg, keyvals...))
	}
}

func format(msg string, keyvals ...interface{}) string {
	if len(keyvals) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(keyvals); i += 2 {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprintf("%v", keyvals[i]))
		b.WriteByte('=')
		if i+1 < len(keyvals) {
			b.WriteString(fmt.Sprintf("%v", keyvals[i+1]))
		} else {
			b.WriteString("missing")
		}
	}
	return b.String()
}

// Package esplog writes tagged, leveled log lines to a serial console in the
// same shape as the ESP-IDF logging macros:
//
//	I (1234) main: Setup done
//
// The timestamp is the number of milliseconds since the logger was created.
package esplog

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Level is a log verbosity level. Messages with a level above the logger level
// are dropped.
type Level uint8

const (
	None Level = iota
	Error
	Warn
	Info
	Debug
	Verbose
)

var levelLetters = [...]byte{
	None:    ' ',
	Error:   'E',
	Warn:    'W',
	Info:    'I',
	Debug:   'D',
	Verbose: 'V',
}

func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case Error:
		return "error"
	case Warn:
		return "warn"
	case Info:
		return "info"
	case Debug:
		return "debug"
	case Verbose:
		return "verbose"
	}
	return fmt.Sprintf("Level(%d)", uint8(l))
}

// Logger is a leveled logger with a fixed tag. It is not safe for concurrent
// use, which is fine as everything runs on a single goroutine.
type Logger struct {
	w     io.Writer
	tag   string
	level Level
	start time.Time
	now   func() time.Time
}

// New returns a logger writing to w (usually the serial console) at level
// Info.
func New(w io.Writer, tag string) *Logger {
	return &Logger{
		w:     w,
		tag:   tag,
		level: Info,
		start: time.Now(),
		now:   time.Now,
	}
}

// With returns a copy of the logger with a different tag, sharing the output
// and start time.
func (l *Logger) With(tag string) *Logger {
	c := *l
	c.tag = tag
	return &c
}

// SetLevel changes the maximum level that is printed.
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// Level returns the current level.
func (l *Logger) Level() Level {
	return l.level
}

// SetClock replaces the time source. The start time is reset to the current
// time of the new clock.
func (l *Logger) SetClock(now func() time.Time) {
	l.now = now
	l.start = now()
}

func (l *Logger) Errorf(format string, args ...any) { l.logf(Error, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(Warn, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(Info, format, args...) }
func (l *Logger) Debugf(format string, args ...any) { l.logf(Debug, format, args...) }

func (l *Logger) logf(level Level, format string, args ...any) {
	if l == nil || level == None || level > l.level {
		return
	}
	ms := l.now().Sub(l.start).Milliseconds()
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	fmt.Fprintf(l.w, "%c (%d) %s: %s\n", levelLetters[level], ms, l.tag, msg)
}

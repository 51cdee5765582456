package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields type alias for logrus.Fields to keep call sites free of logrus imports.
type Fields map[string]interface{}

// Options configures a Log.
type Options struct {
	Level      string // debug, info, warn, error
	Format     string // text or json
	File       string // optional log file, rotated by size
	MaxSizeMB  int
	MaxBackups int
}

// Log wraps logrus.Logger.
type Log struct {
	*logrus.Logger
	closer io.Closer
}

// Entry wraps logrus.Entry.
type Entry struct {
	*logrus.Entry
}

// New builds a logger writing to stderr, or to a rotated file when
// opts.File is set.
func New(opts Options) *Log {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(opts.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: opts.File == "",
			FullTimestamp:    true,
		})
	}

	out := &Log{Logger: l}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		l.SetOutput(lj)
		out.closer = lj
	}
	return out
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Log {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Log{Logger: l}
}

// Close releases the log file, if any.
func (l *Log) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Log) WithComponent(component string) *Entry {
	return &Entry{Entry: l.Logger.WithField("component", component)}
}

func (l *Log) WithFields(fields Fields) *Entry {
	return &Entry{Entry: l.Logger.WithFields(logrus.Fields(fields))}
}

func (e *Entry) WithFields(fields Fields) *Entry {
	return &Entry{Entry: e.Entry.WithFields(logrus.Fields(fields))}
}

func (e *Entry) WithError(err error) *Entry {
	return &Entry{Entry: e.Entry.WithError(err)}
}

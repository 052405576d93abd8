package log

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

type Level logging.Level

// The levels that can be passed to SetLevel.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

// Sinks that are not terminals get the same layout without color codes
var plainFormat = logging.MustStringFormatter(
	`[%{time:15:04:05.000}] [%{module}] [%{level}] %{message}`,
)

var (
	leveledBackend logging.LeveledBackend
	currentLevel   = Notice
)

// Logger is implemented by every module logger
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// New returns the logger for a named module.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// SetSink replaces the output sinks. The first sink gets colored output,
// any additional sinks (the preview console) get plain lines.
func SetSink(sinks ...io.Writer) {
	backends := make([]logging.Backend, 0, len(sinks))
	for i, sink := range sinks {
		f := plainFormat
		if i == 0 {
			f = format
		}
		backend := logging.NewLogBackend(sink, "", 0)
		backends = append(backends, logging.NewBackendFormatter(backend, f))
	}

	leveledBackend = logging.MultiLogger(backends...)
	leveledBackend.SetLevel(toBackendLevel(currentLevel), "")
	logging.SetBackend(leveledBackend)
}

// SetLevel sets the verbosity for every module.
func SetLevel(level Level) {
	currentLevel = level
	leveledBackend.SetLevel(toBackendLevel(level), "")
}

// LevelFromVerbosity maps the number of -v flags to a level
func LevelFromVerbosity(count int) Level {
	switch {
	case count >= 2:
		return Debug
	case count == 1:
		return Info
	default:
		return Notice
	}
}

func toBackendLevel(level Level) logging.Level {
	switch level {
	case Debug:
		return logging.DEBUG
	case Info:
		return logging.INFO
	case Warning:
		return logging.WARNING
	case Error:
		return logging.ERROR
	default:
		return logging.NOTICE
	}
}

func init() {
	SetSink(os.Stdout)
	SetLevel(Notice)
}

// Package log provides the command line tool's logging backend, based around
// the go-logging package. The library packages never log.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/op/go-logging.v1"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "NOTICE"

const logFormat = "%{time:15:04:05.000} %{level:.4s} %{module}: %{message}"

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Backend is a log backend.
type Backend struct {
	sync.RWMutex

	backend logging.LeveledBackend
	w       io.WriteCloser
}

// Log is used to log a message as per the logging.Backend interface.
func (b *Backend) Log(level logging.Level, calldepth int, record *logging.Record) error {
	b.RLock()
	defer b.RUnlock()
	return b.backend.Log(level, calldepth, record)
}

// GetLevel returns the logging level for the specified module.
func (b *Backend) GetLevel(module string) logging.Level {
	b.RLock()
	defer b.RUnlock()
	return b.backend.GetLevel(module)
}

// SetLevel sets the logging level for the specified module.
func (b *Backend) SetLevel(level logging.Level, module string) {
	b.RLock()
	defer b.RUnlock()
	b.backend.SetLevel(level, module)
}

// IsEnabledFor returns true if the logger is enabled for the given level.
func (b *Backend) IsEnabledFor(level logging.Level, module string) bool {
	b.RLock()
	defer b.RUnlock()
	return b.backend.IsEnabledFor(level, module)
}

// GetLogger returns a per-module logger that writes to the backend.
func (b *Backend) GetLogger(module string) *logging.Logger {
	l := logging.MustGetLogger(module)
	l.SetBackend(b)
	return l
}

// Close releases the log file, if any.
func (b *Backend) Close() error {
	b.Lock()
	defer b.Unlock()
	return b.w.Close()
}

// New initializes a logging backend. Output goes to file when set, to
// stderr otherwise, and nowhere when disable is true. Standard output is
// left to command results.
func New(file string, level string, disable bool) (*Backend, error) {
	var w io.WriteCloser
	switch {
	case disable:
		w = nopCloser{io.Discard}
	case file == "":
		w = nopCloser{os.Stderr}
	default:
		const fileMode = 0600

		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, fileMode)
		if err != nil {
			return nil, fmt.Errorf("log: failed to create log file: %v", err)
		}
		w = f
	}
	b, err := NewWithWriter(w, level)
	if err != nil {
		w.Close()
		return nil, err
	}
	return b, nil
}

// NewWithWriter initializes a logging backend writing to w.
func NewWithWriter(w io.WriteCloser, level string) (*Backend, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	base := logging.NewLogBackend(w, "", 0)
	formatted := logging.NewBackendFormatter(base, logging.MustStringFormatter(logFormat))
	b := &Backend{backend: logging.AddModuleLevel(formatted), w: w}
	b.backend.SetLevel(lvl, "")
	return b, nil
}

// ParseLevel maps a case-insensitive level name to a go-logging level. The
// empty string selects DefaultLevel.
func ParseLevel(l string) (logging.Level, error) {
	if l == "" {
		l = DefaultLevel
	}
	switch strings.ToUpper(l) {
	case "ERROR":
		return logging.ERROR, nil
	case "WARNING":
		return logging.WARNING, nil
	case "NOTICE":
		return logging.NOTICE, nil
	case "INFO":
		return logging.INFO, nil
	case "DEBUG":
		return logging.DEBUG, nil
	default:
		return logging.CRITICAL, fmt.Errorf("log: invalid level: '%v'", l)
	}
}

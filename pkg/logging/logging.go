// Package logging wires decred/slog into per-subsystem loggers that
// share one backend and one debug level.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/decred/slog"
)

// Backend hands out named subsystem loggers backed by a single writer.
type Backend struct {
	backend *slog.Backend
	level   slog.Level

	mu      sync.Mutex
	loggers map[string]slog.Logger
}

// NewBackend creates a logging backend writing to w. If w is nil the
// backend writes to stderr. debugLevel is one of trace, debug, info,
// warn, error, critical.
func NewBackend(w io.Writer, debugLevel string) (*Backend, error) {
	if w == nil {
		w = os.Stderr
	}
	level, ok := slog.LevelFromString(debugLevel)
	if !ok {
		return nil, fmt.Errorf("unknown debug level %q", debugLevel)
	}
	return &Backend{
		backend: slog.NewBackend(w),
		level:   level,
		loggers: make(map[string]slog.Logger),
	}, nil
}

// Logger returns the logger for the given subsystem tag, creating it
// on first use. The same tag always yields the same logger.
func (b *Backend) Logger(subsystem string) slog.Logger {
	b.mu.Lock()
	defer b.mu.Unlock()

	if log, ok := b.loggers[subsystem]; ok {
		return log
	}
	log := b.backend.Logger(subsystem)
	log.SetLevel(b.level)
	b.loggers[subsystem] = log
	return log
}

// SetLevel changes the level of every logger handed out so far and of
// any logger created afterwards.
func (b *Backend) SetLevel(debugLevel string) error {
	level, ok := slog.LevelFromString(debugLevel)
	if !ok {
		return fmt.Errorf("unknown debug level %q", debugLevel)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.level = level
	for _, log := range b.loggers {
		log.SetLevel(level)
	}
	return nil
}

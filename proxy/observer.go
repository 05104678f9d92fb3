package proxy

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Event describes one completed materialization.
type Event struct {
	Descriptor Descriptor
	HolderID   uuid.UUID
	Duration   time.Duration
	// Err is nil on success.
	Err error
}

// Observer is notified after a holder reaches Ready or Failed.
// Implementations must be safe for concurrent use.
type Observer interface {
	Materialized(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Materialized calls f(e).
func (f ObserverFunc) Materialized(e Event) { f(e) }

type multiObserver []Observer

func (m multiObserver) Materialized(e Event) {
	for _, o := range m {
		o.Materialized(e)
	}
}

// Observers fans an event out to every non-nil observer. It returns nil when
// none are given.
func Observers(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}

// LogObserver logs materializations. Successes go out at debug, failures at error.
type LogObserver struct {
	// Logger defaults to the package logger.
	Logger *slog.Logger
}

// Materialized implements Observer.
func (o LogObserver) Materialized(e Event) {
	l := o.Logger
	if l == nil {
		l = logger()
	}
	attrs := []slog.Attr{
		slog.String("interface", e.Descriptor.String()),
		slog.String("holder", e.HolderID.String()),
		slog.Duration("took", e.Duration),
	}
	if e.Err != nil {
		attrs = append(attrs, slog.Any("err", e.Err))
		l.LogAttrs(context.Background(), slog.LevelError, "lazy target failed", attrs...)
		return
	}
	l.LogAttrs(context.Background(), slog.LevelDebug, "lazy target materialized", attrs...)
}

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger replaces the package logger. A nil logger restores slog.Default().
func SetLogger(l *slog.Logger) { pkgLogger.Store(l) }

func logger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/signalstate/pkg/state"
)

// Logging is a state.Instrumentation that writes flushes and suppressed
// dispatches to a slog logger at debug level.
type Logging struct {
	logger *slog.Logger
}

var _ state.Instrumentation = (*Logging)(nil)

// NewLogging creates the logging instrumentation. A nil logger uses
// slog.Default().
func NewLogging(logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logging{logger: logger.With("component", "signalstate")}
}

// OnDispatch implements state.Instrumentation.
func (l *Logging) OnDispatch(changed bool) {
	if !changed {
		l.logger.Debug("dispatch suppressed by comparer")
	}
}

// OnSchedule implements state.Instrumentation.
func (l *Logging) OnSchedule(bool) {}

// OnProject implements state.Instrumentation.
func (l *Logging) OnProject(bool) {}

// OnFlush implements state.Instrumentation.
func (l *Logging) OnFlush(start, end time.Time, subscribers int) {
	if !l.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.logger.Debug("flush",
		"subscribers", subscribers,
		"duration", end.Sub(start),
	)
}

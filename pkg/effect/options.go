package effect

import "log/slog"

// config holds configuration from Options.
type config struct {
	name    string
	onError func(error)
	logger  *slog.Logger
}

// Option configures an Effect.
type Option interface {
	applyEffect(cfg *config)
}

type optionFunc func(*config)

func (f optionFunc) applyEffect(cfg *config) { f(cfg) }

// Name labels the effect in logs.
func Name(name string) Option {
	return optionFunc(func(cfg *config) {
		cfg.name = name
	})
}

// OnError receives errors returned by runs. It may be called from several
// goroutines at once.
func OnError(fn func(error)) Option {
	return optionFunc(func(cfg *config) {
		cfg.onError = fn
	})
}

// WithLogger sets the logger used when no OnError handler is set.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(cfg *config) {
		cfg.logger = l
	})
}

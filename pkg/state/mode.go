package state

import "log/slog"

// IntegrityMode controls what happens when dev mode finds a stored value
// that was mutated in place.
type IntegrityMode int

const (
	// IntegrityWarn logs the mutation and re-seals the value.
	IntegrityWarn IntegrityMode = iota

	// IntegrityPanic panics with the *integrity.MutationError.
	IntegrityPanic
)

// String returns the config name of the mode.
func (m IntegrityMode) String() string {
	switch m {
	case IntegrityPanic:
		return "panic"
	default:
		return "warn"
	}
}

// EnableProdMode turns off dev-mode integrity fingerprinting and its
// release-build warning. There is no way back.
func EnableProdMode() {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	eng.prodMode = true
}

// IsProdMode reports whether EnableProdMode has been called.
func IsProdMode() bool {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	return eng.prodMode
}

// SetIntegrityMode sets the reaction to in-place mutation in dev mode.
func SetIntegrityMode(m IntegrityMode) {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	eng.integrityMode = m
}

// SetLogger replaces the logger used for advisories. A nil logger restores
// slog.Default().
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = defaultLogger()
	}
	eng.mu.Lock()
	defer eng.mu.Unlock()
	eng.logger = l
}

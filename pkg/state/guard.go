package state

import "github.com/vango-dev/signalstate/pkg/integrity"

// guard holds the dev-mode seal of a stored value and the flush epoch in
// which it was last verified. Reads verify at most once per epoch, so a
// value is fingerprinted once between flushes rather than on every Get.
// Dispatch always verifies.
//
// guard is not synchronized; its owner's lock protects it.
type guard struct {
	seal  integrity.Seal
	epoch uint64
}

// reseal fingerprints v and marks it verified in the current epoch.
func (g *guard) reseal(v any) {
	g.seal = eng.freeze(v)
	g.epoch = eng.epoch.Load()
}

// due reports whether a read should verify the value.
func (g *guard) due() bool {
	return g.seal.Tracked() && g.epoch != eng.epoch.Load()
}

// check verifies v against the seal. A mutation is re-sealed and reported
// through the engine, which panics in IntegrityPanic mode.
func (g *guard) check(v any) {
	if !g.seal.Tracked() {
		return
	}
	g.epoch = eng.epoch.Load()
	if err := g.seal.Verify(v); err != nil {
		g.reseal(v)
		eng.reportMutation(err)
	}
}

package integrity

import (
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Seal is a fingerprint of everything reachable from a value at the time it
// was taken. The zero Seal tracks nothing and always verifies.
type Seal struct {
	sum     uint64
	typ     reflect.Type
	tracked bool
}

// MutationError reports a value that changed after it was sealed.
type MutationError struct {
	Type   string
	Before uint64
	After  uint64
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("integrity: value of type %s was mutated in place (fingerprint %016x -> %016x)",
		e.Type, e.Before, e.After)
}

// Make seals v. Values whose type cannot reach shared memory (no pointers,
// slices, maps or interfaces) are copied on every read and are not tracked.
func Make(v any) Seal {
	if v == nil {
		return Seal{}
	}
	rv := reflect.ValueOf(v)
	if !hasReferences(rv.Type()) {
		return Seal{}
	}
	return Seal{sum: fingerprint(rv), typ: rv.Type(), tracked: true}
}

// Tracked reports whether the seal carries a fingerprint.
func (s Seal) Tracked() bool {
	return s.tracked
}

// Sum returns the raw fingerprint.
func (s Seal) Sum() uint64 {
	return s.sum
}

// Verify recomputes the fingerprint of v and compares it to the seal.
func (s Seal) Verify(v any) error {
	if !s.tracked {
		return nil
	}
	after := fingerprint(reflect.ValueOf(v))
	if after == s.sum {
		return nil
	}
	return &MutationError{Type: s.typ.String(), Before: s.sum, After: after}
}

// referenceKinds caches hasReferences per type.
var referenceKinds sync.Map // map[reflect.Type]bool

// hasReferences reports whether values of t can observe in-place writes made
// through another handle.
func hasReferences(t reflect.Type) bool {
	if cached, ok := referenceKinds.Load(t); ok {
		return cached.(bool)
	}
	// Recursive types reach themselves through a pointer, slice or map,
	// which already answers true before the recursion matters.
	referenceKinds.Store(t, true)
	result := computeReferences(t)
	referenceKinds.Store(t, result)
	return result
}

func computeReferences(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasReferences(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasReferences(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// walker feeds a reflect.Value tree into an xxhash digest.
type walker struct {
	d *xxhash.Digest

	// ancestors holds the pointers currently being walked so cycles
	// terminate without making the hash depend on map iteration order.
	ancestors map[uintptr]struct{}

	buf [8]byte
}

func fingerprint(v reflect.Value) uint64 {
	w := &walker{d: xxhash.New(), ancestors: make(map[uintptr]struct{})}
	w.walk(v)
	return w.d.Sum64()
}

func (w *walker) u64(n uint64) {
	for i := 0; i < 8; i++ {
		w.buf[i] = byte(n >> (8 * i))
	}
	_, _ = w.d.Write(w.buf[:])
}

func (w *walker) str(s string) {
	w.u64(uint64(len(s)))
	_, _ = w.d.WriteString(s)
}

func (w *walker) enter(p uintptr) bool {
	if _, ok := w.ancestors[p]; ok {
		w.u64(uint64(p))
		return false
	}
	w.ancestors[p] = struct{}{}
	return true
}

func (w *walker) leave(p uintptr) {
	delete(w.ancestors, p)
}

func (w *walker) walk(v reflect.Value) {
	w.u64(uint64(v.Kind()))

	switch v.Kind() {
	case reflect.Invalid:
	case reflect.Bool:
		if v.Bool() {
			w.u64(1)
		} else {
			w.u64(0)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		w.u64(uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		w.u64(v.Uint())
	case reflect.Float32, reflect.Float64:
		w.u64(math.Float64bits(v.Float()))
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		w.u64(math.Float64bits(real(c)))
		w.u64(math.Float64bits(imag(c)))
	case reflect.String:
		w.str(v.String())
	case reflect.Pointer:
		if v.IsNil() {
			w.u64(0)
			return
		}
		p := v.Pointer()
		if !w.enter(p) {
			return
		}
		w.walk(v.Elem())
		w.leave(p)
	case reflect.Interface:
		if v.IsNil() {
			w.u64(0)
			return
		}
		w.str(v.Elem().Type().String())
		w.walk(v.Elem())
	case reflect.Slice:
		if v.IsNil() {
			w.u64(0)
			return
		}
		w.u64(uint64(v.Len()))
		if v.Len() == 0 {
			return
		}
		p := v.Pointer()
		if !w.enter(p) {
			return
		}
		for i := 0; i < v.Len(); i++ {
			w.walk(v.Index(i))
		}
		w.leave(p)
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			w.walk(v.Index(i))
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			w.walk(v.Field(i))
		}
	case reflect.Map:
		if v.IsNil() {
			w.u64(0)
			return
		}
		w.u64(uint64(v.Len()))
		p := v.Pointer()
		if !w.enter(p) {
			return
		}
		// Entries are hashed independently and summed so iteration order
		// does not matter.
		var total uint64
		iter := v.MapRange()
		for iter.Next() {
			entry := &walker{d: xxhash.New(), ancestors: w.ancestors}
			entry.walk(iter.Key())
			entry.walk(iter.Value())
			total += entry.d.Sum64()
		}
		w.u64(total)
		w.leave(p)
	default:
		// Chan, Func, UnsafePointer: identity only.
		w.u64(uint64(v.Pointer()))
	}
}

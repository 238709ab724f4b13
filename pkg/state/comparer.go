package state

import (
	"reflect"
)

// Comparer is an equality predicate used to decide whether a transition or
// a recomputation counts as a change.
//
// Comparers are identified by pointer: two comparers built from the same
// function are distinct. Views built with the same *Comparer share one
// memoization strategy.
type Comparer[T any] struct {
	equal func(a, b T) bool

	// erased compares type-erased values. It captures equal, never the
	// Comparer itself, so the registry does not keep comparers alive.
	erased func(a, b any) bool
}

// NewComparer wraps equal as a Comparer.
func NewComparer[T any](equal func(a, b T) bool) *Comparer[T] {
	return &Comparer[T]{
		equal:  equal,
		erased: eraseEqual(equal),
	}
}

// Equal reports whether a and b are equal. A nil Comparer uses ReferenceEqual.
func (c *Comparer[T]) Equal(a, b T) bool {
	if c == nil {
		return ReferenceEqual(a, b)
	}
	return c.equal(a, b)
}

// defaultComparer backs every view built without an explicit comparer.
var defaultComparer = NewComparer[any](ReferenceEqual)

// ReferenceEqual is the default comparer.
//
// Comparable values use ==. Slices are equal when they share the same
// backing array and length, maps and funcs when they are the same object.
// Other non-comparable values (structs or arrays holding slices or maps)
// fall back to reflect.DeepEqual.
func ReferenceEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	switch ta.Kind() {
	case reflect.Slice:
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map, reflect.Func:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}

	if ta.Comparable() {
		return comparableEqual(a, b)
	}
	return reflect.DeepEqual(a, b)
}

// comparableEqual uses == and falls back to DeepEqual when a comparable
// static type holds a non-comparable dynamic value (an interface field
// containing a slice, for example).
func comparableEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = reflect.DeepEqual(a, b)
		}
	}()
	return a == b
}

// eraseEqual adapts a typed predicate to type-erased values. Values that are
// not both T are compared with ReferenceEqual.
func eraseEqual[T any](equal func(a, b T) bool) func(a, b any) bool {
	return func(a, b any) bool {
		ta, okA := as[T](a)
		tb, okB := as[T](b)
		if okA && okB {
			return equal(ta, tb)
		}
		return ReferenceEqual(a, b)
	}
}

// as converts x to T, treating a nil interface as the zero value of any
// nilable T.
func as[T any](x any) (T, bool) {
	if x == nil {
		var zero T
		return zero, nilable[T]()
	}
	v, ok := x.(T)
	return v, ok
}

// must is as without the ok result.
func must[T any](x any) T {
	v, _ := as[T](x)
	return v
}

func nilable[T any]() bool {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice,
		reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

// referenceEqual is ReferenceEqual for a static type.
func referenceEqual[T any](a, b T) bool {
	return ReferenceEqual(a, b)
}

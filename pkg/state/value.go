package state

import "reflect"

// Change is the message type of a Value cell: either a literal next value
// or a transform of the last value.
type Change[T any] struct {
	next      T
	transform func(T) T
}

// Set is a Change replacing the value with next.
func Set[T any](next T) Change[T] {
	return Change[T]{next: next}
}

// With is a Change replacing the value with transform(last).
func With[T any](transform func(last T) T) Change[T] {
	return Change[T]{transform: transform}
}

// Value is a cell whose reducer replaces the value directly.
type Value[T any] = Derived[T, Change[T]]

func replace[T any](last T, c Change[T]) T {
	if c.transform != nil {
		return c.transform(last)
	}
	return c.next
}

// NewValue creates a Value cell. Functions cannot be stored this way; use
// NewDerived for function-typed state.
//
//	count := state.NewValue(0)
//	state.UpdateWith(count, func(n int) int { return n + 1 })
func NewValue[T any](initial T, opts ...Option[T]) *Value[T] {
	if reflect.TypeFor[T]().Kind() == reflect.Func || reflect.ValueOf(initial).Kind() == reflect.Func {
		panic("state: functions cannot be used as values; use NewDerived for function-typed state")
	}
	return NewDerived(replace[T], initial, opts...)
}

// Update replaces the value of v with next.
func Update[T any](v *Value[T], next T) {
	v.Dispatch(Set(next))
}

// UpdateWith replaces the value of v with transform(last).
func UpdateWith[T any](v *Value[T], transform func(last T) T) {
	v.Dispatch(With(transform))
}

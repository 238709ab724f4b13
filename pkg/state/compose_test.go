package state_test

import (
	"errors"
	"testing"

	"github.com/vango-dev/signalstate/pkg/state"
	"github.com/vango-dev/signalstate/pkg/state/statetest"
)

func sumArgs(args ...any) any {
	total := 0
	for _, a := range args {
		total += a.(int)
	}
	return total
}

func TestComposePassThrough(t *testing.T) {
	sched := statetest.Setup(t)

	src := state.NewValue(4)
	v, err := state.Compose(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state.Update(src, 5)
	sched.Flush()
	if v.Get() != 5 {
		t.Errorf("expected 5, got %v", v.Get())
	}
}

func TestComposeDisambiguation(t *testing.T) {
	statetest.Setup(t)

	a := state.NewValue(1)
	b := state.NewValue(2)
	c := state.NewValue(3)
	never := state.NewComparer(func(x, y any) bool { return false })

	tests := []struct {
		name string
		args []any
		want int
	}{
		{"one input, no comparer", []any{a, sumArgs}, 1},
		{"trailing view shifts projector", []any{a, b, sumArgs}, 3},
		{"three inputs shifted", []any{a, b, c, sumArgs}, 6},
		{"explicit nil comparer", []any{a, b, sumArgs, nil}, 3},
		{"explicit comparer", []any{a, b, c, sumArgs, never}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := state.Compose(tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := v.Get(); got != tt.want {
				t.Errorf("expected %d, got %v", tt.want, got)
			}
		})
	}
}

func TestComposeZeroInputs(t *testing.T) {
	statetest.Setup(t)

	calls := 0
	v, err := state.Compose(func(args ...any) any {
		calls++
		return len(args)
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v.Get() != 0 {
		t.Errorf("expected projector to receive no arguments, got %v", v.Get())
	}
	_ = v.Get()
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestComposeErrors(t *testing.T) {
	statetest.Setup(t)

	a := state.NewValue(1)

	tests := []struct {
		name string
		args []any
		want error
	}{
		{"no args", nil, state.ErrNoProjector},
		{"single non-view", []any{42}, state.ErrNotAView},
		{"no projector", []any{a, a}, state.ErrNoProjector},
		{"non-view input", []any{a, "x", sumArgs}, state.ErrNotAView},
		{"bad comparer", []any{a, sumArgs, "cmp"}, state.ErrNotAComparer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := state.Compose(tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestComposeMemoizesLikeTypedViews(t *testing.T) {
	sched := statetest.Setup(t)

	a := state.NewValue(1)
	b := state.NewValue(1)
	calls := 0
	v, err := state.Compose(a, b, func(args ...any) any {
		calls++
		return args[0].(int) * args[1].(int)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = v.Get()
	state.Update(b, 1)
	sched.Flush()
	_ = v.Get()
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}

	state.Update(b, 7)
	sched.Flush()
	if v.Get() != 7 {
		t.Errorf("expected 7, got %v", v.Get())
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

package integrity

import (
	"errors"
	"runtime/debug"
	"testing"
)

type node struct {
	name string
	next *node
}

type settings struct {
	Tags  []string
	Attrs map[string]int
	inner *node
}

func TestScalarsAreNotTracked(t *testing.T) {
	for _, v := range []any{1, "x", 3.5, true, struct{ A, B int }{1, 2}, nil} {
		if Make(v).Tracked() {
			t.Errorf("expected %T not to be tracked", v)
		}
	}
}

func TestSliceMutationDetected(t *testing.T) {
	items := []string{"a", "b"}
	s := Make(items)

	if err := s.Verify(items); err != nil {
		t.Fatalf("unexpected error before mutation: %v", err)
	}

	items[1] = "z"
	err := s.Verify(items)

	var mutation *MutationError
	if !errors.As(err, &mutation) {
		t.Fatalf("expected *MutationError, got %v", err)
	}
	if mutation.Type != "[]string" {
		t.Errorf("expected type []string, got %q", mutation.Type)
	}
}

func TestNestedUnexportedMutationDetected(t *testing.T) {
	v := &settings{
		Tags:  []string{"x"},
		Attrs: map[string]int{"a": 1, "b": 2, "c": 3},
		inner: &node{name: "leaf"},
	}
	s := Make(v)

	v.inner.name = "changed"
	if s.Verify(v) == nil {
		t.Error("expected mutation of unexported nested field to be detected")
	}
}

func TestMapOrderIndependent(t *testing.T) {
	m := map[string]int{}
	for i, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		m[k] = i
	}
	s := Make(m)

	for i := 0; i < 20; i++ {
		if err := s.Verify(m); err != nil {
			t.Fatalf("iteration %d: unexpected error %v", i, err)
		}
	}

	m["a"] = 100
	if s.Verify(m) == nil {
		t.Error("expected map write to be detected")
	}
}

func TestCycleTerminates(t *testing.T) {
	a := &node{name: "a"}
	b := &node{name: "b", next: a}
	a.next = b

	s := Make(a)
	if !s.Tracked() {
		t.Fatal("expected pointer to be tracked")
	}
	if err := s.Verify(a); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	b.name = "c"
	if s.Verify(a) == nil {
		t.Error("expected mutation inside cycle to be detected")
	}
}

func TestStrippedSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings []debug.BuildSetting
		want     bool
	}{
		{"empty", nil, false},
		{"ldflags s", []debug.BuildSetting{{Key: "-ldflags", Value: "-s -X main.version=1"}}, true},
		{"ldflags w", []debug.BuildSetting{{Key: "-ldflags", Value: "-w"}}, true},
		{"ldflags other", []debug.BuildSetting{{Key: "-ldflags", Value: "-X main.s=1"}}, false},
		{"trimpath", []debug.BuildSetting{{Key: "-trimpath", Value: "true"}}, true},
		{"trimpath false", []debug.BuildSetting{{Key: "-trimpath", Value: "false"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strippedSettings(tt.settings); got != tt.want {
				t.Errorf("strippedSettings() = %v, want %v", got, tt.want)
			}
		})
	}
}

package state_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/signalstate/pkg/integrity"
	"github.com/vango-dev/signalstate/pkg/state"
	"github.com/vango-dev/signalstate/pkg/state/statetest"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	state.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	return &buf
}

// pulse flushes an update of an unrelated cell, starting a new epoch.
func pulse(t *testing.T, sched *statetest.ManualScheduler) {
	t.Helper()
	state.UpdateWith(state.NewValue(0), func(n int) int { return n + 1 })
	if sched.Flush() == 0 {
		t.Fatal("expected a flush")
	}
}

func TestMutationInPlaceWarns(t *testing.T) {
	sched := statetest.Setup(t)
	logs := captureLogs(t)

	items := state.NewValue([]int{1, 2, 3})
	items.Get()[0] = 99
	pulse(t, sched)
	_ = items.Get()

	if !strings.Contains(logs.String(), "mutated in place") {
		t.Fatalf("expected a mutation warning, got %q", logs.String())
	}

	// The value is re-sealed after the report.
	logs.Reset()
	_ = items.Get()
	pulse(t, sched)
	_ = items.Get()
	if logs.Len() != 0 {
		t.Errorf("expected a single report, got %q", logs.String())
	}
}

func TestReadsVerifyOncePerFlush(t *testing.T) {
	sched := statetest.Setup(t)
	logs := captureLogs(t)

	items := state.NewValue([]int{1, 2, 3})
	items.Get()[0] = 99
	_ = items.Get()
	_ = items.Get()

	if logs.Len() != 0 {
		t.Fatalf("expected reads within one epoch to skip verification, got %q", logs.String())
	}

	pulse(t, sched)
	_ = items.Get()
	if strings.Count(logs.String(), "mutated in place") != 1 {
		t.Errorf("expected one report after the flush, got %q", logs.String())
	}
}

func TestMutatedProjectorResultWarns(t *testing.T) {
	sched := statetest.Setup(t)
	logs := captureLogs(t)

	src := state.NewValue(2)
	pair := state.View1(src, func(n int) map[string]int {
		return map[string]int{"n": n}
	})

	pair.Get()["n"] = 7
	pulse(t, sched)
	_ = pair.Get()

	if !strings.Contains(logs.String(), "mutated in place") {
		t.Errorf("expected a mutation warning, got %q", logs.String())
	}
}

func TestMutationInPlacePanics(t *testing.T) {
	sched := statetest.Setup(t)
	state.SetIntegrityMode(state.IntegrityPanic)

	type profile struct {
		Tags []string
	}
	p := state.NewValue(&profile{Tags: []string{"a"}})
	p.Get().Tags[0] = "b"
	pulse(t, sched)

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok {
			t.Fatalf("expected an error panic, got %v", r)
		}
		var me *integrity.MutationError
		if !errors.As(err, &me) {
			t.Errorf("expected *integrity.MutationError, got %T", err)
		}
	}()
	_ = p.Get()
}

func TestMutationBeforeDispatchIsReported(t *testing.T) {
	statetest.Setup(t)
	state.SetIntegrityMode(state.IntegrityPanic)

	list := state.NewValue([]string{"x"})
	list.Get()[0] = "y"

	defer func() {
		if recover() == nil {
			t.Error("expected dispatch to report the mutation")
		}
	}()
	state.Update(list, []string{"z"})
}

func TestProdModeSkipsFingerprinting(t *testing.T) {
	sched := statetest.Setup(t)
	logs := captureLogs(t)

	if state.IsProdMode() {
		t.Fatal("expected dev mode by default")
	}
	state.EnableProdMode()
	if !state.IsProdMode() {
		t.Fatal("expected prod mode after EnableProdMode")
	}

	items := state.NewValue([]int{1})
	items.Get()[0] = 2
	pulse(t, sched)
	_ = items.Get()

	if logs.Len() != 0 {
		t.Errorf("expected no reports in prod mode, got %q", logs.String())
	}
}

func TestIntegrityModeString(t *testing.T) {
	tests := []struct {
		mode state.IntegrityMode
		want string
	}{
		{state.IntegrityWarn, "warn"},
		{state.IntegrityPanic, "panic"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("IntegrityMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

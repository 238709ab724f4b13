package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/signalstate/internal/errors"
	"github.com/vango-dev/signalstate/pkg/integrity"
	"github.com/vango-dev/signalstate/pkg/state"
	"github.com/vango-dev/signalstate/pkg/stream"
)

// scenario is a scripted walk through the graph.
type scenario struct {
	description string
	run         func(ctx context.Context, out io.Writer) error
}

var scenarios = map[string]scenario{
	"counter": {
		description: "three increments collapse into one flush",
		run:         runCounter,
	},
	"diamond": {
		description: "a view reached through two paths recomputes once",
		run:         runDiamond,
	},
	"mutation": {
		description: "dev mode catches a slice mutated in place",
		run:         runMutation,
	},
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func demoCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "demo [scenario]",
		Short: "Run a scripted scenario",
		Long: `Run a scripted scenario against the state graph and print what
subscribers observed.

Scenarios:
  counter    three increments collapse into one flush
  diamond    a view reached through two paths recomputes once
  mutation   dev mode catches a slice mutated in place

Examples:
  signalstate demo
  signalstate demo diamond
  signalstate demo mutation --config signalstate.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "counter"
			if len(args) == 1 {
				name = args[0]
			}
			return runDemo(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), name, timeout)
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 5*time.Second, "Maximum time to wait for a flush")

	return cmd
}

func runDemo(ctx context.Context, out, logOut io.Writer, name string, timeout time.Duration) error {
	sc, ok := scenarios[name]
	if !ok {
		return errors.New("E200").
			WithDetail(fmt.Sprintf("%q is not a scenario.", name)).
			WithSuggestion("Choose one of: " + strings.Join(scenarioNames(), ", ")).
			WithExample("signalstate demo diamond")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	state.ResetDefaults()
	defer state.ResetDefaults()
	cfg.Apply(newLogger(cfg, logOut))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	info(out, "%s: %s", name, sc.description)
	if err := sc.run(ctx, out); err != nil {
		return err
	}
	success(out, "%s finished", name)
	return nil
}

// flushWaiter is closed by the first pulse after it was created.
type flushWaiter struct {
	done chan struct{}
	sub  *stream.Subscription
}

func nextFlush() *flushWaiter {
	w := &flushWaiter{done: make(chan struct{})}
	var seen atomic.Int32
	w.sub = state.Signal().Subscribe(func(state.Pulse) {
		// The first delivery is the current value.
		if seen.Add(1) == 2 {
			close(w.done)
		}
	})
	return w
}

func (w *flushWaiter) wait(ctx context.Context) error {
	defer w.sub.Unsubscribe()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for flush: %w", ctx.Err())
	}
}

func runCounter(ctx context.Context, out io.Writer) error {
	count := state.NewValue(0)
	doubled := state.View1(count, func(n int) int { return n * 2 })

	sub := doubled.Subscribe(func(n int) {
		info(out, "doubled = %d", n)
	})
	defer sub.Unsubscribe()

	flushed := nextFlush()
	for i := 0; i < 3; i++ {
		state.UpdateWith(count, func(n int) int { return n + 1 })
	}
	if err := flushed.wait(ctx); err != nil {
		return err
	}

	info(out, "count = %d after 3 updates", count.Get())
	return nil
}

func runDiamond(ctx context.Context, out io.Writer) error {
	var runs atomic.Int32

	a := state.NewValue(1)
	b := state.View1(a, func(x int) int {
		runs.Add(1)
		return x * 2
	})
	d := state.View1(a, func(x int) int { return x + 100 })
	e := state.View2(b, d, func(x, y int) int { return x + y })

	subs := []*stream.Subscription{
		b.Subscribe(func(int) {}),
		d.Subscribe(func(int) {}),
		e.Subscribe(func(n int) { info(out, "e = %d", n) }),
	}
	defer func() {
		for _, s := range subs {
			s.Unsubscribe()
		}
	}()

	runs.Store(0)
	flushed := nextFlush()
	state.Update(a, 2)
	if err := flushed.wait(ctx); err != nil {
		return err
	}

	info(out, "b projected %d time(s) for one update", runs.Load())
	return nil
}

func runMutation(_ context.Context, out io.Writer) (err error) {
	if state.IsProdMode() {
		warn(out, "prod mode is enabled; in-place mutations go unnoticed")
	}

	items := state.NewValue([]string{"a", "b", "c"})
	held := items.Get()
	held[0] = "z"

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var mutation *integrity.MutationError
		if e, ok := r.(error); ok && stderrors.As(e, &mutation) {
			err = errors.New("E120").Wrap(mutation)
			return
		}
		panic(r)
	}()

	// The next dispatch verifies the stored value before reducing it.
	state.UpdateWith(items, func(s []string) []string {
		return append(slices.Clone(s), "d")
	})
	info(out, "items = %v", items.Get())
	return nil
}

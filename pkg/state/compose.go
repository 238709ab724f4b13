package state

import "errors"

var (
	// ErrNotAView is returned by Compose when an input position holds
	// something other than a view or cell.
	ErrNotAView = errors.New("state: compose input is not a view")

	// ErrNoProjector is returned by Compose when neither of the last two
	// arguments is a projector.
	ErrNoProjector = errors.New("state: compose requires a projector of type func(...any) any")

	// ErrNotAComparer is returned by Compose when the comparer position holds
	// something other than a *Comparer[any] or nil.
	ErrNotAComparer = errors.New("state: compose comparer must be *Comparer[any]")
)

// compose builds a memoized view over inputs. The comparer, when set, picks
// the memoization strategy through the registry and gates emission;
// otherwise the shared default comparer is used.
func compose[R any](inputs []Source, project func(args []any) R, opts []Option[R]) *View[R] {
	o := buildOptions(opts)

	factory := factoryFor(defaultComparer)
	var emit func(a, b R) bool
	if o.comparer != nil {
		factory = factoryFor(o.comparer)
		emit = o.comparer.equal
	}

	selectors := make([]func() any, len(inputs))
	for i, in := range inputs {
		selectors[i] = in.anySelector()
	}

	selector := factory.create(selectors, func(args []any) any {
		return project(args)
	})

	return newView(
		func() R { return must[R](selector()) },
		func(args ...any) R { return project(args) },
		emit,
	)
}

// ViewN composes any number of inputs through a projector over their
// type-erased values, in input order.
func ViewN[R any](inputs []Source, project func(args []any) R, opts ...Option[R]) *View[R] {
	in := make([]Source, len(inputs))
	copy(in, inputs)
	return compose(in, project, opts)
}

// Compose is the variadic entry point. A single argument yields a
// pass-through view. Otherwise the second-to-last argument is the projector
// and the last the comparer, unless the second-to-last is not a
// func(...any) any: then it is one more input, the last argument is the
// projector and the default comparer applies.
//
//	sum, err := state.Compose(a, b, func(args ...any) any {
//	    return args[0].(int) + args[1].(int)
//	})
func Compose(args ...any) (*View[any], error) {
	switch len(args) {
	case 0:
		return nil, ErrNoProjector
	case 1:
		src, ok := args[0].(Source)
		if !ok {
			return nil, ErrNotAView
		}
		return passThroughAny(src), nil
	}

	n := len(args)
	inputs := args[:n-2]
	projector, ok := args[n-2].(func(...any) any)

	var comparer *Comparer[any]
	if !ok {
		inputs = args[:n-1]
		projector, ok = args[n-1].(func(...any) any)
		if !ok {
			return nil, ErrNoProjector
		}
	} else if args[n-1] != nil {
		comparer, ok = args[n-1].(*Comparer[any])
		if !ok {
			return nil, ErrNotAComparer
		}
	}

	sources := make([]Source, len(inputs))
	for i, in := range inputs {
		src, ok := in.(Source)
		if !ok {
			return nil, ErrNotAView
		}
		sources[i] = src
	}

	var opts []Option[any]
	if comparer != nil {
		opts = append(opts, WithComparer(comparer))
	}
	return compose(sources, func(args []any) any { return projector(args...) }, opts), nil
}

func passThroughAny(src Source) *View[any] {
	return newView(src.anySelector(), src.anyProjector(), nil)
}

// View1 composes one input.
func View1[A, R any](a Reader[A], project func(A) R, opts ...Option[R]) *View[R] {
	return compose([]Source{a}, func(args []any) R {
		return project(must[A](args[0]))
	}, opts)
}

// View2 composes two inputs.
func View2[A, B, R any](a Reader[A], b Reader[B], project func(A, B) R, opts ...Option[R]) *View[R] {
	return compose([]Source{a, b}, func(args []any) R {
		return project(must[A](args[0]), must[B](args[1]))
	}, opts)
}

// View3 composes three inputs.
func View3[A, B, C, R any](a Reader[A], b Reader[B], c Reader[C], project func(A, B, C) R, opts ...Option[R]) *View[R] {
	return compose([]Source{a, b, c}, func(args []any) R {
		return project(must[A](args[0]), must[B](args[1]), must[C](args[2]))
	}, opts)
}

// View4 composes four inputs.
func View4[A, B, C, D, R any](
	a Reader[A], b Reader[B], c Reader[C], d Reader[D],
	project func(A, B, C, D) R, opts ...Option[R],
) *View[R] {
	return compose([]Source{a, b, c, d}, func(args []any) R {
		return project(must[A](args[0]), must[B](args[1]), must[C](args[2]), must[D](args[3]))
	}, opts)
}

// View5 composes five inputs.
func View5[A, B, C, D, E, R any](
	a Reader[A], b Reader[B], c Reader[C], d Reader[D], e Reader[E],
	project func(A, B, C, D, E) R, opts ...Option[R],
) *View[R] {
	return compose([]Source{a, b, c, d, e}, func(args []any) R {
		return project(must[A](args[0]), must[B](args[1]), must[C](args[2]), must[D](args[3]),
			must[E](args[4]))
	}, opts)
}

// View6 composes six inputs.
func View6[A, B, C, D, E, F, R any](
	a Reader[A], b Reader[B], c Reader[C], d Reader[D], e Reader[E], f Reader[F],
	project func(A, B, C, D, E, F) R, opts ...Option[R],
) *View[R] {
	return compose([]Source{a, b, c, d, e, f}, func(args []any) R {
		return project(must[A](args[0]), must[B](args[1]), must[C](args[2]), must[D](args[3]),
			must[E](args[4]), must[F](args[5]))
	}, opts)
}

// View7 composes seven inputs.
func View7[A, B, C, D, E, F, G, R any](
	a Reader[A], b Reader[B], c Reader[C], d Reader[D], e Reader[E], f Reader[F], g Reader[G],
	project func(A, B, C, D, E, F, G) R, opts ...Option[R],
) *View[R] {
	return compose([]Source{a, b, c, d, e, f, g}, func(args []any) R {
		return project(must[A](args[0]), must[B](args[1]), must[C](args[2]), must[D](args[3]),
			must[E](args[4]), must[F](args[5]), must[G](args[6]))
	}, opts)
}

// View8 composes eight inputs.
func View8[A, B, C, D, E, F, G, H, R any](
	a Reader[A], b Reader[B], c Reader[C], d Reader[D], e Reader[E], f Reader[F], g Reader[G], h Reader[H],
	project func(A, B, C, D, E, F, G, H) R, opts ...Option[R],
) *View[R] {
	return compose([]Source{a, b, c, d, e, f, g, h}, func(args []any) R {
		return project(must[A](args[0]), must[B](args[1]), must[C](args[2]), must[D](args[3]),
			must[E](args[4]), must[F](args[5]), must[G](args[6]), must[H](args[7]))
	}, opts)
}

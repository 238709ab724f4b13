// Package effect runs side effects in response to view changes.
//
// An effect subscribes a computation to one view, or to a tuple of views,
// and re-runs it every time the observed value changes. Runs are
// asynchronous and follow switch semantics: when a new value arrives the
// context handed to the in-flight run is cancelled before the next run
// starts, so only the latest run is ever current.
//
//	e := effect.Watch(ctx, query, func(ctx context.Context, q string) error {
//	    users, err := api.Search(ctx, q)
//	    if err != nil {
//	        return err
//	    }
//	    state.Update(results, users)
//	    return nil
//	})
//	defer e.Stop()
//
// Errors returned by a run are passed to the OnError option, or logged when
// none is set. Errors caused by a run being superseded are dropped.
package effect

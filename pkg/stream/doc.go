// Package stream provides the minimal push-based emission primitives the
// state graph is built on.
//
// A Behavior holds a current value and pushes every new value to its
// subscribers. Map and DistinctUntilChanged are per-subscription operators:
//
//	pulses := stream.NewBehavior(struct{}{})
//	values := stream.DistinctUntilChanged(
//	    stream.Map(pulses, func(struct{}) int { return counter() }),
//	    func(a, b int) bool { return a == b },
//	)
//	sub := values.Subscribe(func(n int) { fmt.Println(n) })
//	defer sub.Unsubscribe()
package stream

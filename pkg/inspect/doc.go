// Package inspect serves a read-only view of a running state graph.
//
// Views are registered by name, then exposed over a chi router: a JSON
// snapshot of every view, a per-view lookup, a websocket feed that pushes a
// fresh snapshot on every pulse, and the Prometheus metrics endpoint.
//
//	ins := inspect.New()
//	inspect.Register(ins, "count", count)
//	inspect.Register(ins, "label", label)
//	ins.Start()
//	defer ins.Close()
//
//	http.ListenAndServe(":6060", ins.Handler())
//
// Each websocket client is identified by a ULID sent in its first message.
package inspect

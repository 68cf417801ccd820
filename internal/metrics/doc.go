// Package metrics implements the event pipeline and aggregation core of
// the dashboard.
//
// Request handlers produce Event values and push them through a bounded
// Channel with non-blocking semantics; the dashboard loop is the single
// consumer, folding events into an Aggregator that maintains:
//   - a 60-slot rolling window of per-second request counts
//   - RPS statistics over the completed seconds (min/max/avg/median/p90)
//   - running latency extrema and average
//   - a bounded log of the most recent requests
//
// The Aggregator has no internal locking: it must only be touched by the
// goroutine that owns it. All cross-goroutine traffic happens on the
// Channel, whose producers drop events instead of blocking when the
// buffer fills.
//
// Example usage:
//
//	ch := metrics.NewChannel(metrics.DefaultCapacity)
//	agg := metrics.NewAggregator()
//
//	// Request path (any goroutine):
//	ch.Send(metrics.Event{Type: metrics.EventRequestObserved, Request: req})
//
//	// Dashboard loop (single goroutine, each tick):
//	agg.AdvanceWindow(time.Now().Unix())
//	for {
//		event, ok := ch.TryReceive()
//		if !ok {
//			break
//		}
//		agg.Observe(event)
//	}
//	snap := agg.Snapshot(20)
package metrics

package metrics

import (
	"math"
	"sort"
	"time"
)

const (
	// WindowSeconds is the rolling RPS window length. Index 0 is the
	// current, still-accumulating second; higher indices are older.
	WindowSeconds = 60

	// LogCapacity bounds the request log. The oldest entry is evicted
	// first once the capacity is exceeded.
	LogCapacity = 1000
)

// Aggregator accumulates request events into a rolling per-second window,
// a bounded request log, and running latency stats. It is owned by the
// dashboard loop: every method must be called from that single goroutine,
// which is why there is no lock here.
type Aggregator struct {
	counts  [WindowSeconds]uint64
	display [WindowSeconds]uint64

	log   []Request
	total uint64

	latCurrent float64
	latMin     float64
	latMax     float64
	latSum     float64
	latSamples uint64

	lastUpdate int64
	startTime  time.Time
}

type RPSStats struct {
	Min    uint64
	Max    uint64
	Avg    float64
	Median uint64
	P90    uint64
}

type LatencyStats struct {
	Current float64
	Min     float64
	Max     float64
	Avg     float64
}

// Snapshot is the read-only view handed to the rendering layer.
type Snapshot struct {
	RPS     RPSStats
	Latency LatencyStats
	Total   uint64
	Uptime  time.Duration
	Series  [WindowSeconds]uint64
	Recent  []Request
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latMin:    math.MaxFloat64,
		startTime: time.Now(),
	}
}

// Observe folds one event into the aggregator state.
func (a *Aggregator) Observe(event Event) {
	switch event.Type {
	case EventRequestObserved:
		a.recordRequest(event.Request)
	}
}

func (a *Aggregator) recordRequest(req Request) {
	a.total++

	a.log = append(a.log, req)
	if len(a.log) > LogCapacity {
		a.log = a.log[1:]
	}

	a.latCurrent = req.DurationMS
	a.latMin = math.Min(a.latMin, req.DurationMS)
	a.latMax = math.Max(a.latMax, req.DurationMS)
	a.latSum += req.DurationMS
	a.latSamples++

	a.counts[0]++
	a.display[0] = a.counts[0]
}

// AdvanceWindow shifts the rolling window to the given wall-clock second.
// Call it once per render tick, before draining new events. The first
// call only records the baseline. A non-positive elapsed time is a no-op
// so a clock stepping backwards never corrupts the window.
func (a *Aggregator) AdvanceWindow(now int64) {
	if a.lastUpdate == 0 {
		a.lastUpdate = now
		return
	}

	elapsed := now - a.lastUpdate
	if elapsed <= 0 {
		return
	}

	if elapsed >= WindowSeconds {
		a.counts = [WindowSeconds]uint64{}
		a.display = [WindowSeconds]uint64{}
	} else {
		shift := int(elapsed)
		copy(a.counts[shift:], a.counts[:WindowSeconds-shift])
		copy(a.display[shift:], a.display[:WindowSeconds-shift])
		for i := 0; i < shift; i++ {
			a.counts[i] = 0
			a.display[i] = 0
		}
	}

	a.lastUpdate = now
}

// RPSStats computes statistics over the completed seconds of the window.
// Index 0 is excluded: the current second is still accumulating and would
// bias every statistic downward.
func (a *Aggregator) RPSStats() RPSStats {
	return WindowStats(a.counts[1:])
}

// WindowStats computes RPS statistics over a window of per-second counts.
// Min is the smallest strictly positive count, so an idle window reports
// 0 rather than a misleading positive floor. Avg includes zeros. Median
// of an even-length window averages the two middle values with integer
// division. P90 uses ceiling-rank selection clamped to the last index,
// deliberately not interpolated.
func WindowStats(window []uint64) RPSStats {
	if len(window) == 0 {
		return RPSStats{}
	}

	sorted := make([]uint64, len(window))
	copy(sorted, window)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	var stats RPSStats
	stats.Max = sorted[len(sorted)-1]

	for _, v := range sorted {
		if v > 0 {
			stats.Min = v
			break
		}
	}

	var sum uint64
	for _, v := range sorted {
		sum += v
	}
	stats.Avg = float64(sum) / float64(len(sorted))

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		stats.Median = sorted[mid]
	} else {
		stats.Median = (sorted[mid-1] + sorted[mid]) / 2
	}

	idx := int(math.Ceil(float64(len(sorted)) * 0.90))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	stats.P90 = sorted[idx]

	return stats
}

// LatencyCurrent returns the duration of the most recent request, 0 with
// no samples.
func (a *Aggregator) LatencyCurrent() float64 {
	if a.latSamples == 0 {
		return 0
	}

	return a.latCurrent
}

// LatencyMin returns 0 until the first sample replaces the sentinel.
func (a *Aggregator) LatencyMin() float64 {
	if a.latSamples == 0 {
		return 0
	}

	return a.latMin
}

func (a *Aggregator) LatencyMax() float64 {
	if a.latSamples == 0 {
		return 0
	}

	return a.latMax
}

func (a *Aggregator) LatencyAvg() float64 {
	if a.latSamples == 0 {
		return 0
	}

	return a.latSum / float64(a.latSamples)
}

func (a *Aggregator) TotalRequests() uint64 {
	return a.total
}

func (a *Aggregator) Uptime() time.Duration {
	return time.Since(a.startTime)
}

// History returns a copy of the ground-truth per-second counts.
func (a *Aggregator) History() [WindowSeconds]uint64 {
	return a.counts
}

// DisplayHistory returns a copy of the visual trace fed to the chart.
func (a *Aggregator) DisplayHistory() [WindowSeconds]uint64 {
	return a.display
}

// Recent returns up to n log entries, newest first. A non-positive n
// yields an empty slice.
func (a *Aggregator) Recent(n int) []Request {
	if n < 0 {
		n = 0
	}
	if n > len(a.log) {
		n = len(a.log)
	}

	out := make([]Request, n)
	for i := 0; i < n; i++ {
		out[i] = a.log[len(a.log)-1-i]
	}

	return out
}

// Snapshot bundles everything the renderer needs for one frame.
func (a *Aggregator) Snapshot(recent int) Snapshot {
	return Snapshot{
		RPS: a.RPSStats(),
		Latency: LatencyStats{
			Current: a.LatencyCurrent(),
			Min:     a.LatencyMin(),
			Max:     a.LatencyMax(),
			Avg:     a.LatencyAvg(),
		},
		Total:  a.total,
		Uptime: time.Since(a.startTime),
		Series: a.display,
		Recent: a.Recent(recent),
	}
}

package metrics

type EventType string

const (
	EventRequestObserved EventType = "request_observed"
)

// Request is one observed request, immutable once created. It travels
// through the channel and then lives in the aggregator's log.
type Request struct {
	Path       string
	Method     string
	Status     int
	Timestamp  int64
	DurationMS float64
}

// Event is the envelope carried from request handlers to the aggregator.
type Event struct {
	Type    EventType
	Request Request
}

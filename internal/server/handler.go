package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/artis101/rustrate/internal/delay"
	"github.com/artis101/rustrate/internal/metrics"
)

// Handler accepts every method on every path, applies the configured
// artificial delay, and answers 200 with a body in the configured
// format. Completed requests are emitted as events; a full channel
// drops them silently.
type Handler struct {
	logger *slog.Logger
	policy delay.Policy
	events *metrics.Channel
	format Format
	total  atomic.Uint64
}

type jsonResponse struct {
	Status  string      `json:"status"`
	Request requestInfo `json:"request"`
	Timing  timingInfo  `json:"timing"`
}

type requestInfo struct {
	Path      string `json:"path"`
	Method    string `json:"method"`
	Timestamp int64  `json:"timestamp"`
}

type timingInfo struct {
	ProcessingTimeMS float64 `json:"processing_time_ms"`
	SimulatedDelayMS uint64  `json:"simulated_delay_ms"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	h.total.Add(1)

	simulated := h.policy.Sample()
	if simulated > 0 {
		timer := time.NewTimer(time.Duration(simulated) * time.Millisecond)
		select {
		case <-timer.C:
		case <-r.Context().Done():
			// Client gone or server shutting down; nothing to answer
			// and nothing to observe.
			timer.Stop()
			return
		}
	}

	processing := time.Since(start).Seconds() * 1000.0

	h.emitEvent(metrics.Event{
		Type: metrics.EventRequestObserved,
		Request: metrics.Request{
			Path:       r.URL.Path,
			Method:     r.Method,
			Status:     http.StatusOK,
			Timestamp:  start.Unix(),
			DurationMS: processing,
		},
	})

	h.writeResponse(w, r, start, processing, simulated)

	h.logger.Debug("Handled request",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Float64("processing_ms", processing),
		slog.Uint64("simulated_ms", simulated))
}

func (h *Handler) writeResponse(w http.ResponseWriter, r *http.Request, start time.Time, processing float64, simulated uint64) {
	switch h.format {
	case FormatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Request processed in %.3fms (simulated delay: %dms)", processing, simulated)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		resp := jsonResponse{
			Status: "success",
			Request: requestInfo{
				Path:      r.URL.Path,
				Method:    r.Method,
				Timestamp: start.Unix(),
			},
			Timing: timingInfo{
				ProcessingTimeMS: processing,
				SimulatedDelayMS: simulated,
			},
		}

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.logger.Warn("Failed to write response", slog.Any("err", err))
		}
	}
}

func (h *Handler) emitEvent(event metrics.Event) {
	if h.events == nil {
		return
	}

	h.events.Send(event)
}

// TotalHandled reports how many requests reached the handler, including
// ones abandoned mid-delay. This counter is the only handler value
// shared across goroutines.
func (h *Handler) TotalHandled() uint64 {
	return h.total.Load()
}

func NewHandler(logger *slog.Logger, policy delay.Policy, events *metrics.Channel, format Format) *Handler {
	return &Handler{
		logger: logger,
		policy: policy,
		events: events,
		format: format,
	}
}

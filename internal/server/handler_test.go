package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/artis101/rustrate/internal/delay"
	"github.com/artis101/rustrate/internal/metrics"
	"github.com/artis101/rustrate/internal/server"
)

type catchAllResponse struct {
	Status  string `json:"status"`
	Request struct {
		Path      string `json:"path"`
		Method    string `json:"method"`
		Timestamp int64  `json:"timestamp"`
	} `json:"request"`
	Timing struct {
		ProcessingTimeMS float64 `json:"processing_time_ms"`
		SimulatedDelayMS uint64  `json:"simulated_delay_ms"`
	} `json:"timing"`
}

var _ = Describe("Handler", func() {
	var (
		h      *server.Handler
		events *metrics.Channel
		log    *slog.Logger
	)

	noDelay := func() delay.Policy {
		p, err := delay.Parse("0")
		Expect(err).NotTo(HaveOccurred())
		return p
	}

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		events = metrics.NewChannel(16)
		h = server.NewHandler(log, noDelay(), events, server.FormatJSON)
	})

	Describe("NewHandler", func() {
		It("should create a handler", func() {
			Expect(h).NotTo(BeNil())
		})
	})

	Describe("ServeHTTP in json mode", func() {
		It("should answer 200 with a success body", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))

			var resp catchAllResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Status).To(Equal("success"))
			Expect(resp.Request.Path).To(Equal("/api/test"))
			Expect(resp.Request.Method).To(Equal(http.MethodGet))
			Expect(resp.Request.Timestamp).To(BeNumerically(">", 0))
			Expect(resp.Timing.SimulatedDelayMS).To(BeZero())
			Expect(resp.Timing.ProcessingTimeMS).To(BeNumerically(">=", 0))
		})

		It("should accept any method on any path", func() {
			for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
				req := httptest.NewRequest(method, "/some/deeply/nested/path?q=1", nil)
				w := httptest.NewRecorder()

				h.ServeHTTP(w, req)

				Expect(w.Code).To(Equal(http.StatusOK))

				var resp catchAllResponse
				Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
				Expect(resp.Request.Method).To(Equal(method))
				Expect(resp.Request.Path).To(Equal("/some/deeply/nested/path"))
			}
		})

		It("should emit one event per request", func() {
			req := httptest.NewRequest(http.MethodGet, "/observed", nil)
			h.ServeHTTP(httptest.NewRecorder(), req)

			event, ok := events.TryReceive()
			Expect(ok).To(BeTrue())
			Expect(event.Type).To(Equal(metrics.EventRequestObserved))
			Expect(event.Request.Path).To(Equal("/observed"))
			Expect(event.Request.Method).To(Equal(http.MethodGet))
			Expect(event.Request.Status).To(Equal(http.StatusOK))
			Expect(event.Request.DurationMS).To(BeNumerically(">=", 0))

			_, ok = events.TryReceive()
			Expect(ok).To(BeFalse())
		})

		It("should survive a nil event channel", func() {
			h = server.NewHandler(log, noDelay(), nil, server.FormatJSON)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("ServeHTTP in text mode", func() {
		BeforeEach(func() {
			h = server.NewHandler(log, noDelay(), events, server.FormatText)
		})

		It("should answer with a one-line plain text summary", func() {
			req := httptest.NewRequest(http.MethodGet, "/plain", nil)
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("text/plain; charset=utf-8"))
			Expect(w.Body.String()).To(MatchRegexp(`^Request processed in \d+\.\d{3}ms \(simulated delay: 0ms\)$`))
		})
	})

	Describe("artificial delay", func() {
		It("should hold the response for at least the fixed delay", func() {
			p, err := delay.Parse("30")
			Expect(err).NotTo(HaveOccurred())
			h = server.NewHandler(log, p, events, server.FormatJSON)

			start := time.Now()
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))
			elapsed := time.Since(start)

			Expect(elapsed).To(BeNumerically(">=", 30*time.Millisecond))

			event, ok := events.TryReceive()
			Expect(ok).To(BeTrue())
			Expect(event.Request.DurationMS).To(BeNumerically(">=", 30.0))
		})

		It("should report the sampled delay from a range", func() {
			p, err := delay.Parse("10-20")
			Expect(err).NotTo(HaveOccurred())
			h = server.NewHandler(log, p, events, server.FormatJSON)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			var resp catchAllResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Timing.SimulatedDelayMS).To(BeNumerically(">=", 10))
			Expect(resp.Timing.SimulatedDelayMS).To(BeNumerically("<=", 20))
		})

		It("should abandon a cancelled request without emitting an event", func() {
			p, err := delay.Parse("5000")
			Expect(err).NotTo(HaveOccurred())
			h = server.NewHandler(log, p, events, server.FormatJSON)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			req := httptest.NewRequest(http.MethodGet, "/doomed", nil).WithContext(ctx)
			w := httptest.NewRecorder()

			start := time.Now()
			h.ServeHTTP(w, req)

			Expect(time.Since(start)).To(BeNumerically("<", time.Second))
			Expect(w.Body.Len()).To(BeZero())

			_, ok := events.TryReceive()
			Expect(ok).To(BeFalse())
			Expect(h.TotalHandled()).To(Equal(uint64(1)))
		})
	})

	Describe("TotalHandled", func() {
		It("should count every request that reached the handler", func() {
			for i := 0; i < 5; i++ {
				h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
			}

			Expect(h.TotalHandled()).To(Equal(uint64(5)))
		})
	})
})

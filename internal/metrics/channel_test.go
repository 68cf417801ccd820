package metrics_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/artis101/rustrate/internal/metrics"
)

var _ = Describe("Channel", func() {
	Describe("NewChannel", func() {
		It("should fall back to the default capacity for non-positive sizes", func() {
			ch := metrics.NewChannel(0)

			for i := 0; i < metrics.DefaultCapacity; i++ {
				Expect(ch.Send(metrics.Event{})).To(BeTrue())
			}
			Expect(ch.Send(metrics.Event{})).To(BeFalse())
		})
	})

	Describe("Send and TryReceive", func() {
		var ch *metrics.Channel

		BeforeEach(func() {
			ch = metrics.NewChannel(4)
		})

		It("should deliver events in order", func() {
			for i := 0; i < 3; i++ {
				ok := ch.Send(observed(metrics.Request{Status: 200 + i}))
				Expect(ok).To(BeTrue())
			}

			for i := 0; i < 3; i++ {
				event, ok := ch.TryReceive()
				Expect(ok).To(BeTrue())
				Expect(event.Request.Status).To(Equal(200 + i))
			}
		})

		It("should report empty without blocking", func() {
			_, ok := ch.TryReceive()
			Expect(ok).To(BeFalse())
		})

		It("should drop the newest event when full", func() {
			for i := 0; i < 4; i++ {
				Expect(ch.Send(observed(metrics.Request{Status: i}))).To(BeTrue())
			}

			Expect(ch.Send(observed(metrics.Request{Status: 99}))).To(BeFalse())
			Expect(ch.Dropped()).To(Equal(uint64(1)))
			Expect(ch.Len()).To(Equal(4))

			// The buffered events survive; the overflowing one is gone.
			event, ok := ch.TryReceive()
			Expect(ok).To(BeTrue())
			Expect(event.Request.Status).To(BeZero())
		})

		It("should track the buffered event count", func() {
			Expect(ch.Len()).To(BeZero())

			ch.Send(metrics.Event{})
			ch.Send(metrics.Event{})
			Expect(ch.Len()).To(Equal(2))

			ch.TryReceive()
			Expect(ch.Len()).To(Equal(1))
		})
	})

	Describe("concurrent producers", func() {
		It("should accept sends from many goroutines without loss below capacity", func() {
			const (
				producers = 10
				perWorker = 100
			)

			ch := metrics.NewChannel(producers * perWorker)

			var wg sync.WaitGroup
			for p := 0; p < producers; p++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < perWorker; i++ {
						ch.Send(observed(metrics.Request{Method: "GET"}))
					}
				}()
			}
			wg.Wait()

			Expect(ch.Len()).To(Equal(producers * perWorker))
			Expect(ch.Dropped()).To(BeZero())

			received := 0
			for {
				if _, ok := ch.TryReceive(); !ok {
					break
				}
				received++
			}
			Expect(received).To(Equal(producers * perWorker))
		})
	})
})

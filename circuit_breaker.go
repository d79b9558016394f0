package memento

import (
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kafkiansky/memento/protocol"
)

// CircuitBreaker short-circuits requests to a failing server. It never
// retries and never masks a failure: an open breaker fails fast with
// gobreaker.ErrOpenState instead of queueing work behind a dead socket.
type CircuitBreaker interface {
	Execute(fn func() (*protocol.Response, error)) (*protocol.Response, error)
	State() gobreaker.State
}

type breaker struct {
	cb *gobreaker.CircuitBreaker[*protocol.Response]
}

// NewCircuitBreaker returns a gobreaker-backed CircuitBreaker for use in
// Config. The breaker trips after at least 3 requests with a failure ratio
// of 60% or more.
func NewCircuitBreaker(name string, maxRequests uint32, interval, timeout time.Duration) CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	}
	return &breaker{cb: gobreaker.NewCircuitBreaker[*protocol.Response](settings)}
}

func (b *breaker) Execute(fn func() (*protocol.Response, error)) (*protocol.Response, error) {
	return b.cb.Execute(fn)
}

func (b *breaker) State() gobreaker.State {
	return b.cb.State()
}

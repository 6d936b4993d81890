package model

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	breakerConsecutiveFailures = 5
	breakerOpenTimeout         = 90 * time.Second
)

// newBreaker trips after a run of consecutive failures so a dead backend is
// not hammered for every remaining paper of a run.
func newBreaker(name string, log *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("model circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

package api

import (
	"errors"
	"time"

	"snooze/internal/domain/errs"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the circuit breaker in front of read-only calls.
type BreakerConfig struct {
	// MaxRequests is the number of probes let through while half-open
	MaxRequests uint32

	// Interval clears the failure counts while closed
	Interval time.Duration

	// Timeout is how long the breaker stays open
	Timeout time.Duration

	// FailureThreshold is the failure ratio that trips the breaker
	FailureThreshold float64

	// MinRequests is the sample size needed before the ratio counts
	MinRequests uint32
}

// DefaultBreakerConfig returns the settings used for the story and user reads.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func newBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		// a rejected token or a missing user says nothing about the service being down
		IsSuccessful: func(err error) bool {
			return err == nil || !isOutage(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
}

func isOutage(err error) bool {
	if errors.Is(err, errs.ErrNetwork) {
		return true
	}
	var apiErr *errs.APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 500
}

// throughBreaker runs fn behind cb and maps an open circuit to ErrNetwork.
func throughBreaker(cb *gobreaker.CircuitBreaker, op string, fn func() error) error {
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &errs.APIError{Op: op, Kind: errs.ErrNetwork, Message: err.Error()}
	}
	return err
}

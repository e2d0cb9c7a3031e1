package ai

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/pkg/metrics"
	"github.com/fintrack/fintrack_service/pkg/retry"
)

// ResilientProvider wraps a provider with a circuit breaker and retries on transient failures
type ResilientProvider struct {
	inner   AIProvider
	breaker *gobreaker.CircuitBreaker
	retrier *retry.Retrier
	logger  *zap.Logger
}

// BreakerConfig tunes the circuit breaker around a provider
type BreakerConfig struct {
	MaxFailures int
	OpenTimeout time.Duration
}

func NewResilientProvider(inner AIProvider, breaker BreakerConfig, policy retry.Policy, logger *zap.Logger) *ResilientProvider {
	if breaker.MaxFailures <= 0 {
		breaker.MaxFailures = 5
	}
	if breaker.OpenTimeout <= 0 {
		breaker.OpenTimeout = time.Minute
	}

	settings := gobreaker.Settings{
		Name:        "ai-" + inner.Name(),
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(breaker.MaxFailures)
		},
		IsSuccessful: func(err error) bool {
			// caller cancellations say nothing about provider health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("AI circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	policy.RetryableFunc = isRetryable
	return &ResilientProvider{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
		retrier: retry.NewRetrier(policy, logger),
		logger:  logger,
	}
}

func (p *ResilientProvider) Name() string { return p.inner.Name() }

// ChatCompletion calls the wrapped provider through the breaker, retrying transient errors
func (p *ResilientProvider) ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	resp, err := retry.DoWithResult(ctx, p.retrier, func(ctx context.Context) (*ChatResponse, error) {
		out, err := p.breaker.Execute(func() (interface{}, error) {
			return p.inner.ChatCompletion(ctx, req)
		})
		if err != nil {
			return nil, err
		}
		return out.(*ChatResponse), nil
	})

	outcome := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "circuit_open"
	case err != nil:
		outcome = "error"
	}
	metrics.AICallsTotal.WithLabelValues(p.inner.Name(), outcome).Inc()
	return resp, err
}

func isRetryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.IsRetryable()
	}
	return retry.ShouldRetry(err)
}

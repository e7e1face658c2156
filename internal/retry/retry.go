package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/amishk599/jobradar/internal/model"
)

// Completer is the LLM call being retried.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Provider is a decorator that retries transient LLM failures with exponential
// backoff and jitter before giving up.
type Provider struct {
	inner      Completer
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewProvider wraps a Completer with retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewProvider(inner Completer, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Provider {
	return &Provider{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Complete calls the wrapped provider, retrying on transient errors.
func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	var out string
	var lastErr error

	op := func() error {
		res, err := p.inner.Complete(ctx, prompt)
		if err == nil {
			out = res
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = p.baseDelay
	expo.RandomizationFactor = 0.3
	expo.Multiplier = 2
	expo.MaxElapsedTime = 0

	var b backoff.BackOff = &retryAfterBackOff{BackOff: expo, lastErr: &lastErr}
	b = backoff.WithMaxRetries(b, uint64(max(p.maxRetries, 0)))
	b = backoff.WithContext(b, ctx)

	notify := func(err error, delay time.Duration) {
		p.logger.Warn("retrying after transient error",
			"max_retries", p.maxRetries,
			"delay", delay,
			"error", err,
		)
	}

	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return "", err
	}
	return out, nil
}

// retryAfterBackOff uses the server's Retry-After hint when the last error
// carried one, otherwise the wrapped schedule.
type retryAfterBackOff struct {
	backoff.BackOff
	lastErr *error
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	var httpErr *model.HTTPError
	if errors.As(*b.lastErr, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}
	return next
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation: never retry.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 {
			return true
		}
		if httpErr.StatusCode >= 500 {
			return true
		}
		// 4xx (not 429) is the caller's fault.
		return false
	}

	// Non-HTTP errors (network, DNS, etc.) are retryable.
	return true
}

package scanning

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited throttles calls to another Client
type RateLimited struct {
	next    Client
	limiter *rate.Limiter
}

// NewRateLimited wraps next so that at most perSecond calls start each
// second. A non-positive rate returns next unchanged.
func NewRateLimited(next Client, perSecond float64, burst int) Client {
	if perSecond <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// ExtractText waits for a token and calls the wrapped client
func (r *RateLimited) ExtractText(ctx context.Context, base64Data string, mimeType string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return r.next.ExtractText(ctx, base64Data, mimeType)
}

// Analyze waits for a token and calls the wrapped client
func (r *RateLimited) Analyze(ctx context.Context, text string, base64Data string, mimeType string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return r.next.Analyze(ctx, text, base64Data, mimeType)
}

// Close closes the wrapped client
func (r *RateLimited) Close() error {
	return r.next.Close()
}

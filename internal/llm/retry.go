package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/stargraph/internal/core/model"
)

// RetryAnswerer retries a batch while the model reports it is loading,
// waiting a fixed backoff between attempts. Any other error is returned
// at once.
type RetryAnswerer struct {
	next        Answerer
	maxAttempts int
	backoff     time.Duration
	log         *zap.Logger
}

func NewRetryAnswerer(next Answerer, maxAttempts int, backoff time.Duration, log *zap.Logger) *RetryAnswerer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RetryAnswerer{next: next, maxAttempts: maxAttempts, backoff: backoff, log: log}
}

func (r *RetryAnswerer) Answer(ctx context.Context, batch []model.QARequest) ([]model.QAResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		responses, err := r.next.Answer(ctx, batch)
		if err == nil {
			if len(responses) != len(batch) {
				return nil, fmt.Errorf("%w: got %d, want %d", ErrBatchSize, len(responses), len(batch))
			}
			return responses, nil
		}
		if !errors.Is(err, ErrModelLoading) {
			return nil, err
		}
		lastErr = err

		if attempt == r.maxAttempts {
			break
		}
		r.log.Warn("model is loading, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.maxAttempts),
			zap.Duration("backoff", r.backoff),
			zap.Error(err))

		select {
		case <-time.After(r.backoff):
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during retry backoff: %w", ctx.Err())
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", r.maxAttempts, lastErr)
}

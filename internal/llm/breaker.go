package llm

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/agenthands/stargraph/internal/config"
	"github.com/agenthands/stargraph/internal/core/model"
)

// BreakerAnswerer stops calling a failing model until the breaker's
// timeout elapses.
type BreakerAnswerer struct {
	next Answerer
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerAnswerer(next Answerer, cfg config.BreakerConfig, name string, log *zap.Logger) *BreakerAnswerer {
	if log == nil {
		log = zap.NewNop()
	}
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.TripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &BreakerAnswerer{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *BreakerAnswerer) Answer(ctx context.Context, batch []model.QARequest) ([]model.QAResponse, error) {
	resp, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Answer(ctx, batch)
	})
	if err != nil {
		return nil, err
	}
	return resp.([]model.QAResponse), nil
}

func (b *BreakerAnswerer) State() gobreaker.State {
	return b.cb.State()
}

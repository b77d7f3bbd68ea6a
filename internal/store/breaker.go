package store

import (
	"context"
	"errors"
	"log/slog"

	perrors "github.com/abgdnv/productapi/internal/errors"
	"github.com/abgdnv/productapi/pkg/config"
	"github.com/sony/gobreaker/v2"
)

const defaultHalfOpenRequests = 3

// Breaker decorates a ProductStore with a circuit breaker.
// Domain outcomes (not found, version conflict) and cancelled requests never trip it.
type Breaker struct {
	next ProductStore
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreaker wraps next with a circuit breaker configured from cfg.
func NewBreaker(next ProductStore, cfg config.CircuitBreakerConfig, logger *slog.Logger) *Breaker {
	maxRequests := cfg.MaxRequests
	if maxRequests == 0 {
		maxRequests = defaultHalfOpenRequests
	}
	st := gobreaker.Settings{
		Name:        "product-store",
		MaxRequests: maxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker[any](st)}
}

func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, perrors.ErrProductNotFound) ||
		errors.Is(err, perrors.ErrVersionConflict) ||
		errors.Is(err, context.Canceled)
}

// execute runs fn through the breaker and restores its result type.
func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

func (b *Breaker) Insert(ctx context.Context, product Product) (*Product, error) {
	return execute(b.cb, func() (*Product, error) { return b.next.Insert(ctx, product) })
}

func (b *Breaker) FindAll(ctx context.Context) ([]Product, error) {
	return execute(b.cb, func() ([]Product, error) { return b.next.FindAll(ctx) })
}

func (b *Breaker) FindByID(ctx context.Context, id string) (*Product, error) {
	return execute(b.cb, func() (*Product, error) { return b.next.FindByID(ctx, id) })
}

func (b *Breaker) Replace(ctx context.Context, id string, product Product) (*Product, error) {
	return execute(b.cb, func() (*Product, error) { return b.next.Replace(ctx, id, product) })
}

func (b *Breaker) RemoveByID(ctx context.Context, id string) error {
	_, err := execute(b.cb, func() (struct{}, error) { return struct{}{}, b.next.RemoveByID(ctx, id) })
	return err
}

// Ping bypasses the breaker so readiness reflects the storage itself.
func (b *Breaker) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}

// State reports the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

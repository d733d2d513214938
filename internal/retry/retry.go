// Package retry содержит повтор операций с таймаутом на попытку и паузой между попытками
package retry

import (
	"context"
	"errors"
	"time"
)

// BackoffFunc возвращает паузу после неудачной попытки attempt (нумерация с 1)
type BackoffFunc func(attempt int) time.Duration

// Linear пауза растет линейно: attempt * base
func Linear(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

// Policy параметры повторов
type Policy struct {
	MaxAttempts int
	Timeout     time.Duration // таймаут одной попытки, 0 без таймаута
	Backoff     BackoffFunc
	// Retryable решает, имеет ли смысл повторять после ошибки. nil: повторять всегда.
	Retryable func(err error) bool
	// OnRetry вызывается перед паузой, когда будет еще одна попытка
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Do выполняет op до MaxAttempts раз. Каждая попытка получает свой контекст
// с таймаутом. Пауза между попытками приостанавливает только вызывающую
// горутину и прерывается отменой ctx. После последней попытки возвращается
// последняя ошибка без обертки.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, errors.Join(lastErr, err)
			}
			return zero, err
		}

		result, err := runAttempt(ctx, p.Timeout, attempt, op)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if p.Retryable != nil && !p.Retryable(err) {
			return zero, err
		}
		if attempt == attempts {
			break
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff(attempt)
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, errors.Join(lastErr, err)
		}
	}

	return zero, lastErr
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, attempt int, op func(ctx context.Context, attempt int) (T, error)) (T, error) {
	if timeout <= 0 {
		return op(ctx, attempt)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return op(attemptCtx, attempt)
}

// sleep ждет d или отмены ctx
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

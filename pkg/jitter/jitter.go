// Package jitter предоставляет задержки повторов с экспоненциальным ростом и случайной добавкой,
// чтобы повторные запросы к источникам и хранилищам не приходили одновременно.
package jitter

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Duration возвращает продолжительность с применённым джиттером.
// Результат находится в диапазоне [d, d*(1+jitterFactor)].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	randMutex.Lock()
	jitter := globalRand.Float64() * jitterFactor * float64(d)
	randMutex.Unlock()
	return d + time.Duration(jitter)
}

// ExponentialBackoff вычисляет экспоненциальное отступление с джиттером.
// attempt — номер текущей попытки повтора (нумерация с нуля).
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff > max {
			backoff = max
			break
		}
	}
	return Duration(backoff, jitterFactor)
}

// Policy описывает повторы: число попыток и границы задержки.
type Policy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent помечает ошибку как неповторяемую: Retry вернёт её сразу.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry вызывает fn до p.Attempts раз, пока она возвращает ошибку.
// Ошибка, помеченная Permanent, возвращается без повторов.
// onRetry, если задан, вызывается перед каждой паузой.
// Возвращает последнюю ошибку fn или ошибку контекста, если ожидание прервано.
func Retry(ctx context.Context, p Policy, fn func(ctx context.Context) error, onRetry func(attempt int, wait time.Duration, err error)) error {
	attempts := max(1, p.Attempts)

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		var permanent *permanentError
		if errors.As(err, &permanent) {
			return permanent.err
		}
		if attempt == attempts-1 {
			break
		}

		wait := ExponentialBackoff(p.Base, p.Max, attempt, DefaultJitter)
		if onRetry != nil {
			onRetry(attempt, wait, err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	return err
}

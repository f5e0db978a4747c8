package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const DefaultRefreshTimeout = 5 * time.Second

// Refresher обменивает refresh cookie на новый access токен (POST /api/auth/refresh-token).
// generation : поколение сессии, для которого идёт обновление; cookie из ответа
// сохраняются только если оно не сменилось.
type Refresher func(ctx context.Context, generation uint64) error

type flight struct {
	generation uint64
	done       chan struct{}
	err        error
}

// Coordinator гарантирует, что одновременно идёт не больше одного обновления токена.
// Все запросы, упавшие с истёкшим токеном, ждут одно и то же обновление и получают один результат.
type Coordinator struct {
	session *Session
	refresh Refresher
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	inflight *flight
	last     *flight
}

func NewCoordinator(session *Session, refresher Refresher, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	return &Coordinator{
		session: session,
		refresh: refresher,
		timeout: timeout,
		logger:  slog.Default(),
	}
}

// WithLogger : логгер для результатов обновления
func (c *Coordinator) WithLogger(l *slog.Logger) *Coordinator {
	if l != nil {
		c.logger = l
	}
	return c
}

// Refresh присоединяется к текущему обновлению или запускает новое.
// seenGeneration : поколение сессии на момент отправки упавшего запроса.
// Если оно уже устарело, обновление для этого поколения уже завершилось:
// возвращается его результат (nil после успеха, ошибка после неудачи), новое не запускается.
//
// Отмена ctx прекращает ожидание только для этого вызова, само обновление продолжается
// до успеха, ошибки или таймаута координатора.
func (c *Coordinator) Refresh(ctx context.Context, seenGeneration uint64) error {
	c.mu.Lock()
	if c.session.Generation() != seenGeneration {
		var err error
		if c.last != nil && c.last.generation == seenGeneration {
			err = c.last.err
		}
		c.mu.Unlock()
		return err
	}

	f := c.inflight
	if f == nil {
		f = &flight{generation: seenGeneration, done: make(chan struct{})}
		c.inflight = f
		go c.run(f)
	}
	c.mu.Unlock()

	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) run(f *flight) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	err := c.refresh(ctx, f.generation)

	c.mu.Lock()
	switch {
	case err == nil && !c.session.advanceFrom(f.generation):
		// сессию сбросили, пока шло обновление: результат не принимается
		err = ErrSessionCleared
		c.logger.Info("обновление токена завершилось после сброса сессии")
	case err == nil:
	case errors.Is(err, ErrSessionCleared):
		c.logger.Info("обновление токена завершилось после сброса сессии")
	default:
		c.logger.Warn("не удалось обновить access токен, сессия сброшена", slog.Any("err", err))
		c.session.clearFrom(f.generation)
	}
	f.err = err
	c.inflight = nil
	c.last = f
	c.mu.Unlock()

	close(f.done)
}

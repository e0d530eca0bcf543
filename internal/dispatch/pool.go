// Package dispatch bounds the goroutine fan-out for REST-triggered
// indicator and support/resistance computations behind a fixed-size
// worker pool, so a burst of calculate requests can't spin up unbounded
// goroutines against the same candle history.
package dispatch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/panjf2000/ants/v2"
)

// ErrPoolOverloaded is returned when the pool has no free worker and no
// room left in its blocking queue.
var ErrPoolOverloaded = errors.New("dispatch pool overloaded")

// Pool runs caller-supplied work on a bounded number of goroutines and
// returns the result (or panic, reported as an error) back to the caller.
type Pool struct {
	pool *ants.Pool
	log  *slog.Logger
}

// New creates a pool with the given worker capacity. size <= 0 falls back
// to ants.DefaultAntsPoolSize (math.MaxInt32, i.e. effectively unbounded).
func New(size int, log *slog.Logger) (*Pool, error) {
	if size <= 0 {
		size = ants.DefaultAntsPoolSize
	}
	p, err := ants.NewPool(size, ants.WithNonblocking(false), ants.WithPanicHandler(func(r interface{}) {
		log.Error("dispatch task panicked", "recovered", r)
	}))
	if err != nil {
		return nil, err
	}
	return &Pool{pool: p, log: log}, nil
}

// Run submits fn and blocks until it completes, the pool rejects it, or
// ctx is cancelled first. A panic inside fn is recovered and surfaces as
// an error rather than crashing the worker goroutine.
func (p *Pool) Run(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	type outcome struct {
		val interface{}
		err error
	}
	done := make(chan outcome, 1)

	err := p.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("dispatch task panicked", "recovered", r)
				done <- outcome{err: errFromPanic(r)}
			}
		}()
		val, err := fn()
		done <- outcome{val: val, err: err}
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolOverload) {
			return nil, ErrPoolOverloaded
		}
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		return out.val, out.err
	}
}

// Running reports the number of workers currently executing a task.
func (p *Pool) Running() int { return p.pool.Running() }

// Cap reports the pool's worker capacity.
func (p *Pool) Cap() int { return p.pool.Cap() }

// Release stops accepting work and waits for running workers to exit.
func (p *Pool) Release() { p.pool.Release() }

func errFromPanic(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errors.New("dispatch task panicked")
}

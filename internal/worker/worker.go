// Package worker fans jobs out to one serial worker per key while a shared
// semaphore bounds how many run at once. Per-key ordering is what keeps a
// chat's updates from interleaving.
package worker

import (
	"context"
	"sync"
)

type Group[K comparable, J any] struct {
	ctx    context.Context
	sem    chan struct{}
	buffer int
	handle func(context.Context, J)

	mu      sync.Mutex
	workers map[K]chan J
}

// NewGroup builds a group whose workers live until ctx is cancelled. At
// most maxConcurrency handlers run simultaneously across all keys; each
// key's queue holds buffer pending jobs.
func NewGroup[K comparable, J any](ctx context.Context, maxConcurrency, buffer int, handle func(context.Context, J)) *Group[K, J] {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	if buffer < 1 {
		buffer = 16
	}
	return &Group[K, J]{
		ctx:     ctx,
		sem:     make(chan struct{}, maxConcurrency),
		buffer:  buffer,
		handle:  handle,
		workers: make(map[K]chan J),
	}
}

// Enqueue queues job on key's serial worker, starting it on first use.
// Blocks while the key's queue is full; fails only when ctx or the group's
// context ends first.
func (g *Group[K, J]) Enqueue(ctx context.Context, key K, job J) error {
	if ctx == nil {
		ctx = g.ctx
	}
	jobs := g.workerFor(key)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-g.ctx.Done():
		return g.ctx.Err()
	case jobs <- job:
		return nil
	}
}

func (g *Group[K, J]) workerFor(key K) chan J {
	g.mu.Lock()
	defer g.mu.Unlock()
	if jobs, ok := g.workers[key]; ok {
		return jobs
	}
	jobs := make(chan J, g.buffer)
	g.workers[key] = jobs
	go g.run(jobs)
	return jobs
}

func (g *Group[K, J]) run(jobs <-chan J) {
	for {
		select {
		case <-g.ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			select {
			case g.sem <- struct{}{}:
			case <-g.ctx.Done():
				return
			}
			func() {
				defer func() { <-g.sem }()
				g.handle(g.ctx, job)
			}()
		}
	}
}

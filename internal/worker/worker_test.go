package worker

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestGroupKeepsPerKeyOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	got := map[string][]int{}
	var wg sync.WaitGroup

	type job struct {
		key string
		n   int
	}
	g := NewGroup[string, job](ctx, 4, 8, func(_ context.Context, j job) {
		defer wg.Done()
		mu.Lock()
		got[j.key] = append(got[j.key], j.n)
		mu.Unlock()
	})

	for i := 0; i < 20; i++ {
		for _, key := range []string{"a", "b"} {
			wg.Add(1)
			if err := g.Enqueue(ctx, key, job{key: key, n: i}); err != nil {
				t.Fatalf("Enqueue() error = %v", err)
			}
		}
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for _, key := range []string{"a", "b"} {
		seq := got[key]
		if len(seq) != 20 {
			t.Fatalf("key %q handled %d jobs, want 20", key, len(seq))
		}
		for i, n := range seq {
			if n != i {
				t.Fatalf("key %q order = %v, want ascending", key, seq)
			}
		}
	}
}

func TestGroupEnqueueFailsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := NewGroup[int64, int](ctx, 1, 1, func(context.Context, int) {})
	cancel()

	// The worker may need a moment to observe cancellation; Enqueue itself
	// must fail regardless once the queue is saturated.
	deadline := time.Now().Add(time.Second)
	for {
		err := g.Enqueue(context.Background(), 1, 0)
		if err != nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("Enqueue() kept succeeding after group cancellation")
		}
	}
}

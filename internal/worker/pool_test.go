package worker

import (
	"context"
	"sort"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_CollectsAllResults(t *testing.T) {
	pool := NewPool[int](context.Background(), 4)
	for i := 0; i < 20; i++ {
		i := i
		pool.Submit(func(context.Context) int { return i })
	}

	results := pool.Wait()
	if len(results) != 20 {
		t.Fatalf("results = %d, want 20", len(results))
	}
	sort.Ints(results)
	for i, r := range results {
		if r != i {
			t.Fatalf("missing result %d", i)
		}
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	var current, peak int32
	pool := NewPool[struct{}](context.Background(), 3)

	for i := 0; i < 12; i++ {
		pool.Submit(func(context.Context) struct{} {
			n := atomic.AddInt32(&current, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			return struct{}{}
		})
	}
	pool.Wait()

	if p := atomic.LoadInt32(&peak); p > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", p)
	}
}

func TestPool_ShutdownCancelsTaskContext(t *testing.T) {
	pool := NewPool[bool](context.Background(), 1)

	started := make(chan struct{})
	pool.Submit(func(ctx context.Context) bool {
		close(started)
		select {
		case <-ctx.Done():
			return true
		case <-time.After(5 * time.Second):
			return false
		}
	})

	<-started
	pool.Shutdown()
}

func TestPool_EmptyWait(t *testing.T) {
	pool := NewPool[int](context.Background(), 2)
	if results := pool.Wait(); len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
}

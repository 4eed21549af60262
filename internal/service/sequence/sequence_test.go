package sequence

import (
	"sync"
	"testing"
)

func TestNextIsMonotonic(t *testing.T) {
	g := New()
	prev := uint64(0)
	for i := 0; i < 100; i++ {
		n := g.Next()
		if n <= prev {
			t.Fatalf("sequence went backwards: %d after %d", n, prev)
		}
		prev = n
	}
}

func TestNextIsUniqueUnderConcurrency(t *testing.T) {
	g := New()
	const workers, perWorker = 8, 1000

	var mu sync.Mutex
	seen := make(map[uint64]struct{}, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]uint64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, g.Next())
			}
			mu.Lock()
			for _, n := range local {
				seen[n] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("got %d unique values, want %d", len(seen), workers*perWorker)
	}
}

func TestKey(t *testing.T) {
	g := New()
	n := g.Next()
	if key := Key("int-42", n); key != "int-42-evt-1" {
		t.Errorf("Key = %q, want int-42-evt-1", key)
	}
	// reusing the assigned number must not advance the counter
	if key := Key("int-42", n); key != "int-42-evt-1" {
		t.Errorf("Key = %q, want int-42-evt-1", key)
	}
	if next := g.Next(); next != 2 {
		t.Errorf("Next = %d, want 2", next)
	}
}

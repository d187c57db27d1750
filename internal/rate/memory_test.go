package rate

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreConcurrentChecksNeverOverAllow(t *testing.T) {
	store := NewMemoryStore(Config{MaxAttempts: 5, Window: time.Minute}, nil)

	const attempts = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)

	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			dec, err := store.Check(context.Background(), "alice")
			if err != nil {
				t.Errorf("Check failed: %v", err)
				return
			}
			if dec.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 5 {
		t.Fatalf("expected exactly 5 allowed under contention, got %d", allowed)
	}
}

func TestMemoryStoreRemainingNeverNegative(t *testing.T) {
	store := NewMemoryStore(Config{MaxAttempts: 2, Window: time.Minute}, nil)

	for i := 0; i < 5; i++ {
		dec, err := store.Check(context.Background(), "alice")
		if err != nil {
			t.Fatalf("Check failed: %v", err)
		}
		if dec.Remaining < 0 {
			t.Fatalf("remaining went negative: %+v", dec)
		}
	}
}

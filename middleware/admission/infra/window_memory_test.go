package infra

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryWindowStore_CountsWithinWindow(t *testing.T) {
	s := NewMemoryWindowStore()

	var firstReset time.Time
	for i := 1; i <= 3; i++ {
		count, resetAt, err := s.Incr(context.Background(), "k", "chat", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != int64(i) {
			t.Fatalf("expected count=%d, got %d", i, count)
		}
		if i == 1 {
			firstReset = resetAt
		} else if !resetAt.Equal(firstReset) {
			t.Fatalf("expected stable resetAt within window, got %s vs %s", resetAt, firstReset)
		}
	}
}

func TestMemoryWindowStore_ResetsAfterExpiry(t *testing.T) {
	s := NewMemoryWindowStore()

	count, _, _ := s.Incr(context.Background(), "k", "chat", 10*time.Millisecond)
	if count != 1 {
		t.Fatalf("expected count=1, got %d", count)
	}
	s.Incr(context.Background(), "k", "chat", 10*time.Millisecond)

	time.Sleep(15 * time.Millisecond)

	count, _, _ = s.Incr(context.Background(), "k", "chat", 10*time.Millisecond)
	if count != 1 {
		t.Fatalf("expected fresh window after expiry, got count=%d", count)
	}
}

func TestMemoryWindowStore_ClassesDoNotShareBudget(t *testing.T) {
	s := NewMemoryWindowStore()

	s.Incr(context.Background(), "k", "chat", time.Minute)
	s.Incr(context.Background(), "k", "chat", time.Minute)
	count, _, _ := s.Incr(context.Background(), "k", "report", time.Minute)
	if count != 1 {
		t.Fatalf("expected independent class counter, got %d", count)
	}
}

func TestMemoryWindowStore_NoLostUpdatesUnderConcurrency(t *testing.T) {
	s := NewMemoryWindowStore()

	const n = 50
	counts := make(chan int64, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			count, _, _ := s.Incr(context.Background(), "k", "chat", time.Minute)
			counts <- count
		}()
	}
	wg.Wait()
	close(counts)

	seen := make(map[int64]bool, n)
	for c := range counts {
		if seen[c] {
			t.Fatalf("lost update: count %d observed twice", c)
		}
		seen[c] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct counts, got %d", n, len(seen))
	}
	if !seen[int64(n)] {
		t.Fatalf("expected max count %d to be observed", n)
	}
}

func TestMemoryWindowStore_CleanupRemovesExpired(t *testing.T) {
	s := NewMemoryWindowStore()

	s.Incr(context.Background(), "k1", "chat", 5*time.Millisecond)
	s.Incr(context.Background(), "k2", "chat", time.Minute)
	time.Sleep(10 * time.Millisecond)

	s.Cleanup()

	if got := s.Len(); got != 1 {
		t.Fatalf("expected 1 live window after cleanup, got %d", got)
	}
}

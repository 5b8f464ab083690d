package service

import (
	"sync"
	"testing"
	"time"
)

func TestKeyedLockerSerialisesSameKey(t *testing.T) {
	l := NewKeyedLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("12952")
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("max holders = %d, want 1", maxSeen)
	}
	if n := l.size(); n != 0 {
		t.Fatalf("entries left = %d, want 0", n)
	}
}

func TestKeyedLockerIndependentKeys(t *testing.T) {
	l := NewKeyedLocker()
	unlockA := l.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock("b")
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on b blocked behind a")
	}
	if n := l.size(); n != 1 {
		t.Fatalf("entries = %d, want 1", n)
	}
}

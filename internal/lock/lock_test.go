package lock

import (
	"sync"
	"testing"
)

func TestLockSerializesSameProject(t *testing.T) {
	l := NewProjectLocker()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Lock("proj-1")
			counter++
			l.Unlock("proj-1")
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Errorf("expected 100 increments, got %d", counter)
	}
}

func TestDifferentProjectsDoNotBlock(t *testing.T) {
	l := NewProjectLocker()

	l.Lock("proj-1")
	defer l.Unlock("proj-1")

	done := make(chan struct{})
	go func() {
		l.Lock("proj-2")
		l.Unlock("proj-2")
		close(done)
	}()

	<-done // would deadlock if proj-2 shared proj-1's mutex
}

func TestLockReusesSameMutex(t *testing.T) {
	l := NewProjectLocker()
	if l.get("p") != l.get("p") {
		t.Error("expected the same mutex for repeated lookups")
	}
}

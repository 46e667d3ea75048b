package keylock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocker_SerialisesSameKey(t *testing.T) {
	t.Parallel()

	l := New()
	var (
		wg      sync.WaitGroup
		counter int
	)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("auction1")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	require.Equal(t, 100, counter)
	require.Zero(t, l.Len())
}

func TestLocker_DistinctKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	l := New()
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
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestLocker_UnlockIsIdempotent(t *testing.T) {
	t.Parallel()

	l := New()
	unlock := l.Lock("a")
	unlock()
	unlock()

	require.Zero(t, l.Len())
	relock := l.Lock("a")
	relock()
}

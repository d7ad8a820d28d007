package goroutine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	mu    sync.Mutex
	lines []string
	done  chan struct{}
}

func (c *captureLogger) Errorf(format string, args ...interface{}) {
	c.mu.Lock()
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
	c.mu.Unlock()
	c.done <- struct{}{}
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	l := &captureLogger{done: make(chan struct{}, 1)}
	rh := NewRecoveryHandler(l)

	rh.SafeGo(func() { panic("boom") })

	select {
	case <-l.done:
	case <-time.After(time.Second):
		t.Fatal("panic was not logged")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	require.Len(t, l.lines, 1)
	assert.Contains(t, l.lines[0], "boom")
}

func TestEvery_RunsUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32

	Every(ctx, 10*time.Millisecond, func(context.Context) {
		if atomic.AddInt32(&calls, 1) == 2 {
			panic("second run fails")
		}
	})

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
}

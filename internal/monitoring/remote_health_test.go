package monitoring

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type flakyChecker struct {
	healthy atomic.Bool
	calls   atomic.Int32
}

func (f *flakyChecker) HealthCheck(context.Context) bool {
	f.calls.Add(1)
	return f.healthy.Load()
}

func TestMonitorRemoteHealth(t *testing.T) {
	checker := &flakyChecker{}
	checker.healthy.Store(true)

	var healthy atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		MonitorRemoteHealth(ctx, checker, &healthy, 10*time.Millisecond)
		close(stopped)
	}()

	assert.Eventually(t, healthy.Load, time.Second, 5*time.Millisecond)

	checker.healthy.Store(false)
	assert.Eventually(t, func() bool { return !healthy.Load() }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}

	calls := checker.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, checker.calls.Load())
}

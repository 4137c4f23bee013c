// Package utils holds test helpers shared across packages.
package utils

import (
	"runtime"
	"testing"
	"time"
)

// GoroutineLeakDetector fails a test when goroutines started during it are
// still running at the end
type GoroutineLeakDetector struct {
	t             testing.TB
	baseline      int
	allowedGrowth int
	timeout       time.Duration
	pollInterval  time.Duration
}

// NewGoroutineLeakDetector creates a detector reporting to t
func NewGoroutineLeakDetector(t testing.TB) *GoroutineLeakDetector {
	return &GoroutineLeakDetector{
		t:            t,
		timeout:      2 * time.Second,
		pollInterval: 20 * time.Millisecond,
	}
}

// SetAllowedGrowth sets how many extra goroutines Check tolerates
func (d *GoroutineLeakDetector) SetAllowedGrowth(n int) *GoroutineLeakDetector {
	d.allowedGrowth = n
	return d
}

// SetTimeout sets how long Check waits for goroutines to exit
func (d *GoroutineLeakDetector) SetTimeout(timeout time.Duration) *GoroutineLeakDetector {
	d.timeout = timeout
	return d
}

// Start records the baseline goroutine count
func (d *GoroutineLeakDetector) Start() *GoroutineLeakDetector {
	d.baseline = runtime.NumGoroutine()
	return d
}

// Check waits up to the timeout for the goroutine count to fall back to
// the baseline and reports a leak with all stacks if it does not
func (d *GoroutineLeakDetector) Check() {
	d.t.Helper()

	deadline := time.Now().Add(d.timeout)
	count := runtime.NumGoroutine()
	for count-d.baseline > d.allowedGrowth && time.Now().Before(deadline) {
		time.Sleep(d.pollInterval)
		count = runtime.NumGoroutine()
	}

	if leaked := count - d.baseline; leaked > d.allowedGrowth {
		buf := make([]byte, 1<<20)
		n := runtime.Stack(buf, true)
		d.t.Errorf("goroutine leak: baseline %d, now %d (allowed growth %d)\n%s",
			d.baseline, count, d.allowedGrowth, buf[:n])
	}
}

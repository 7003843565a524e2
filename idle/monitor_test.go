package idle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudopshq/cloudops-go/idle"
	"github.com/stretchr/testify/require"
)

const testTimeout = 40 * time.Millisecond

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestNewMonitorValidation(t *testing.T) {
	_, err := idle.NewMonitor(nil)
	require.Error(t, err)

	_, err = idle.NewMonitor(func() {}, idle.WithTimeout(0))
	require.Error(t, err)
}

func TestExpiresExactlyOnce(t *testing.T) {
	var expirations atomic.Int64
	monitor, err := idle.NewMonitor(func() { expirations.Add(1) }, idle.WithTimeout(testTimeout))
	require.NoError(t, err)

	monitor.Start()
	waitFor(t, func() bool { return expirations.Load() == 1 })

	// Monitor deactivates itself after expiry; no further callbacks
	require.False(t, monitor.Active())
	time.Sleep(3 * testTimeout)
	require.EqualValues(t, 1, expirations.Load())
}

func TestActivityResetsCountdown(t *testing.T) {
	var expirations atomic.Int64
	monitor, err := idle.NewMonitor(func() { expirations.Add(1) }, idle.WithTimeout(100*time.Millisecond))
	require.NoError(t, err)

	monitor.Start()
	for i := 0; i < 5; i++ {
		time.Sleep(30 * time.Millisecond)
		monitor.Activity()
	}
	// Continuous activity kept the session alive well past the timeout
	require.EqualValues(t, 0, expirations.Load())
	require.True(t, monitor.Active())

	monitor.Stop()
}

func TestStopReleasesTimer(t *testing.T) {
	var expirations atomic.Int64
	monitor, err := idle.NewMonitor(func() { expirations.Add(1) }, idle.WithTimeout(testTimeout))
	require.NoError(t, err)

	monitor.Start()
	monitor.Stop()
	require.False(t, monitor.Active())

	time.Sleep(3 * testTimeout)
	require.EqualValues(t, 0, expirations.Load())

	// Stop again is a no-op, and Activity while stopped is ignored
	monitor.Stop()
	monitor.Activity()
}

func TestRestartAfterStop(t *testing.T) {
	var expirations atomic.Int64
	monitor, err := idle.NewMonitor(func() { expirations.Add(1) }, idle.WithTimeout(testTimeout))
	require.NoError(t, err)

	// Session logs out, then logs back in: monitoring resumes fresh
	monitor.Start()
	monitor.Stop()
	monitor.Start()

	waitFor(t, func() bool { return expirations.Load() == 1 })
}

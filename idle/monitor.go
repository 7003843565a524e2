// Package idle forces the session closed after a period with no user input.
package idle

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultTimeout is the idle duration after which the session is ended.
const DefaultTimeout = 15 * time.Minute

// Monitor runs a countdown that any reported activity resets to the full
// timeout. When the countdown expires the expire hook fires exactly once;
// the hook owns the logout, the redirect and the user notification.
//
// The monitor is inert until Start and after Stop: no timers or callbacks
// survive deactivation, and a later Start begins a fresh countdown.
type Monitor struct {
	timeout  time.Duration
	onExpire func()
	logger   zerolog.Logger

	lock   sync.Mutex
	timer  *time.Timer
	active bool
}

// MonitorOption modifies a Monitor during construction.
type MonitorOption func(*Monitor)

// WithTimeout overrides the default idle timeout.
func WithTimeout(timeout time.Duration) MonitorOption {
	return func(m *Monitor) {
		m.timeout = timeout
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger zerolog.Logger) MonitorOption {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// NewMonitor creates a stopped Monitor that calls onExpire when the
// countdown runs out.
func NewMonitor(onExpire func(), options ...MonitorOption) (*Monitor, error) {
	if onExpire == nil {
		return nil, errors.New("[NewMonitor] onExpire is required")
	}

	monitor := &Monitor{
		timeout:  DefaultTimeout,
		onExpire: onExpire,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(monitor)
	}
	if monitor.timeout <= 0 {
		return nil, errors.New("[NewMonitor] timeout must be positive")
	}
	return monitor, nil
}

// Start begins a fresh countdown. Starting an active monitor resets it.
func (m *Monitor) Start() {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.timer != nil {
		m.timer.Stop()
	}
	m.active = true
	m.timer = time.AfterFunc(m.timeout, m.expire)
	m.logger.Debug().Dur("timeout", m.timeout).Msg("inactivity monitor started")
}

// Activity reports user input, resetting the countdown. Ignored while stopped.
func (m *Monitor) Activity() {
	m.lock.Lock()
	defer m.lock.Unlock()

	if !m.active {
		return
	}
	m.timer.Reset(m.timeout)
}

// Stop deactivates the monitor and releases its timer.
func (m *Monitor) Stop() {
	m.lock.Lock()
	defer m.lock.Unlock()

	if !m.active {
		return
	}
	m.active = false
	m.timer.Stop()
	m.timer = nil
	m.logger.Debug().Msg("inactivity monitor stopped")
}

// Active reports whether the countdown is running.
func (m *Monitor) Active() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.active
}

func (m *Monitor) expire() {
	m.lock.Lock()
	if !m.active {
		// Stop raced the timer firing; the session is already torn down.
		m.lock.Unlock()
		return
	}
	m.active = false
	m.timer = nil
	m.lock.Unlock()

	m.logger.Info().Msg("session idle timeout reached")
	m.onExpire()
}

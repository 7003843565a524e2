package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultPollInterval matches the backend's expected refresh cadence.
const DefaultPollInterval = 30 * time.Second

// Poller keeps a local snapshot of the feed by polling on a fixed interval.
// Its lifecycle follows the session: Start on Authenticated, Stop on logout.
// Read updates are applied optimistically so the UI reflects them before
// the next poll confirms.
type Poller struct {
	svc      *Service
	interval time.Duration
	onUpdate func(unread int)
	logger   zerolog.Logger

	lock    sync.Mutex
	items   []Notification
	unread  int
	cancel  context.CancelFunc
	stopped chan struct{}
}

// PollerOption modifies a Poller during construction.
type PollerOption func(*Poller)

// WithInterval overrides the default polling interval.
func WithInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		p.interval = interval
	}
}

// WithUpdateHook registers a callback invoked with the unread count after
// every successful poll.
func WithUpdateHook(fn func(unread int)) PollerOption {
	return func(p *Poller) {
		p.onUpdate = fn
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger zerolog.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// NewPoller creates a stopped Poller.
func NewPoller(svc *Service, options ...PollerOption) (*Poller, error) {
	if svc == nil {
		return nil, errors.New("[NewPoller] notification service is required")
	}

	poller := &Poller{
		svc:      svc,
		interval: DefaultPollInterval,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(poller)
	}
	if poller.interval <= 0 {
		return nil, errors.New("[NewPoller] interval must be positive")
	}
	return poller, nil
}

// Start begins polling immediately and then on every interval tick.
// Starting an already-running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.cancel != nil {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.stopped = make(chan struct{})
	go p.run(ctx, p.stopped)
}

// Stop cancels polling and clears the snapshot, blocking until the polling
// goroutine has exited. Safe to call when already stopped.
func (p *Poller) Stop() {
	p.lock.Lock()
	cancel, stopped := p.cancel, p.stopped
	p.cancel = nil
	p.stopped = nil
	p.items = nil
	p.unread = 0
	p.lock.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

// Snapshot returns the current feed copy and unread count.
func (p *Poller) Snapshot() ([]Notification, int) {
	p.lock.Lock()
	defer p.lock.Unlock()

	items := make([]Notification, len(p.items))
	copy(items, p.items)
	return items, p.unread
}

// MarkRead marks one notification as read, updating the local snapshot
// optimistically before the backend confirms on the next poll.
func (p *Poller) MarkRead(ctx context.Context, id int64) error {
	if err := p.svc.MarkRead(ctx, id); err != nil {
		return err
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	for i := range p.items {
		if p.items[i].ID == id && !p.items[i].IsRead {
			p.items[i].IsRead = true
			if p.unread > 0 {
				p.unread--
			}
		}
	}
	return nil
}

// MarkAllRead marks the whole feed as read with an optimistic local update.
func (p *Poller) MarkAllRead(ctx context.Context) error {
	if err := p.svc.MarkAllRead(ctx); err != nil {
		return err
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	for i := range p.items {
		p.items[i].IsRead = true
	}
	p.unread = 0
	return nil
}

func (p *Poller) run(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)

	p.poll(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll fetches the feed and the unread count. A failed poll keeps the
// previous snapshot; the next tick tries again.
func (p *Poller) poll(ctx context.Context) {
	items, err := p.svc.List(ctx)
	if err != nil {
		p.logger.Debug().Err(err).Msg("notification poll failed")
		return
	}
	unread, err := p.svc.UnreadCount(ctx)
	if err != nil {
		p.logger.Debug().Err(err).Msg("unread count fetch failed")
		return
	}

	p.lock.Lock()
	running := p.cancel != nil
	if running {
		p.items = items
		p.unread = unread
	}
	onUpdate := p.onUpdate
	p.lock.Unlock()

	if running && onUpdate != nil {
		onUpdate(unread)
	}
}

package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/requestctx"
	"go.uber.org/zap"
)

var (
	ErrQueueFull         = errors.New("notification_queue_full")
	ErrDispatcherStopped = errors.New("notification_dispatcher_stopped")
)

type DispatcherConfig struct {
	Workers        int
	QueueSize      int
	DeliverTimeout time.Duration
}

// Dispatcher is a bounded in-process queue drained by a fixed worker pool.
type Dispatcher struct {
	transport Transport
	log       *zap.Logger
	cfg       DispatcherConfig

	queue     chan Event
	mu        sync.RWMutex
	closed    bool
	startOnce sync.Once
	wg        sync.WaitGroup
}

func NewDispatcher(transport Transport, log *zap.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.DeliverTimeout <= 0 {
		cfg.DeliverTimeout = 10 * time.Second
	}
	return &Dispatcher{
		transport: transport,
		log:       log.Named("notification.dispatcher"),
		cfg:       cfg,
		queue:     make(chan Event, cfg.QueueSize),
	}
}

func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		for i := 0; i < d.cfg.Workers; i++ {
			d.wg.Add(1)
			go d.run()
		}
		d.log.Info("notification dispatcher started",
			zap.String("transport", d.transport.Name()),
			zap.Int("workers", d.cfg.Workers),
		)
	})
}

// Notify enqueues event without blocking. A full queue drops the event and
// reports ErrQueueFull.
func (d *Dispatcher) Notify(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = requestctx.RequestIDFromContext(ctx)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherStopped
	}
	select {
	case d.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new events and waits for queued ones to be delivered, or for
// ctx to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.DeliverTimeout)
	defer cancel()

	if err := d.transport.Deliver(ctx, event); err != nil {
		d.log.Warn("notification delivery failed",
			zap.String("type", string(event.Type)),
			zap.String("subject_id", event.SubjectID),
			zap.String("transport", d.transport.Name()),
			zap.Error(err),
		)
		return
	}
	d.log.Debug("notification delivered",
		zap.String("type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
	)
}

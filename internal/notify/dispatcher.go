package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MitulSonagara/blog-backend/internal/domain"
	"github.com/MitulSonagara/blog-backend/pkg/logger"
)

const defaultQueueSize = 256

// Dispatcher fans registration events out to its sinks from a single
// background worker. Publish never blocks: when the queue is full the
// event is dropped and logged, delivery is at most once.
type Dispatcher struct {
	sinks  []Sink
	queue  chan domain.UserRegisteredEvent
	wg     sync.WaitGroup
	closed chan struct{}
	once   sync.Once
}

// NewDispatcher creates a dispatcher and starts its worker
func NewDispatcher(sinks ...Sink) *Dispatcher {
	d := &Dispatcher{
		sinks:  sinks,
		queue:  make(chan domain.UserRegisteredEvent, defaultQueueSize),
		closed: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Publish enqueues an event without blocking the caller
func (d *Dispatcher) Publish(event domain.UserRegisteredEvent) {
	select {
	case <-d.closed:
		logger.Get().Warn("event dispatcher closed, dropping event",
			zap.String("user_id", event.UserID))
	case d.queue <- event:
	default:
		logger.Get().Warn("event queue full, dropping event",
			zap.String("user_id", event.UserID))
	}
}

// Close stops accepting events, drains the queue and waits for the worker
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.closed)
	})
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		case <-d.closed:
			// Drain whatever was enqueued before shutdown.
			for {
				select {
				case event := <-d.queue:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(event domain.UserRegisteredEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, sink := range d.sinks {
		if err := sink.Handle(ctx, event); err != nil {
			logger.Get().Error("event sink failed",
				zap.String("sink", sink.Name()),
				zap.String("user_id", event.UserID),
				zap.Error(err))
		}
	}
}

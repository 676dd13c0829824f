package broadcast

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/race-engineer-go/log"
)

// DefaultSendTimeout is how long a slow listener may block a single message.
const DefaultSendTimeout = 50 * time.Millisecond

// Server distributes every value received from its source to all listeners.
type Server[T any] interface {
	Subscribe() <-chan T
	CancelSubscription(<-chan T)
	Close()
}

type server[T any] struct {
	name           string
	source         <-chan T
	listeners      []chan T
	addListener    chan chan T
	removeListener chan (<-chan T)
	ctx            context.Context
	cancel         context.CancelFunc
	done           chan struct{}
	sendTimeout    time.Duration
	bufferSize     int
	l              *log.Logger
	numRcv         atomic.Int64
	numSnd         atomic.Int64
	numSkip        atomic.Int64
	numListeners   atomic.Int64
}

type Option[T any] func(*server[T])

// WithSendTimeout sets how long delivery to a single listener may block.
func WithSendTimeout[T any](d time.Duration) Option[T] {
	return func(s *server[T]) {
		s.sendTimeout = d
	}
}

// WithBufferSize sets the channel buffer of new subscriptions.
func WithBufferSize[T any](n int) Option[T] {
	return func(s *server[T]) {
		if n >= 0 {
			s.bufferSize = n
		}
	}
}

// NewServer starts serving. The server stops when the source is closed,
// ctx is done or Close is called. All listener channels are closed then.
//
//nolint:whitespace // can't make both editor and linter happy
func NewServer[T any](
	ctx context.Context,
	name string,
	source <-chan T,
	opts ...Option[T],
) Server[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &server[T]{
		name:           name,
		source:         source,
		addListener:    make(chan chan T),
		removeListener: make(chan (<-chan T)),
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
		sendTimeout:    DefaultSendTimeout,
		l:              log.Default().Named("broadcast").With(log.String("name", name)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMetrics()
	go s.serve()
	return s
}

// Subscribe returns a channel receiving all subsequent values.
// If the server is already closed the returned channel is closed.
func (s *server[T]) Subscribe() <-chan T {
	ch := make(chan T, s.bufferSize)
	select {
	case s.addListener <- ch:
	case <-s.done:
		close(ch)
	}
	return ch
}

func (s *server[T]) CancelSubscription(ch <-chan T) {
	select {
	case s.removeListener <- ch:
	case <-s.done:
	}
}

// Close stops the server and waits until all listeners are closed.
func (s *server[T]) Close() {
	s.cancel()
	<-s.done
	s.l.Debug("broadcast server closed",
		log.Int64("rcv", s.numRcv.Load()),
		log.Int64("snd", s.numSnd.Load()),
		log.Int64("skip", s.numSkip.Load()))
}

func (s *server[T]) setupMetrics() {
	meter := otel.GetMeterProvider().Meter(fmt.Sprintf("re.broadcast.%s", s.name))
	register := func(metricName, desc string, value *atomic.Int64) {
		if _, err := meter.Int64ObservableGauge(
			metricName,
			metric.WithDescription(desc),
			metric.WithUnit("{count}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(value.Load(),
					metric.WithAttributes(attribute.String("name", s.name)))
				return nil
			})); err != nil {
			s.l.Error("failed to register metric",
				log.String("metric", metricName),
				log.ErrorField(err))
		}
	}
	register("re.broadcast.rcv", "Number of received messages", &s.numRcv)
	register("re.broadcast.snd", "Number of sent messages", &s.numSnd)
	register("re.broadcast.skip", "Number of skipped messages", &s.numSkip)
	register("re.broadcast.listener", "Number of listeners", &s.numListeners)
}

func (s *server[T]) serve() {
	defer func() {
		for _, listener := range s.listeners {
			close(listener)
		}
		s.listeners = nil
		s.numListeners.Store(0)
		close(s.done)
	}()
	for {
		select {
		case <-s.ctx.Done():
			return
		case ch := <-s.addListener:
			s.listeners = append(s.listeners, ch)
			s.numListeners.Store(int64(len(s.listeners)))
		case ch := <-s.removeListener:
			idx := slices.IndexFunc(s.listeners, func(l chan T) bool {
				return (<-chan T)(l) == ch
			})
			if idx >= 0 {
				close(s.listeners[idx])
				s.listeners = slices.Delete(s.listeners, idx, idx+1)
				s.numListeners.Store(int64(len(s.listeners)))
			}
		case msg, ok := <-s.source:
			if !ok {
				s.l.Debug("source closed")
				return
			}
			s.numRcv.Add(1)
			s.deliver(msg)
		}
	}
}

func (s *server[T]) deliver(msg T) {
	for _, listener := range s.listeners {
		timer := time.NewTimer(s.sendTimeout)
		select {
		case listener <- msg:
			s.numSnd.Add(1)
		case <-timer.C:
			s.numSkip.Add(1)
		case <-s.ctx.Done():
			timer.Stop()
			return
		}
		timer.Stop()
	}
}

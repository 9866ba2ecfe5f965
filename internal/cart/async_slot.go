package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrSlotClosed = errors.New("cart slot closed")

// AsyncSlot makes Save fire-and-forget. A single writer goroutine persists the
// most recent snapshot; snapshots queued while a write is running are coalesced,
// so the last write wins.
type AsyncSlot struct {
	inner Slot
	log   zerolog.Logger

	mu         sync.Mutex
	pending    []byte
	hasPending bool
	closed     bool

	wake  chan struct{}
	flush chan chan struct{}
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once

	// OnError is called from the writer goroutine for every failed write.
	OnError func(error)
}

func NewAsyncSlot(inner Slot) *AsyncSlot {
	s := &AsyncSlot{
		inner: inner,
		log:   log.With().Str("component", "cart_slot").Logger(),
		wake:  make(chan struct{}, 1),
		flush: make(chan chan struct{}),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

// Load returns the queued snapshot if one has not reached the inner slot yet.
func (s *AsyncSlot) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	if s.hasPending {
		b := append([]byte(nil), s.pending...)
		s.mu.Unlock()
		return b, nil
	}
	s.mu.Unlock()
	return s.inner.Load(ctx)
}

func (s *AsyncSlot) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSlotClosed
	}
	s.pending = append([]byte(nil), data...)
	s.hasPending = true
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Flush blocks until every snapshot queued before the call has been written.
func (s *AsyncSlot) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case s.flush <- ack:
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes what is still queued and stops the writer.
func (s *AsyncSlot) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.quit)
	})
	<-s.done
	return nil
}

func (s *AsyncSlot) run() {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
			s.drain()
		case ack := <-s.flush:
			s.drain()
			close(ack)
		case <-s.quit:
			s.drain()
			return
		}
	}
}

func (s *AsyncSlot) drain() {
	for {
		s.mu.Lock()
		if !s.hasPending {
			s.mu.Unlock()
			return
		}
		data := s.pending
		s.pending = nil
		s.hasPending = false
		s.mu.Unlock()

		if err := s.inner.Save(context.Background(), data); err != nil {
			s.log.Warn().Err(err).Msg("cart snapshot write skipped")
			if s.OnError != nil {
				s.OnError(err)
			}
		}
	}
}

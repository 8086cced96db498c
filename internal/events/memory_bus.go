package events

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBus is the in-process Bus used in tests and single-instance runs
// without redis. Same at-least-once contract, same interface.
type MemoryBus struct {
	ch        chan ChangeEvent
	done      chan struct{}
	closeOnce sync.Once
}

func NewMemoryBus(buffer int) *MemoryBus {
	if buffer <= 0 {
		buffer = 256
	}
	return &MemoryBus{
		ch:   make(chan ChangeEvent, buffer),
		done: make(chan struct{}),
	}
}

// Publish enqueues the event. The data channel is never closed, so a
// Publish racing Close observes the done channel instead of panicking.
func (b *MemoryBus) Publish(ctx context.Context, ev ChangeEvent) error {
	select {
	case <-b.done:
		return fmt.Errorf("memory bus closed")
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return fmt.Errorf("memory bus closed")
	case b.ch <- ev:
		return nil
	}
}

func (b *MemoryBus) StartForwarder(ctx context.Context, onEvent func(ev ChangeEvent)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-b.done:
				return
			case ev := <-b.ch:
				onEvent(ev)
			}
		}
	}()
	return nil
}

func (b *MemoryBus) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
	})
	return nil
}

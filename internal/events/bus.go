package events

import (
	"sync"

	"sandwich_platform/internal/store"
)

// Bus provides in-process pub/sub for team message fan-out. Publishing with
// no subscribers is a valid no-op, and slow subscribers never block the
// publisher.
type Bus struct {
	mu   sync.RWMutex
	subs []chan store.Message
}

func NewBus() *Bus { return &Bus{} }

func (b *Bus) Subscribe() <-chan store.Message {
	ch := make(chan store.Message, 16)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, ch)
	return ch
}

func (b *Bus) Publish(msg store.Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

package events

import (
	"testing"

	"sandwich_platform/internal/store"
)

func TestPublishWithoutSubscribers(t *testing.T) {
	b := NewBus()
	// must not panic or block
	b.Publish(store.Message{Sender: "katie", Content: "hello"})
}

func TestPublishFanOut(t *testing.T) {
	b := NewBus()
	first := b.Subscribe()
	second := b.Subscribe()

	b.Publish(store.Message{ID: 7, Content: "drive at noon"})

	for i, ch := range []<-chan store.Message{first, second} {
		select {
		case msg := <-ch:
			if msg.ID != 7 || msg.Content != "drive at noon" {
				t.Fatalf("subscriber %d got %+v", i, msg)
			}
		default:
			t.Fatalf("subscriber %d received nothing", i)
		}
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe()
	for i := 0; i < 32; i++ {
		b.Publish(store.Message{ID: int64(i)})
	}
	// channel buffer is 16; the rest were dropped rather than blocking
	if got := len(ch); got != 16 {
		t.Fatalf("expected full buffer of 16, got %d", got)
	}
}

package events

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	bus := New()

	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Emit(WindowCreated, map[string]interface{}{"id": "notes"})

	select {
	case evt := <-ch:
		if evt.Type != WindowCreated {
			t.Errorf("Expected %s, got %s", WindowCreated, evt.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("Event not delivered")
	}
}

func TestMultipleSubscribers(t *testing.T) {
	bus := New()

	ch1, cancel1 := bus.Subscribe()
	ch2, cancel2 := bus.Subscribe()
	defer cancel1()
	defer cancel2()

	bus.Emit(TaskbarUpdated, nil)

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Type != TaskbarUpdated {
				t.Errorf("Expected %s, got %s", TaskbarUpdated, evt.Type)
			}
		case <-time.After(time.Second):
			t.Fatal("Event not delivered to all subscribers")
		}
	}
}

func TestCancelRemovesSubscriber(t *testing.T) {
	bus := New()

	_, cancel := bus.Subscribe()
	if bus.SubscriberCount() != 1 {
		t.Fatalf("Expected 1 subscriber, got %d", bus.SubscriberCount())
	}

	cancel()
	if bus.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers after cancel, got %d", bus.SubscriberCount())
	}

	// Second cancel must not panic
	cancel()
}

func TestSlowSubscriberDrops(t *testing.T) {
	bus := NewWithBuffer(1)

	_, cancel := bus.Subscribe()
	defer cancel()

	bus.Emit(WindowFocused, nil)
	bus.Emit(WindowFocused, nil)

	if bus.Dropped() != 1 {
		t.Errorf("Expected 1 dropped event, got %d", bus.Dropped())
	}
}

func TestPublishAfterCancel(t *testing.T) {
	bus := New()

	ch, cancel := bus.Subscribe()
	cancel()

	// Must not panic or deliver
	bus.Emit(WindowClosed, nil)

	if _, ok := <-ch; ok {
		t.Error("Cancelled subscriber should see a closed channel")
	}
}

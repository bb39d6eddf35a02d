package notify

import (
	"sync"
	"testing"
	"time"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case evt := <-sub.C():
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus(4)
	sub := bus.Subscribe(SlotChannel("abc"), SessionChannel("s1"))
	defer sub.Close()

	bus.Publish(SlotChannel("abc"), Event{Kind: KindInterface, GameID: "g1"})
	evt := receive(t, sub)
	if evt.Kind != KindInterface || evt.Channel != "slot:abc" || evt.GameID != "g1" {
		t.Errorf("unexpected event %+v", evt)
	}
	if evt.At.IsZero() {
		t.Error("expected publish time to be stamped")
	}

	bus.Publish(SessionChannel("s1"), Event{Kind: KindMessages, Text: "hello"})
	if evt := receive(t, sub); evt.Text != "hello" {
		t.Errorf("unexpected event %+v", evt)
	}
}

func TestBus_OtherChannelsIgnored(t *testing.T) {
	bus := NewBus(4)
	sub := bus.Subscribe(ParticipantChannel("p1"))
	defer sub.Close()

	bus.Publish(ParticipantChannel("p2"), Event{Kind: KindNavigation})
	select {
	case evt := <-sub.C():
		t.Errorf("unexpected event %+v", evt)
	default:
	}
}

func TestBus_FullSubscriberDrops(t *testing.T) {
	bus := NewBus(1)
	sub := bus.Subscribe("c")
	defer sub.Close()

	bus.Publish("c", Event{Kind: KindInterface})
	bus.Publish("c", Event{Kind: KindInterface})

	if got := bus.Dropped(); got != 1 {
		t.Errorf("expected 1 dropped event, got %d", got)
	}
	receive(t, sub)
}

func TestBus_Close(t *testing.T) {
	bus := NewBus(1)
	sub := bus.Subscribe("a", "b")
	if bus.SubscriptionCount("a") != 1 || bus.SubscriptionCount("b") != 1 {
		t.Fatal("expected subscription on both channels")
	}

	sub.Close()
	sub.Close()

	if bus.SubscriptionCount("a") != 0 || bus.SubscriptionCount("b") != 0 {
		t.Error("expected subscription removed")
	}
	if _, ok := <-sub.C(); ok {
		t.Error("expected channel closed")
	}

	// publishing after close must not panic
	bus.Publish("a", Event{Kind: KindInterface})
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(100)
	sub := bus.Subscribe("c")
	defer sub.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				bus.Publish("c", Event{Kind: KindInterface})
			}
		}()
	}
	wg.Wait()

	if got := len(sub.C()) + int(bus.Dropped()); got != 100 {
		t.Errorf("expected 100 deliveries or drops, got %d", got)
	}
}

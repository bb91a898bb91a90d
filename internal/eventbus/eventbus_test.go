package eventbus

import "testing"

func TestPublishSubscribe(t *testing.T) {
	b := New[int]()
	sub := b.Subscribe()
	b.Publish(42)
	if got := <-sub; got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := New[int]()
	sub := b.Subscribe()
	for i := 0; i < 20; i++ {
		b.Publish(i) // must not block once the buffer fills
	}
	n := 0
	for {
		select {
		case <-sub:
			n++
		default:
			if n == 0 || n > 20 {
				t.Fatalf("unexpected delivered count %d", n)
			}
			return
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New[string]()
	sub := b.Subscribe()
	b.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}
	b.Publish("ignored")
}

func TestCloseClosesAllSubscribers(t *testing.T) {
	b := New[int]()
	s1 := b.Subscribe()
	s2 := b.Subscribe()
	b.Close()
	if _, ok := <-s1; ok {
		t.Fatal("expected s1 closed")
	}
	if _, ok := <-s2; ok {
		t.Fatal("expected s2 closed")
	}
	// Publishing and re-closing after Close are no-ops.
	b.Publish(1)
	b.Close()
	if sub := b.Subscribe(); func() bool { _, ok := <-sub; return ok }() {
		t.Fatal("expected subscriptions after Close to come back closed")
	}
}

package multiplayer

import (
	"fmt"
	"sync"
	"testing"
)

func TestChannelSessionDropsOldest(t *testing.T) {
	s := NewChannelSession("s1", 2)
	s.Send(ErrorEvent{Message: "one"})
	s.Send(ErrorEvent{Message: "two"})
	s.Send(ErrorEvent{Message: "three"})

	var got []string
	for _, evt := range drain(s) {
		got = append(got, evt.(ErrorEvent).Message)
	}
	if len(got) != 2 || got[0] != "two" || got[1] != "three" {
		t.Errorf("buffered events = %v, want [two three]", got)
	}
	if s.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", s.Dropped())
	}
}

func TestChannelSessionClose(t *testing.T) {
	s := NewChannelSession("s1", 0)
	s.Close()
	s.Close()

	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed")
	}
	s.Send(ErrorEvent{Message: "late"})
	if events := drain(s); len(events) != 0 {
		t.Errorf("closed session received %v", events)
	}
}

func TestChannelSessionConcurrentSend(t *testing.T) {
	s := NewChannelSession("s1", 4)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				s.Send(ErrorEvent{Message: fmt.Sprint(i, j)})
			}
		}()
	}
	wg.Wait()
	if n := len(drain(s)); n != 4 {
		t.Errorf("%d events queued, want 4", n)
	}
	if s.Dropped() != 8*50-4 {
		t.Errorf("Dropped = %d, want %d", s.Dropped(), 8*50-4)
	}
}

func TestSessionRegistry(t *testing.T) {
	r := NewSessionRegistry()
	r.Register(NewChannelSession("a", 1))
	r.Register(NewChannelSession("b", 1))
	if r.Count() != 2 {
		t.Fatalf("Count = %d", r.Count())
	}
	if s, ok := r.Get("a"); !ok || s.ID() != "a" {
		t.Errorf("Get(a) = %v, %v", s, ok)
	}
	r.Unregister("a")
	if _, ok := r.Get("a"); ok {
		t.Error("a still registered")
	}
}

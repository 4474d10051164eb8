// events/events_test.go
package events

import (
	"sync"
	"testing"
)

func TestTakeClearsExactlyOnce(t *testing.T) {
	var p Pending

	p.Set(EventRadio)
	if !p.Take(EventRadio) {
		t.Fatal("set event not taken")
	}
	if p.Take(EventRadio) {
		t.Fatal("event taken twice")
	}
}

func TestSetsCoalesce(t *testing.T) {
	var p Pending

	p.Set(EventTick)
	p.Set(EventTick)
	p.Set(EventTick)
	if !p.Take(EventTick) {
		t.Fatal("event lost")
	}
	if p.Take(EventTick) {
		t.Fatal("repeated sets did not coalesce")
	}
}

func TestTakeIsIndependentPerEvent(t *testing.T) {
	var p Pending

	p.Set(EventUartRx)
	p.Set(EventGateChange)
	if p.Take(EventRadio) {
		t.Fatal("unrelated event reported pending")
	}
	if !p.Take(EventUartRx) || !p.Take(EventGateChange) {
		t.Fatal("pending events lost")
	}
	if p.Any() {
		t.Fatal("word not empty after draining")
	}
}

func TestDrainOrderAndReraise(t *testing.T) {
	var p Pending

	p.Set(EventTick)
	p.Set(EventUartRx)

	var got []Event
	p.Drain(func(e Event) {
		got = append(got, e)
		if e == EventUartRx {
			// A handler re-raising its own event defers it to the next
			// round rather than looping inside this one.
			p.Set(EventUartRx)
		}
	})

	if len(got) != 2 || got[0] != EventUartRx || got[1] != EventTick {
		t.Fatalf("drained %v", got)
	}
	if !p.Take(EventUartRx) {
		t.Fatal("event raised during drain lost")
	}
}

func TestConcurrentSetters(t *testing.T) {
	var p Pending
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Set(EventRadio)
			p.Set(EventTick)
		}()
	}
	wg.Wait()

	if !p.Take(EventRadio) || !p.Take(EventTick) {
		t.Fatal("concurrent sets lost")
	}
}

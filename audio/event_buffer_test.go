package audio

import (
	"context"
	"testing"
)

func TestEventBufferDrain(t *testing.T) {
	buf := newEventBuffer(8)
	buf.push(event{kind: eventNoteOn, id: 1, note: 60})
	buf.push(event{kind: eventNoteOff, id: 1})

	var events []event
	buf.drain(func(ev event) {
		events = append(events, ev)
	})
	if want, got := 2, len(events); want != got {
		t.Fatalf("expected %v events, got %v", want, got)
	}
	if events[0].note != 60 || events[1].kind != eventNoteOff {
		t.Errorf("events out of order: %+v", events)
	}

	buf.drain(func(ev event) {
		t.Errorf("drained already-consumed event: %+v", ev)
	})
}

func TestEventBufferConcurrent(t *testing.T) {
	buf := newEventBuffer(8)

	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	var events []event
	go func() {
		for {
			select {
			case <-ctx.Done():
				buf.drain(func(ev event) {
					events = append(events, ev)
				})
				done <- struct{}{}
				return
			default:
				buf.drain(func(ev event) {
					events = append(events, ev)
				})
			}
		}
	}()

	const numEvents = 1_000_000
	for n := 0; n < numEvents; n++ {
		buf.push(event{id: n})
	}

	cancel()
	<-done

	if len(events) != numEvents {
		t.Errorf("wrong number of events: want %v, got %v", numEvents, len(events))
	}

	prev := -1
	for _, ev := range events {
		if want, got := prev+1, ev.id; want != got {
			t.Errorf("discontinuous event id: want: %v, got %v", want, got)
		}
		prev++
	}
}

package event

import "testing"

type ping struct{ n int }
type pong struct{ s string }

func TestBusDeliversNextSwapInOrder(t *testing.T) {
	b := NewBus()
	var got []any
	Subscribe(b, func(p ping) { got = append(got, p) })
	Subscribe(b, func(p pong) { got = append(got, p) })

	Emit(b, ping{1})
	Emit(b, pong{"a"})
	Emit(b, ping{2})

	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("events delivered before swap: %v", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	want := []any{ping{1}, pong{"a"}, ping{2}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBusEmitDuringDispatchWaitsForNextFrame(t *testing.T) {
	b := NewBus()
	var pings int
	Subscribe(b, func(p ping) {
		pings++
		if p.n < 3 {
			Emit(b, ping{p.n + 1})
		}
	})

	Emit(b, ping{1})
	for frame := 1; frame <= 3; frame++ {
		b.SwapBuffers()
		b.DispatchAll()
		if pings != frame {
			t.Fatalf("frame %d: pings = %d", frame, pings)
		}
	}
	if b.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", b.Pending())
	}
}

func TestBusUnsubscribedTypeIgnored(t *testing.T) {
	b := NewBus()
	Emit(b, pong{"nobody listens"})
	b.SwapBuffers()
	b.DispatchAll()
}

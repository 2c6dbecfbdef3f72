package input

import (
	"errors"
	"testing"
)

const keySpace = 32

func TestKeyTransitionsAcrossFrames(t *testing.T) {
	s := New()

	s.KeyPressed(keySpace)
	if !s.IsKeyDown(keySpace) || !s.IsKeyJustDown(keySpace) || s.IsKeyJustUp(keySpace) {
		t.Fatal("frame 1: expected down and just-down")
	}

	s.EndFrame()
	if !s.IsKeyDown(keySpace) || s.IsKeyJustDown(keySpace) {
		t.Fatal("frame 2: held key should not be just-down")
	}

	s.KeyReleased(keySpace)
	if s.IsKeyDown(keySpace) || !s.IsKeyJustUp(keySpace) {
		t.Fatal("frame 2: expected just-up after release")
	}

	s.EndFrame()
	if s.IsKeyJustUp(keySpace) {
		t.Fatal("frame 3: just-up must clear after EndFrame")
	}
}

func TestMouseButtonsAndCursor(t *testing.T) {
	s := New()
	s.MouseMoved(10, 20)
	s.EndFrame()

	s.MousePressed(1)
	s.MouseMoved(15, 12)
	s.MouseScrolled(0, 3)

	if !s.IsMouseButtonDown(1) || !s.IsMouseButtonJustDown(1) {
		t.Fatal("button 1 should be just-down")
	}
	if s.MouseX() != 15 || s.MouseY() != 12 {
		t.Fatalf("cursor = (%v, %v)", s.MouseX(), s.MouseY())
	}
	if s.MouseDeltaX() != 5 || s.MouseDeltaY() != -8 {
		t.Fatalf("delta = (%v, %v)", s.MouseDeltaX(), s.MouseDeltaY())
	}
	if s.ScrollDelta() != 3 {
		t.Fatalf("scroll = %v", s.ScrollDelta())
	}

	s.EndFrame()
	s.MouseReleased(1)
	if s.ScrollDelta() != 0 || s.MouseDeltaX() != 0 {
		t.Fatal("EndFrame must reset scroll and cursor delta")
	}
	if !s.IsMouseButtonJustUp(1) {
		t.Fatal("button 1 should be just-up")
	}
}

func TestOutOfRangeCodesReadUp(t *testing.T) {
	s := New()
	s.KeyPressed(-1)
	s.KeyPressed(MaxKeyCode + 1)
	s.MousePressed(MaxMouseButton + 1)
	if s.IsKeyDown(-1) || s.IsKeyDown(MaxKeyCode+1) || s.IsMouseButtonDown(MaxMouseButton+1) {
		t.Fatal("out-of-range codes must read as up")
	}
}

func TestQueriesAfterDisposePanic(t *testing.T) {
	queries := map[string]func(s *State){
		"IsKeyDown":         func(s *State) { s.IsKeyDown(1) },
		"IsKeyJustDown":     func(s *State) { s.IsKeyJustDown(1) },
		"IsKeyJustUp":       func(s *State) { s.IsKeyJustUp(1) },
		"IsMouseButtonDown": func(s *State) { s.IsMouseButtonDown(1) },
		"MouseX":            func(s *State) { s.MouseX() },
		"MouseDeltaY":       func(s *State) { s.MouseDeltaY() },
		"ScrollDelta":       func(s *State) { s.ScrollDelta() },
		"EndFrame":          func(s *State) { s.EndFrame() },
	}
	for name, q := range queries {
		t.Run(name, func(t *testing.T) {
			s := New()
			s.Dispose()
			defer func() {
				rec := recover()
				err, ok := rec.(error)
				if !ok || !errors.Is(err, ErrDisposed) {
					t.Fatalf("recovered %v, want ErrDisposed", rec)
				}
			}()
			q(s)
		})
	}
}

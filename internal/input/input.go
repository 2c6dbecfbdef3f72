// Package input keeps double-buffered keyboard and mouse state for the
// focused window. Window callbacks write the current buffer; EndFrame
// copies it to the previous buffer so "just pressed" queries can compare
// the two.
package input

import (
	"errors"
	"sync"
)

const (
	MaxKeyCode     = 348
	MaxMouseButton = 7
)

// ErrDisposed is the panic value of every query made after Dispose.
var ErrDisposed = errors.New("input already disposed")

// State is safe for window callbacks arriving on another goroutine; the
// mutex guards both buffers.
type State struct {
	mu sync.Mutex

	keys      [MaxKeyCode + 1]bool
	lastKeys  [MaxKeyCode + 1]bool
	mouse     [MaxMouseButton + 1]bool
	lastMouse [MaxMouseButton + 1]bool

	mouseX, mouseY         float64
	lastMouseX, lastMouseY float64
	scroll                 float64

	disposed bool
}

func New() *State {
	return &State{}
}

// ── window side ──

func (s *State) KeyPressed(key int)  { s.setKey(key, true) }
func (s *State) KeyReleased(key int) { s.setKey(key, false) }

func (s *State) MousePressed(button int)  { s.setButton(button, true) }
func (s *State) MouseReleased(button int) { s.setButton(button, false) }

func (s *State) MouseMoved(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mouseX, s.mouseY = x, y
}

// MouseScrolled records the vertical wheel delta for this frame.
func (s *State) MouseScrolled(_, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroll = dy
}

func (s *State) setKey(key int, down bool) {
	if key < 0 || key > MaxKeyCode {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = down
}

func (s *State) setButton(button int, down bool) {
	if button < 0 || button > MaxMouseButton {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mouse[button] = down
}

// ── frame side ──

// EndFrame swaps the buffers. It satisfies the end-of-frame capability so
// the state can be enabled directly on the end-frame stage.
func (s *State) EndFrame() error {
	s.lock()
	defer s.mu.Unlock()
	s.lastKeys = s.keys
	s.lastMouse = s.mouse
	s.lastMouseX, s.lastMouseY = s.mouseX, s.mouseY
	s.scroll = 0
	return nil
}

// Dispose marks the state unusable. Further queries panic with ErrDisposed.
func (s *State) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
}

func (s *State) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

func (s *State) IsKeyDown(key int) bool {
	s.lock()
	defer s.mu.Unlock()
	return inRange(key, MaxKeyCode) && s.keys[key]
}

func (s *State) IsKeyJustDown(key int) bool {
	s.lock()
	defer s.mu.Unlock()
	return inRange(key, MaxKeyCode) && s.keys[key] && !s.lastKeys[key]
}

func (s *State) IsKeyJustUp(key int) bool {
	s.lock()
	defer s.mu.Unlock()
	return inRange(key, MaxKeyCode) && !s.keys[key] && s.lastKeys[key]
}

func (s *State) IsMouseButtonDown(button int) bool {
	s.lock()
	defer s.mu.Unlock()
	return inRange(button, MaxMouseButton) && s.mouse[button]
}

func (s *State) IsMouseButtonJustDown(button int) bool {
	s.lock()
	defer s.mu.Unlock()
	return inRange(button, MaxMouseButton) && s.mouse[button] && !s.lastMouse[button]
}

func (s *State) IsMouseButtonJustUp(button int) bool {
	s.lock()
	defer s.mu.Unlock()
	return inRange(button, MaxMouseButton) && !s.mouse[button] && s.lastMouse[button]
}

func (s *State) MouseX() float64 {
	s.lock()
	defer s.mu.Unlock()
	return s.mouseX
}

func (s *State) MouseY() float64 {
	s.lock()
	defer s.mu.Unlock()
	return s.mouseY
}

func (s *State) MouseDeltaX() float64 {
	s.lock()
	defer s.mu.Unlock()
	return s.mouseX - s.lastMouseX
}

func (s *State) MouseDeltaY() float64 {
	s.lock()
	defer s.mu.Unlock()
	return s.mouseY - s.lastMouseY
}

func (s *State) ScrollDelta() float64 {
	s.lock()
	defer s.mu.Unlock()
	return s.scroll
}

// lock acquires the mutex and panics if the state is disposed. Callers
// release with s.mu.Unlock.
func (s *State) lock() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		panic(ErrDisposed)
	}
}

func inRange(v, limit int) bool {
	return v >= 0 && v <= limit
}

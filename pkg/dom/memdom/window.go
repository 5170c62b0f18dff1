package memdom

import (
	"github.com/vango-dev/tooltip/pkg/dom"
	"github.com/vango-dev/tooltip/pkg/geometry"
)

// Window is the in-memory dom.Window.
type Window struct {
	doc       *Document
	viewport  geometry.Rect
	listeners listenerSet
}

// Viewport implements dom.Window.
func (w *Window) Viewport() geometry.Rect { return w.viewport }

// SetViewport replaces the viewport without dispatching anything.
func (w *Window) SetViewport(r geometry.Rect) { w.viewport = r }

// Listen implements dom.EventTarget.
func (w *Window) Listen(t dom.EventType, fn dom.Listener) func() {
	return w.listeners.add(t, fn)
}

// Dispatch delivers an event of type t to the window listeners.
func (w *Window) Dispatch(t dom.EventType) {
	w.listeners.dispatch(dom.Event{Type: t})
}

// Scroll moves the viewport by (dx, dy) and dispatches scroll.
func (w *Window) Scroll(dx, dy float64) {
	w.viewport = w.viewport.Translate(dx, dy)
	w.Dispatch(dom.EventScroll)
}

// Resize changes the viewport size and dispatches resize.
func (w *Window) Resize(width, height float64) {
	w.viewport.Width = width
	w.viewport.Height = height
	w.Dispatch(dom.EventResize)
}

// Blur dispatches blur.
func (w *Window) Blur() { w.Dispatch(dom.EventBlur) }

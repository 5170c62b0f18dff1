package dom

import (
	"github.com/vango-dev/tooltip/pkg/geometry"
	"github.com/vango-dev/tooltip/pkg/vdom"
)

// EventType names a host event.
type EventType string

const (
	EventPointerEnter EventType = "pointerenter"
	EventPointerLeave EventType = "pointerleave"
	EventClick        EventType = "click"
	EventScroll       EventType = "scroll"
	EventResize       EventType = "resize"
	EventBlur         EventType = "blur"
)

// String returns the event name.
func (t EventType) String() string { return string(t) }

// Event is delivered to listeners by the host dispatcher.
type Event struct {
	Type EventType

	// Target is the element the event was dispatched at. It is nil for
	// window events.
	Target Element

	// Point is the pointer position in page coordinates, when known.
	Point geometry.Point
}

// Listener handles an event.
type Listener func(Event)

// EventTarget is anything listeners can be attached to.
type EventTarget interface {
	// Listen registers fn for events of type t and returns a function that
	// removes it. The release function is idempotent.
	Listen(t EventType, fn Listener) (release func())
}

// Element is a handle to a node in the host document.
type Element interface {
	EventTarget

	// Rect returns the element's bounding rectangle in page coordinates.
	Rect() geometry.Rect

	// Connected reports whether the element is currently in the document.
	Connected() bool

	// Contains reports whether other is this element or one of its descendants.
	Contains(other Element) bool

	// SetStyle sets an inline style property.
	SetStyle(name, value string)

	// RemoveStyle clears an inline style property.
	RemoveStyle(name string)
}

// Window is the top-level browsing context.
type Window interface {
	EventTarget

	// Viewport returns the visible area in page coordinates.
	Viewport() geometry.Rect
}

// Document is the document event target. Click events bubble to it.
type Document interface {
	EventTarget
}

// ElementSpec describes an element subtree to create.
type ElementSpec struct {
	Tag      string
	Class    string
	Content  *vdom.VNode
	Children []ElementSpec

	// Ref, if set, receives the created element.
	Ref func(Element)
}

// Host creates, mounts and unmounts elements, and exposes the window and
// document event targets.
type Host interface {
	// CreateElement builds a detached element subtree from spec and
	// returns its root.
	CreateElement(spec ElementSpec) Element

	// InsertAfter inserts node as the next sibling of anchor.
	InsertAfter(anchor, node Element)

	// Remove detaches node from the document. The node can be inserted again.
	Remove(node Element)

	Window() Window
	Document() Document
}

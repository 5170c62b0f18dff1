package memdom

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/tooltip/pkg/dom"
	"github.com/vango-dev/tooltip/pkg/geometry"
	"github.com/vango-dev/tooltip/pkg/vdom"
)

// Element is an in-memory element.
//
// There is no layout engine: the host sets rectangles explicitly with
// SetRect or SetSize. The left and top inline styles, when given in px,
// move the element in page coordinates, which is how positioned tips end up
// where the controller puts them.
type Element struct {
	doc      *Document
	id       string
	tag      string
	class    string
	content  *vdom.VNode
	parent   *Element
	children []*Element

	rect   geometry.Rect
	styles map[string]string

	listeners listenerSet
}

// ID returns the element id.
func (e *Element) ID() string { return e.id }

// Tag returns the tag name.
func (e *Element) Tag() string { return e.tag }

// Class returns the class attribute.
func (e *Element) Class() string { return e.class }

// Content returns the renderable content the element was created with.
func (e *Element) Content() *vdom.VNode { return e.content }

// Parent returns the parent element, or nil when detached.
func (e *Element) Parent() *Element { return e.parent }

// Children returns a copy of the child list.
func (e *Element) Children() []*Element {
	return append([]*Element(nil), e.children...)
}

// Rect implements dom.Element.
func (e *Element) Rect() geometry.Rect { return e.rect }

// SetRect sets the element's bounding rectangle.
func (e *Element) SetRect(r geometry.Rect) { e.rect = r }

// SetSize sets the element's size, keeping its position.
func (e *Element) SetSize(s geometry.Size) {
	e.rect.Width = s.Width
	e.rect.Height = s.Height
}

// Connected implements dom.Element.
func (e *Element) Connected() bool {
	for cur := e; cur != nil; cur = cur.parent {
		if cur == e.doc.body {
			return true
		}
	}
	return false
}

// Contains implements dom.Element.
func (e *Element) Contains(other dom.Element) bool {
	o, ok := other.(*Element)
	if !ok || o == nil {
		return false
	}
	for cur := o; cur != nil; cur = cur.parent {
		if cur == e {
			return true
		}
	}
	return false
}

// Style returns an inline style property.
func (e *Element) Style(name string) (string, bool) {
	v, ok := e.styles[name]
	return v, ok
}

// StyleNames returns the names of all set style properties, sorted.
func (e *Element) StyleNames() []string {
	names := make([]string, 0, len(e.styles))
	for name := range e.styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetStyle implements dom.Element.
func (e *Element) SetStyle(name, value string) {
	if e.styles == nil {
		e.styles = make(map[string]string)
	}
	e.styles[name] = value

	if px, ok := parsePx(value); ok {
		switch name {
		case "left":
			e.rect.X = px
		case "top":
			e.rect.Y = px
		}
	}
	e.doc.notify(Mutation{Kind: MutationStyle, Target: e, Style: name, Value: value})
}

// RemoveStyle implements dom.Element.
func (e *Element) RemoveStyle(name string) {
	if _, ok := e.styles[name]; !ok {
		return
	}
	delete(e.styles, name)
	e.doc.notify(Mutation{Kind: MutationStyle, Target: e, Style: name, Removed: true})
}

// Listen implements dom.EventTarget.
func (e *Element) Listen(t dom.EventType, fn dom.Listener) func() {
	return e.listeners.add(t, fn)
}

// Dispatch delivers ev to this element's listeners. Click events bubble
// through the ancestors to the document.
func (e *Element) Dispatch(ev dom.Event) {
	if ev.Target == nil {
		ev.Target = e
	}
	e.listeners.dispatch(ev)
	if ev.Type != dom.EventClick {
		return
	}
	for cur := e.parent; cur != nil; cur = cur.parent {
		cur.listeners.dispatch(ev)
	}
	if e.Connected() {
		e.doc.listeners.dispatch(ev)
	}
}

// Click dispatches a click at the center of the element.
func (e *Element) Click() {
	e.Dispatch(dom.Event{Type: dom.EventClick, Point: e.rect.Center()})
}

// elementAt returns the deepest element under p, checking later children
// first since they render on top.
func (e *Element) elementAt(p geometry.Point) *Element {
	if e.rect.IsEmpty() || !e.rect.Contains(p) {
		return nil
	}
	for i := len(e.children) - 1; i >= 0; i-- {
		if hit := e.children[i].elementAt(p); hit != nil {
			return hit
		}
	}
	return e
}

func (e *Element) indexOf(child *Element) int {
	for i, c := range e.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (e *Element) detach() bool {
	if e.parent == nil {
		return false
	}
	p := e.parent
	if i := p.indexOf(e); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	e.parent = nil
	return true
}

func parsePx(v string) (float64, bool) {
	s := strings.TrimSpace(v)
	if !strings.HasSuffix(s, "px") {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// intrinsicSize reads width and height attributes from an svg root.
func intrinsicSize(content *vdom.VNode) (geometry.Size, bool) {
	if content == nil || content.Kind != vdom.KindElement || content.Tag != "svg" {
		return geometry.Size{}, false
	}
	w, okW := number(content.Props["width"])
	h, okH := number(content.Props["height"])
	if !okW || !okH {
		return geometry.Size{}, false
	}
	return geometry.Size{Width: w, Height: h}, true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

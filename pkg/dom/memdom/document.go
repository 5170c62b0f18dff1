package memdom

import (
	"errors"
	"fmt"

	"github.com/vango-dev/tooltip/pkg/dom"
	"github.com/vango-dev/tooltip/pkg/geometry"
)

// MutationKind identifies a document change.
type MutationKind uint8

const (
	MutationInsert MutationKind = iota + 1
	MutationRemove
	MutationStyle
)

// String returns the mutation name.
func (k MutationKind) String() string {
	switch k {
	case MutationInsert:
		return "insert"
	case MutationRemove:
		return "remove"
	case MutationStyle:
		return "style"
	default:
		return "unknown"
	}
}

// Mutation describes one change made through the host interface.
type Mutation struct {
	Kind   MutationKind
	Target *Element

	// After is the sibling the target was inserted after (insert only).
	After *Element

	// Style and Value describe a style change. Removed is true when the
	// property was cleared.
	Style   string
	Value   string
	Removed bool
}

// Stats counts structural mutations.
type Stats struct {
	Inserts int
	Removes int
}

// Document is an in-memory dom.Host.
//
// A Document is not safe for concurrent use. Callers serialize access,
// the same way a browser runs everything on one event loop.
type Document struct {
	body      *Element
	window    *Window
	listeners listenerSet

	seq      int
	elements map[string]*Element

	observers map[int]func(Mutation)
	nextObs   int
	stats     Stats
}

var (
	_ dom.Host     = (*Document)(nil)
	_ dom.Document = (*Document)(nil)
	_ dom.Element  = (*Element)(nil)
	_ dom.Window   = (*Window)(nil)
)

// New creates an empty document with the given viewport.
func New(viewport geometry.Rect) *Document {
	d := &Document{
		elements:  make(map[string]*Element),
		observers: make(map[int]func(Mutation)),
	}
	d.window = &Window{doc: d, viewport: viewport}
	d.body = &Element{doc: d, id: "body", tag: "body"}
	d.elements[d.body.id] = d.body
	return d
}

// Body returns the root element.
func (d *Document) Body() *Element { return d.body }

// NewElement creates a detached element. An empty id is replaced by a
// generated one that is not in use.
func (d *Document) NewElement(tag, id string) *Element {
	for id == "" {
		d.seq++
		id = fmt.Sprintf("el-%d", d.seq)
		if _, taken := d.elements[id]; taken {
			id = ""
		}
	}
	e := &Element{doc: d, id: id, tag: tag}
	d.elements[id] = e
	return e
}

// ErrCycle is returned by Append when child is parent or one of its
// ancestors.
var ErrCycle = errors.New("memdom: element cannot be appended to itself or its descendant")

// Append adds child as the last child of parent without recording a
// mutation. It is used to build the initial page.
func (d *Document) Append(parent, child *Element) error {
	if child.Contains(parent) {
		return ErrCycle
	}
	child.detach()
	child.parent = parent
	parent.children = append(parent.children, child)
	return nil
}

// ByID looks an element up by id.
func (d *Document) ByID(id string) (*Element, bool) {
	e, ok := d.elements[id]
	return e, ok
}

// CreateElement implements dom.Host.
func (d *Document) CreateElement(spec dom.ElementSpec) dom.Element {
	return d.build(spec)
}

func (d *Document) build(spec dom.ElementSpec) *Element {
	e := d.NewElement(spec.Tag, "")
	e.class = spec.Class
	e.content = spec.Content
	if size, ok := intrinsicSize(spec.Content); ok {
		e.SetSize(size)
	}
	for _, child := range spec.Children {
		d.Append(e, d.build(child))
	}
	if spec.Ref != nil {
		spec.Ref(e)
	}
	return e
}

// InsertAfter implements dom.Host. Inserting next to a detached anchor,
// or next to an element inside node, does nothing.
func (d *Document) InsertAfter(anchor, node dom.Element) {
	a, n := d.own(anchor), d.own(node)
	if a.parent == nil || n.Contains(a) {
		return
	}
	n.detach()
	p := a.parent
	i := p.indexOf(a) + 1
	p.children = append(p.children, nil)
	copy(p.children[i+1:], p.children[i:])
	p.children[i] = n
	n.parent = p

	d.stats.Inserts++
	d.notify(Mutation{Kind: MutationInsert, Target: n, After: a})
}

// Remove implements dom.Host. Removing a detached node does nothing.
func (d *Document) Remove(node dom.Element) {
	n := d.own(node)
	if !n.detach() {
		return
	}
	d.stats.Removes++
	d.notify(Mutation{Kind: MutationRemove, Target: n})
}

// Window implements dom.Host.
func (d *Document) Window() dom.Window { return d.window }

// Win returns the concrete window.
func (d *Document) Win() *Window { return d.window }

// Document implements dom.Host.
func (d *Document) Document() dom.Document { return d }

// Listen implements dom.EventTarget.
func (d *Document) Listen(t dom.EventType, fn dom.Listener) func() {
	return d.listeners.add(t, fn)
}

// ElementAt returns the deepest connected element under p, or the body.
func (d *Document) ElementAt(p geometry.Point) *Element {
	for i := len(d.body.children) - 1; i >= 0; i-- {
		if hit := d.body.children[i].elementAt(p); hit != nil {
			return hit
		}
	}
	return d.body
}

// ClickAt dispatches a click at the element under p.
func (d *Document) ClickAt(p geometry.Point) {
	target := d.ElementAt(p)
	target.Dispatch(dom.Event{Type: dom.EventClick, Target: target, Point: p})
}

// Observe registers fn to receive every mutation. The returned function
// unregisters it.
func (d *Document) Observe(fn func(Mutation)) func() {
	id := d.nextObs
	d.nextObs++
	d.observers[id] = fn
	return func() { delete(d.observers, id) }
}

// Stats returns insert and remove counts.
func (d *Document) Stats() Stats { return d.stats }

// ListenerCount returns the number of listeners registered on the
// document, the window and every element ever created.
func (d *Document) ListenerCount() int {
	n := d.listeners.count() + d.window.listeners.count()
	for _, e := range d.elements {
		n += e.listeners.count()
	}
	return n
}

func (d *Document) notify(m Mutation) {
	for _, fn := range d.observers {
		fn(m)
	}
}

func (d *Document) own(e dom.Element) *Element {
	el, ok := e.(*Element)
	if !ok || el == nil || el.doc != d {
		panic(fmt.Sprintf("memdom: element %v does not belong to this document", e))
	}
	return el
}

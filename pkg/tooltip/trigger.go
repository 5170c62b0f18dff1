package tooltip

import (
	"sync"

	"github.com/vango-dev/tooltip/pkg/dom"
)

// bind wires the tooltip's listeners for its trigger mode.
func (t *Tooltip) bind() {
	switch t.ctrl.opts.ShowOn {
	case Click:
		t.bindClick()
	default:
		t.bindHover()
	}
	t.bindShared()
}

func (t *Tooltip) bindHover() {
	t.track(t.anchor.Listen(dom.EventPointerEnter, func(dom.Event) {
		t.ctrl.Show()
	}))
	t.track(t.anchor.Listen(dom.EventPointerLeave, func(dom.Event) {
		t.ctrl.hide(HidePointerLeave)
	}))
}

func (t *Tooltip) bindClick() {
	t.track(t.anchor.Listen(dom.EventClick, func(dom.Event) {
		t.ctrl.Show()
	}))
	t.track(joinOutsideClicks(t.host.Document(), t))
}

// bindShared wires the listeners every tooltip has regardless of trigger.
func (t *Tooltip) bindShared() {
	win := t.host.Window()
	t.track(win.Listen(dom.EventScroll, t.recalc))
	t.track(win.Listen(dom.EventResize, t.recalc))
	t.track(win.Listen(dom.EventBlur, func(dom.Event) {
		t.ctrl.hide(HideBlur)
	}))

	// Every recalculation resolves the container again and moves the
	// scroll listener when the element changed.
	t.ctrl.onContainer = t.watchContainer
	t.watchContainer(t.ctrl.resolveContainer())
}

func (t *Tooltip) recalc(dom.Event) {
	if t.ctrl.State() == Attached {
		t.ctrl.Recalculate()
	}
}

// watchContainer binds the container scroll listener to el, releasing the
// one on the previous container. A nil el only releases.
func (t *Tooltip) watchContainer(el dom.Element) {
	if t.closed || el == t.container {
		return
	}
	t.unwatchContainer()
	if el != nil {
		t.container = el
		t.releaseContainer = el.Listen(dom.EventScroll, t.recalc)
	}
}

func (t *Tooltip) unwatchContainer() {
	if t.releaseContainer != nil {
		t.releaseContainer()
	}
	t.container, t.releaseContainer = nil, nil
}

// handleOutsideClick hides the tooltip when ev landed outside both the
// anchor and the tip.
func (t *Tooltip) handleOutsideClick(ev dom.Event) {
	if t.ctrl.State() != Attached {
		return
	}
	if ev.Target != nil && (t.anchor.Contains(ev.Target) || t.ctrl.tip.Contains(ev.Target)) {
		return
	}
	t.ctrl.hide(HideOutsideClick)
}

// outsideClickHub is the one document click listener shared by every
// Click-mode tooltip of a document.
type outsideClickHub struct {
	doc     dom.Document
	release func()

	mu      sync.Mutex
	members []*Tooltip
}

var outsideClickHubs = struct {
	sync.Mutex
	byDoc map[dom.Document]*outsideClickHub
}{byDoc: make(map[dom.Document]*outsideClickHub)}

// joinOutsideClicks adds t to doc's hub, registering the document listener
// on first use. The returned function leaves the hub and removes the
// listener when t was the last member.
func joinOutsideClicks(doc dom.Document, t *Tooltip) func() {
	outsideClickHubs.Lock()
	hub, ok := outsideClickHubs.byDoc[doc]
	if !ok {
		hub = &outsideClickHub{doc: doc}
		hub.release = doc.Listen(dom.EventClick, hub.dispatch)
		outsideClickHubs.byDoc[doc] = hub
	}
	hub.mu.Lock()
	hub.members = append(hub.members, t)
	hub.mu.Unlock()
	outsideClickHubs.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { hub.leave(t) })
	}
}

func (h *outsideClickHub) leave(t *Tooltip) {
	outsideClickHubs.Lock()
	defer outsideClickHubs.Unlock()

	h.mu.Lock()
	for i, m := range h.members {
		if m == t {
			h.members = append(h.members[:i:i], h.members[i+1:]...)
			break
		}
	}
	empty := len(h.members) == 0
	h.mu.Unlock()

	if empty {
		h.release()
		delete(outsideClickHubs.byDoc, h.doc)
	}
}

func (h *outsideClickHub) dispatch(ev dom.Event) {
	h.mu.Lock()
	members := append([]*Tooltip(nil), h.members...)
	h.mu.Unlock()

	for _, t := range members {
		t.handleOutsideClick(ev)
	}
}

// outsideClickMembers returns how many tooltips share doc's click
// listener, or 0 when doc has none.
func outsideClickMembers(doc dom.Document) int {
	outsideClickHubs.Lock()
	defer outsideClickHubs.Unlock()
	hub, ok := outsideClickHubs.byDoc[doc]
	if !ok {
		return 0
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()
	return len(hub.members)
}

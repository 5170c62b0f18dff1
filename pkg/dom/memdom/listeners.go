package memdom

import "github.com/vango-dev/tooltip/pkg/dom"

type listenerEntry struct {
	fn      dom.Listener
	removed bool
}

// listenerSet holds listeners by event type. Listeners removed during a
// dispatch are not called for the rest of that dispatch.
type listenerSet struct {
	byType map[dom.EventType][]*listenerEntry
}

func (s *listenerSet) add(t dom.EventType, fn dom.Listener) func() {
	if s.byType == nil {
		s.byType = make(map[dom.EventType][]*listenerEntry)
	}
	e := &listenerEntry{fn: fn}
	s.byType[t] = append(s.byType[t], e)

	return func() {
		if e.removed {
			return
		}
		e.removed = true
		entries := s.byType[t]
		for i, cur := range entries {
			if cur == e {
				s.byType[t] = append(entries[:i:i], entries[i+1:]...)
				break
			}
		}
		if len(s.byType[t]) == 0 {
			delete(s.byType, t)
		}
	}
}

func (s *listenerSet) dispatch(ev dom.Event) {
	entries := append([]*listenerEntry(nil), s.byType[ev.Type]...)
	for _, e := range entries {
		if e.removed {
			continue
		}
		e.fn(ev)
	}
}

func (s *listenerSet) count() int {
	n := 0
	for _, entries := range s.byType {
		n += len(entries)
	}
	return n
}

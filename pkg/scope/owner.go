package scope

import (
	"slices"
	"sync"
)

// Owner is a scope that owns resources. Disposing an Owner disposes its
// children and runs its cleanups.
//
// Owners form a tree. Values set on an Owner are visible to all of its
// descendants.
type Owner struct {
	parent *Owner

	mu       sync.Mutex
	children []*Owner
	cleanups []func()
	values   map[any]any
	disposed bool
}

// NewOwner creates an Owner under parent. A nil parent makes a root.
// Creating an Owner under a disposed parent yields an Owner that is
// already disposed.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{parent: parent}
	if parent == nil {
		return o
	}

	parent.mu.Lock()
	if parent.disposed {
		o.disposed = true
	} else {
		parent.children = append(parent.children, o)
	}
	parent.mu.Unlock()
	return o
}

// Parent returns the parent Owner, or nil for a root.
func (o *Owner) Parent() *Owner { return o.parent }

// IsDisposed reports whether Dispose has run.
func (o *Owner) IsDisposed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disposed
}

// OnCleanup registers fn to run on Dispose. On a disposed Owner fn runs
// right away.
func (o *Owner) OnCleanup(fn func()) {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
	o.mu.Unlock()
}

// Dispose disposes the children, newest first, then runs the cleanups in
// reverse registration order. Only the first call does anything.
func (o *Owner) Dispose() {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.disposed = true
	children, cleanups := o.children, o.cleanups
	o.children, o.cleanups = nil, nil
	o.mu.Unlock()

	if p := o.parent; p != nil {
		p.mu.Lock()
		if i := slices.Index(p.children, o); i >= 0 {
			p.children = slices.Delete(p.children, i, i+1)
		}
		p.mu.Unlock()
	}

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// SetValue stores value under key on this Owner.
func (o *Owner) SetValue(key, value any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.values == nil {
		o.values = make(map[any]any)
	}
	o.values[key] = value
}

// Value looks key up on this Owner and then its ancestors.
func (o *Owner) Value(key any) (any, bool) {
	for cur := o; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		v, ok := cur.values[key]
		cur.mu.Unlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

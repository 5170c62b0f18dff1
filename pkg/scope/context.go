package scope

// Context passes a typed value down the owner tree without threading it
// through every call.
type Context[T any] struct {
	key          *contextKey
	defaultValue T
}

type contextKey struct{ name string }

// CreateContext creates a new Context with a default value.
// The name is only used for debugging.
func CreateContext[T any](name string, defaultValue T) *Context[T] {
	return &Context[T]{
		key:          &contextKey{name: name},
		defaultValue: defaultValue,
	}
}

// Provide sets the value for owner and its descendants.
// Providing on a nested owner shadows the value for that subtree only.
func (c *Context[T]) Provide(owner *Owner, value T) {
	if owner == nil {
		return
	}
	owner.SetValue(c.key, value)
}

// Lookup returns the value provided by the nearest ancestor of owner
// (including owner itself) and whether one was found.
func (c *Context[T]) Lookup(owner *Owner) (T, bool) {
	if owner == nil {
		return c.defaultValue, false
	}
	raw, ok := owner.Value(c.key)
	if !ok {
		return c.defaultValue, false
	}
	v, ok := raw.(T)
	if !ok {
		return c.defaultValue, false
	}
	return v, true
}

// Use returns the provided value, or the default value if no ancestor
// provides one.
func (c *Context[T]) Use(owner *Owner) T {
	v, _ := c.Lookup(owner)
	return v
}

// Name returns the debug name of the context.
func (c *Context[T]) Name() string {
	return c.key.name
}

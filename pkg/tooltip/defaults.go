package tooltip

import "github.com/vango-dev/tooltip/pkg/scope"

var defaultsContext = scope.CreateContext[*Options]("tooltip.defaults", nil)

// ProvideDefaults makes o the ambient defaults for every tooltip attached
// under owner. A nested owner can provide its own.
func ProvideDefaults(owner *scope.Owner, o Options) {
	defaultsContext.Provide(owner, &o)
}

// DefaultsFor returns the ambient defaults visible from owner, or nil.
func DefaultsFor(owner *scope.Owner) *Options {
	o, ok := defaultsContext.Lookup(owner)
	if !ok || o == nil {
		return nil
	}
	cp := *o
	return &cp
}

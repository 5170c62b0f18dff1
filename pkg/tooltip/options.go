package tooltip

import (
	"fmt"
	"strings"

	"github.com/vango-dev/tooltip/pkg/dom"
	"github.com/vango-dev/tooltip/pkg/geometry"
	"github.com/vango-dev/tooltip/pkg/vdom"
)

// ShowOn selects the interaction that shows a tooltip.
type ShowOn uint8

const (
	// Hover shows the tooltip while the pointer is over the anchor.
	Hover ShowOn = iota
	// Click shows the tooltip on click and hides it on a click elsewhere.
	Click
)

// String returns "hover" or "click".
func (s ShowOn) String() string {
	switch s {
	case Hover:
		return "hover"
	case Click:
		return "click"
	default:
		return "unknown"
	}
}

// ParseShowOn parses a trigger name. Matching is case-insensitive.
func ParseShowOn(name string) (ShowOn, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hover":
		return Hover, nil
	case "click":
		return Click, nil
	}
	return Hover, fmt.Errorf("tooltip: unknown trigger %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s ShowOn) MarshalText() ([]byte, error) {
	if s > Click {
		return nil, fmt.Errorf("tooltip: invalid trigger %d", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ShowOn) UnmarshalText(text []byte) error {
	v, err := ParseShowOn(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ContainerFunc returns the element that clips the tooltip. It is called on
// every recalculation. A nil func, or a nil result, means the viewport.
type ContainerFunc func() dom.Element

// ContainerOf returns a ContainerFunc that always returns el.
func ContainerOf(el dom.Element) ContainerFunc {
	return func() dom.Element { return el }
}

// Options is a fully resolved tooltip configuration.
type Options struct {
	// Padding is the gap between the anchor and the arrow tip, and the
	// minimum distance kept from the clip edges.
	Padding float64

	// Side is the requested side. The tooltip may flip to the opposite one.
	Side geometry.Side

	ShowOn ShowOn

	// BorderRadius keeps the arrow away from the tooltip's rounded corners.
	BorderRadius float64

	// Class is added to the tooltip element next to "tooltip".
	Class string

	// Arrow is the arrow graphic. Nil means no arrow.
	Arrow *vdom.VNode

	// Container is the clipping element. Nil means the viewport.
	Container ContainerFunc
}

const arrowPath = "M0 6s1.796-.013 4.67-3.615C5.851.9 6.93.006 8 0c1.07-.006 2.148.887 3.343 2.385C14.233 6.005 16 6 16 6H0z"

// DefaultArrow returns the built-in 16x6 arrow. It points up; the
// controller rotates it to face the anchor.
func DefaultArrow() *vdom.VNode {
	return vdom.Svg(
		vdom.Width(16),
		vdom.Height(6),
		vdom.Xmlns("http://www.w3.org/2000/svg"),
		vdom.Path(vdom.D(arrowPath)),
	)
}

// DefaultOptions returns the built-in configuration.
func DefaultOptions() Options {
	return Options{
		Padding:      0,
		Side:         geometry.Top,
		ShowOn:       Hover,
		BorderRadius: 5,
		Class:        "",
		Arrow:        DefaultArrow(),
	}
}

type optional[T any] struct {
	value T
	set   bool
}

func some[T any](v T) optional[T] { return optional[T]{value: v, set: true} }

func (o optional[T]) apply(dst *T) {
	if o.set {
		*dst = o.value
	}
}

// PartialOptions is a call-site configuration. Every field is either set or
// left to the ambient defaults.
//
// Build one with Tip and the With methods. Each method returns an updated
// copy, so a partial can be shared as a base:
//
//	base := tooltip.Text("Saved").WithSide(geometry.Bottom)
//	a := base.WithPadding(4)
//	b := base.WithShowOn(tooltip.Click)
type PartialOptions struct {
	Content *vdom.VNode

	padding      optional[float64]
	side         optional[geometry.Side]
	showOn       optional[ShowOn]
	borderRadius optional[float64]
	class        optional[string]
	arrow        optional[*vdom.VNode]
	container    optional[ContainerFunc]
}

// Tip starts a PartialOptions with the given content and nothing else set.
func Tip(content *vdom.VNode) PartialOptions {
	return PartialOptions{Content: content}
}

// Text is Tip with a text node.
func Text(s string) PartialOptions {
	return Tip(vdom.Text(s))
}

func (p PartialOptions) WithPadding(v float64) PartialOptions {
	p.padding = some(v)
	return p
}

func (p PartialOptions) WithSide(v geometry.Side) PartialOptions {
	p.side = some(v)
	return p
}

func (p PartialOptions) WithShowOn(v ShowOn) PartialOptions {
	p.showOn = some(v)
	return p
}

func (p PartialOptions) WithBorderRadius(v float64) PartialOptions {
	p.borderRadius = some(v)
	return p
}

func (p PartialOptions) WithClass(v string) PartialOptions {
	p.class = some(v)
	return p
}

// WithArrow sets the arrow graphic. A nil arrow explicitly disables it.
func (p PartialOptions) WithArrow(v *vdom.VNode) PartialOptions {
	p.arrow = some(v)
	return p
}

// WithoutArrow disables the arrow.
func (p PartialOptions) WithoutArrow() PartialOptions {
	return p.WithArrow(nil)
}

// WithContainer sets the clipping container. A nil func explicitly selects
// the viewport.
func (p PartialOptions) WithContainer(v ContainerFunc) PartialOptions {
	p.container = some(v)
	return p
}

// FillFrom sets every field from o. Call it first; later With calls still
// override individual fields.
func (p PartialOptions) FillFrom(o Options) PartialOptions {
	p.padding = some(o.Padding)
	p.side = some(o.Side)
	p.showOn = some(o.ShowOn)
	p.borderRadius = some(o.BorderRadius)
	p.class = some(o.Class)
	p.arrow = some(o.Arrow)
	p.container = some(o.Container)
	return p
}

// IsSet reports which fields are set, keyed by field name. It is meant
// for logging and tests.
func (p PartialOptions) IsSet() map[string]bool {
	return map[string]bool{
		"padding":      p.padding.set,
		"side":         p.side.set,
		"showOn":       p.showOn.set,
		"borderRadius": p.borderRadius.set,
		"class":        p.class.set,
		"arrow":        p.arrow.set,
		"container":    p.container.set,
	}
}

// Resolve merges the built-in defaults, the ambient defaults (if any) and
// the call-site override. Later layers replace whole fields.
func Resolve(ambient *Options, override PartialOptions) Options {
	out := DefaultOptions()
	if ambient != nil {
		out = *ambient
	}

	override.padding.apply(&out.Padding)
	override.side.apply(&out.Side)
	override.showOn.apply(&out.ShowOn)
	override.borderRadius.apply(&out.BorderRadius)
	override.class.apply(&out.Class)
	override.arrow.apply(&out.Arrow)
	override.container.apply(&out.Container)
	return out
}

package tooltip

import (
	"strconv"

	errs "github.com/vango-dev/tooltip/internal/errors"
	"github.com/vango-dev/tooltip/pkg/geometry"
)

// ErrNotMeasured is returned by Place when the tip or its arrow has no size
// yet. Callers skip the recalculation and wait for the next event.
var ErrNotMeasured = errs.New("T010")

// Measurements are the rectangles Place works from, all in page coordinates.
type Measurements struct {
	Anchor   geometry.Rect
	Tip      geometry.Size
	Arrow    geometry.Size
	Viewport geometry.Rect

	// Container is nil when the viewport is the clip region.
	Container *geometry.Rect
}

// Placement is the outcome of one recalculation.
type Placement struct {
	// Rect is where the tip goes.
	Rect geometry.Rect

	// Side is where the tip ended up; Requested is what the options asked for.
	Side      geometry.Side
	Requested geometry.Side

	// Clip is the region the tip was kept inside.
	Clip geometry.Rect

	// Degraded is true when a container was given but did not overlap the
	// viewport, so the viewport was used instead.
	Degraded bool

	// Arrow holds the arrow edge offsets in application order. Empty when
	// no arrow is configured.
	Arrow         []geometry.EdgeOffset
	ArrowRotation float64

	// BorderRadius is the corner rounding the arrow was clamped against.
	BorderRadius float64
}

// Flipped reports whether the tip moved off the requested side.
func (p Placement) Flipped() bool {
	return p.Side != p.Requested
}

// Style is one inline style property.
type Style struct {
	Name  string
	Value string
}

// TipStyles returns the styles that position and round the tip.
func (p Placement) TipStyles() []Style {
	return []Style{
		{Name: "left", Value: px(p.Rect.X)},
		{Name: "top", Value: px(p.Rect.Y)},
		{Name: "border-radius", Value: px(p.BorderRadius)},
	}
}

// ArrowStyles returns the edge offsets and rotation for the arrow, or nil
// when there is no arrow.
func (p Placement) ArrowStyles() []Style {
	if len(p.Arrow) == 0 {
		return nil
	}
	out := make([]Style, 0, len(p.Arrow)+1)
	for _, e := range p.Arrow {
		out = append(out, Style{Name: e.Edge.String(), Value: px(e.Value)})
	}
	out = append(out, Style{
		Name:  "transform",
		Value: "rotate(" + strconv.FormatFloat(p.ArrowRotation, 'f', -1, 64) + "deg)",
	})
	return out
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// ClipRegion returns the region a tip must stay inside: the container
// clipped to the viewport, or the viewport alone. degraded is true when a
// container was given but does not overlap the viewport.
func ClipRegion(viewport geometry.Rect, container *geometry.Rect) (clip geometry.Rect, degraded bool) {
	if container == nil {
		return viewport, false
	}
	clip = container.Intersect(viewport)
	if clip.IsEmpty() {
		return viewport, true
	}
	return clip, false
}

// Pipeline returns the modifiers for opts, in the order they must run:
// Offset, Flip, Shift, and Arrow when an arrow is configured. arrow is the
// measured arrow size and is ignored without an arrow.
func Pipeline(opts Options, arrow geometry.Size) []geometry.Modifier {
	var arrowW, arrowH float64
	if opts.Arrow != nil {
		arrowW, arrowH = arrow.Width, arrow.Height
	}

	mods := []geometry.Modifier{
		geometry.Offset(opts.Padding + arrowH),
		geometry.Flip(2*opts.Padding + arrowH),
		geometry.Shift(opts.Padding, arrowW/2+opts.BorderRadius),
	}
	if opts.Arrow != nil {
		mods = append(mods, geometry.Arrow(arrow, opts.BorderRadius))
	}
	return mods
}

// Place computes where the tip and its arrow go. It returns ErrNotMeasured
// when the tip, or a configured arrow, has no size yet.
func Place(opts Options, m Measurements) (Placement, error) {
	if m.Tip.IsEmpty() {
		return Placement{}, ErrNotMeasured
	}
	if opts.Arrow != nil && m.Arrow.IsEmpty() {
		return Placement{}, ErrNotMeasured
	}

	clip, degraded := ClipRegion(m.Viewport, m.Container)
	res := geometry.ComputePosition(m.Anchor, m.Tip, clip, opts.Side, Pipeline(opts, m.Arrow)...)

	p := Placement{
		Rect:         res.Rect,
		Side:         res.Side,
		Requested:    opts.Side,
		Clip:         clip,
		Degraded:     degraded,
		BorderRadius: opts.BorderRadius,
	}
	if res.Arrow != nil {
		p.Arrow = res.Arrow.Offsets
		p.ArrowRotation = res.Arrow.Rotation
	}
	return p, nil
}

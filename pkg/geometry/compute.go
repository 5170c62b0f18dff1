package geometry

// Result is the output of ComputePosition.
type Result struct {
	// Rect is the final tip rectangle. Width and Height are the measured size.
	Rect Rect

	// Side is where the tip ended up. It differs from the requested side
	// when a Flip modifier moved it.
	Side Side

	// Arrow is nil unless an Arrow modifier ran.
	Arrow *ArrowData
}

// Flipped reports whether the tip ended up on a different side than requested.
func (r Result) Flipped(requested Side) bool {
	return r.Side != requested
}

// ComputePosition places a tip of the given size next to anchor on side,
// then runs modifiers in order. All rectangles share one coordinate space.
//
// It is pure: inputs are never modified and the same inputs always produce
// the same result. A clip region smaller than the tip is not an error; the
// modifiers fall back to a best-effort placement.
func ComputePosition(anchor Rect, tip Size, clip Rect, side Side, modifiers ...Modifier) Result {
	s := &State{
		Anchor:    anchor,
		Tip:       tip,
		Clip:      clip,
		Requested: side,
	}
	s.reset(side)

	for _, m := range modifiers {
		if m == nil {
			continue
		}
		m.Apply(s)
	}

	return Result{
		Rect:  s.Rect(),
		Side:  s.Side,
		Arrow: s.Arrow,
	}
}

// Space returns the room between the anchor and the clip edge on side.
func Space(anchor, clip Rect, side Side) float64 {
	switch side {
	case Top:
		return anchor.Top() - clip.Top()
	case Bottom:
		return clip.Bottom() - anchor.Bottom()
	case Left:
		return anchor.Left() - clip.Left()
	default:
		return clip.Right() - anchor.Right()
	}
}

// basePosition centers the tip on the anchor's cross axis, flush against
// the anchor on side.
func basePosition(anchor Rect, tip Size, side Side) (x, y float64) {
	c := anchor.Center()
	switch side {
	case Top:
		return c.X - tip.Width/2, anchor.Top() - tip.Height
	case Bottom:
		return c.X - tip.Width/2, anchor.Bottom()
	case Left:
		return anchor.Left() - tip.Width, c.Y - tip.Height/2
	default:
		return anchor.Right(), c.Y - tip.Height/2
	}
}

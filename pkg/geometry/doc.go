// Package geometry computes where a floating element goes relative to an
// anchor rectangle.
//
// A placement starts flush against the anchor on the requested side,
// centered on the cross axis, and is then refined by an ordered list of
// modifiers:
//
//   - Offset pushes the element away from the anchor.
//   - Flip switches to the opposite side when the requested one is too tight.
//   - Shift slides the element along the cross axis to stay in the clip region.
//   - Arrow computes where an arrow should sit so it points at the anchor.
//
// The order matters. Flip rebuilds the placement on the new side, so a
// Shift that runs before it is lost.
//
// Usage:
//
//	res := geometry.ComputePosition(anchor, tipSize, viewport, geometry.Bottom,
//	    geometry.Offset(8),
//	    geometry.Flip(16),
//	    geometry.Shift(8, 5),
//	)
//	fmt.Println(res.Side, res.Rect.X, res.Rect.Y)
package geometry

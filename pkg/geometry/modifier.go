package geometry

// Kind identifies a modifier in a pipeline.
type Kind uint8

const (
	KindOffset Kind = iota + 1
	KindFlip
	KindShift
	KindArrow
)

// String returns a human-readable name for the modifier kind.
func (k Kind) String() string {
	switch k {
	case KindOffset:
		return "Offset"
	case KindFlip:
		return "Flip"
	case KindShift:
		return "Shift"
	case KindArrow:
		return "Arrow"
	default:
		return "Unknown"
	}
}

// State is the placement being built by a modifier pipeline.
// Modifiers read the inputs and update X, Y, Side and Arrow in place.
type State struct {
	// Inputs. Never modified by modifiers.
	Anchor    Rect
	Tip       Size
	Clip      Rect
	Requested Side

	// Side is the side the tip currently sits on.
	Side Side

	// X and Y are the top-left corner of the tip.
	X float64
	Y float64

	// MainOffset is the accumulated distance the tip was pushed away from
	// the anchor. Flip re-applies it after switching sides.
	MainOffset float64

	// Arrow is set by the Arrow modifier.
	Arrow *ArrowData
}

// Rect returns the current tip rectangle.
func (s *State) Rect() Rect {
	return Rect{X: s.X, Y: s.Y, Width: s.Tip.Width, Height: s.Tip.Height}
}

func (s *State) moveMain(d float64) {
	delta := d * s.Side.sign()
	if s.Side.Axis() == AxisX {
		s.X += delta
	} else {
		s.Y += delta
	}
}

func (s *State) cross() float64 {
	if s.Side.CrossAxis() == AxisX {
		return s.X
	}
	return s.Y
}

func (s *State) setCross(v float64) {
	if s.Side.CrossAxis() == AxisX {
		s.X = v
	} else {
		s.Y = v
	}
}

func (s *State) reset(side Side) {
	s.Side = side
	s.X, s.Y = basePosition(s.Anchor, s.Tip, side)
}

// Modifier adjusts a placement. Modifiers run in pipeline order and each
// sees the state left by the previous one.
type Modifier interface {
	Kind() Kind
	Apply(s *State)
}

// OffsetModifier pushes the tip away from the anchor along the main axis.
type OffsetModifier struct {
	Distance float64
}

// Offset creates an OffsetModifier.
func Offset(distance float64) OffsetModifier {
	return OffsetModifier{Distance: distance}
}

// Kind implements Modifier.
func (OffsetModifier) Kind() Kind { return KindOffset }

// Apply implements Modifier.
func (m OffsetModifier) Apply(s *State) {
	s.MainOffset += m.Distance
	s.moveMain(m.Distance)
}

// FlipModifier moves the tip to the opposite side when the current side
// does not have room for it and the opposite side has more.
//
// Flipping recomputes the base placement on the new side and re-applies the
// main offset. Cross-axis adjustments made before the flip are discarded.
type FlipModifier struct {
	// Padding is the main-axis room required in addition to the tip itself.
	Padding float64
}

// Flip creates a FlipModifier.
func Flip(padding float64) FlipModifier {
	return FlipModifier{Padding: padding}
}

// Kind implements Modifier.
func (FlipModifier) Kind() Kind { return KindFlip }

// Apply implements Modifier.
func (m FlipModifier) Apply(s *State) {
	need := s.Tip.Along(s.Side.Axis()) + m.Padding
	have := Space(s.Anchor, s.Clip, s.Side)
	if need <= have {
		return
	}
	opposite := s.Side.Opposite()
	if Space(s.Anchor, s.Clip, opposite) <= have {
		return
	}
	s.reset(opposite)
	s.moveMain(s.MainOffset)
}

// ShiftModifier slides the tip along the cross axis to keep it inside the
// clip region. It never changes the side.
type ShiftModifier struct {
	// Padding is the minimum distance kept from the clip edges.
	Padding float64

	// Limit is the minimum distance kept between the anchor's center and
	// either end of the tip, so an arrow still fits next to the corners.
	Limit float64
}

// Shift creates a ShiftModifier.
func Shift(padding, limit float64) ShiftModifier {
	return ShiftModifier{Padding: padding, Limit: limit}
}

// Kind implements Modifier.
func (ShiftModifier) Kind() Kind { return KindShift }

// Apply implements Modifier.
func (m ShiftModifier) Apply(s *State) {
	axis := s.Side.CrossAxis()
	size := s.Tip.Along(axis)
	pos := s.cross()

	center := s.Anchor.Mid(axis)
	if lo, hi := center-size+m.Limit, center-m.Limit; lo <= hi {
		pos = clamp(pos, lo, hi)
	}

	// The clip clamp runs last so the tip never leaves the clip region.
	lo := s.Clip.Start(axis) + m.Padding
	hi := s.Clip.End(axis) - m.Padding - size
	if hi < lo {
		pos = lo
	} else {
		pos = clamp(pos, lo, hi)
	}
	s.setCross(pos)
}

// ArrowData describes where the arrow sits on the final placement.
type ArrowData struct {
	// Cross is the arrow's offset from the tip's leading cross edge.
	Cross float64

	// Offsets are CSS edge offsets for the arrow node, in application order.
	Offsets []EdgeOffset

	// Rotation is the clockwise rotation in degrees of an arrow graphic that
	// points up when unrotated.
	Rotation float64
}

// EdgeOffset pins an element edge at a distance, like a CSS inset property.
type EdgeOffset struct {
	Edge  Side
	Value float64
}

// ArrowModifier aligns an arrow with the anchor's center.
type ArrowModifier struct {
	// Size is the unrotated arrow size: Width is the base, Height the length.
	Size Size

	// Radius keeps the arrow clear of the tip's rounded corners.
	Radius float64
}

// Arrow creates an ArrowModifier.
func Arrow(size Size, radius float64) ArrowModifier {
	return ArrowModifier{Size: size, Radius: radius}
}

// Kind implements Modifier.
func (ArrowModifier) Kind() Kind { return KindArrow }

// Apply implements Modifier.
func (m ArrowModifier) Apply(s *State) {
	axis := s.Side.CrossAxis()
	size := s.Tip.Along(axis)

	offset := s.Anchor.Mid(axis) - s.cross() - m.Size.Width/2
	lo, hi := m.Radius, size-m.Radius-m.Size.Width
	if hi < lo {
		// Not enough room to respect the corners: center it.
		offset = (size - m.Size.Width) / 2
		if offset < 0 {
			offset = 0
		}
	} else {
		offset = clamp(offset, lo, hi)
	}

	edge := Left
	if axis == AxisY {
		edge = Top
	}
	s.Arrow = &ArrowData{
		Cross: offset,
		Offsets: []EdgeOffset{
			{Edge: edge, Value: offset},
			{Edge: s.Side.Opposite(), Value: -m.Size.Height},
		},
		Rotation: arrowRotation(s.Side),
	}
}

func arrowRotation(side Side) float64 {
	switch side {
	case Top:
		return 180
	case Right:
		return 270
	case Left:
		return 90
	default:
		return 0
	}
}

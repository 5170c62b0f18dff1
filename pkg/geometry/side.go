package geometry

import (
	"fmt"
	"strings"
)

// Axis is one of the two screen axes.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

// Cross returns the orthogonal axis.
func (a Axis) Cross() Axis {
	if a == AxisX {
		return AxisY
	}
	return AxisX
}

// String returns "x" or "y".
func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}
	return "y"
}

// Side is the side of the anchor a floating element is placed on.
// The zero value is Top.
type Side uint8

const (
	Top Side = iota
	Right
	Bottom
	Left
)

// Sides lists every side in clockwise order starting at Top.
var Sides = [...]Side{Top, Right, Bottom, Left}

// String returns the lowercase CSS name of the side.
func (s Side) String() string {
	switch s {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// Opposite returns the side across the anchor.
func (s Side) Opposite() Side {
	switch s {
	case Top:
		return Bottom
	case Bottom:
		return Top
	case Left:
		return Right
	default:
		return Left
	}
}

// Axis returns the main axis: the axis the floating element moves along
// when it is pushed away from the anchor.
func (s Side) Axis() Axis {
	if s == Left || s == Right {
		return AxisX
	}
	return AxisY
}

// CrossAxis returns the axis the floating element slides along.
func (s Side) CrossAxis() Axis {
	return s.Axis().Cross()
}

// sign is -1 for sides that grow toward smaller coordinates.
func (s Side) sign() float64 {
	if s == Top || s == Left {
		return -1
	}
	return 1
}

// ParseSide parses a side name. Matching is case-insensitive.
func ParseSide(name string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "top":
		return Top, nil
	case "right":
		return Right, nil
	case "bottom":
		return Bottom, nil
	case "left":
		return Left, nil
	}
	return Top, fmt.Errorf("geometry: unknown side %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) {
	if s > Left {
		return nil, fmt.Errorf("geometry: invalid side %d", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(text []byte) error {
	side, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = side
	return nil
}

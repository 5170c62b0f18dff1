package geometry

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func TestRectEdges(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}

	if r.Left() != 10 || r.Top() != 20 || r.Right() != 40 || r.Bottom() != 60 {
		t.Errorf("edges = %v %v %v %v, want 10 20 40 60", r.Left(), r.Top(), r.Right(), r.Bottom())
	}
	if c := r.Center(); c != (Point{X: 25, Y: 40}) {
		t.Errorf("Center() = %v, want {25 40}", c)
	}
	if got := RectFromLTRB(10, 20, 40, 60); got != r {
		t.Errorf("RectFromLTRB() = %v, want %v", got, r)
	}
}

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"overlap", Rect{0, 0, 100, 100}, Rect{50, 50, 100, 100}, Rect{50, 50, 50, 50}},
		{"contained", Rect{0, 0, 100, 100}, Rect{10, 10, 20, 20}, Rect{10, 10, 20, 20}},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 10, 10}, Rect{}},
		{"touching", Rect{0, 0, 10, 10}, Rect{10, 0, 10, 10}, Rect{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersect(tt.b); got != tt.want {
				t.Errorf("Intersect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if !r.Contains(Point{5, 5}) {
		t.Error("expected center to be contained")
	}
	if !r.Contains(Point{10, 10}) {
		t.Error("expected edges to be inclusive")
	}
	if r.Contains(Point{11, 5}) {
		t.Error("expected point outside to not be contained")
	}
}

func TestSide(t *testing.T) {
	tests := []struct {
		side     Side
		name     string
		opposite Side
		axis     Axis
	}{
		{Top, "top", Bottom, AxisY},
		{Right, "right", Left, AxisX},
		{Bottom, "bottom", Top, AxisY},
		{Left, "left", Right, AxisX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.side.String() != tt.name {
				t.Errorf("String() = %q, want %q", tt.side.String(), tt.name)
			}
			if tt.side.Opposite() != tt.opposite {
				t.Errorf("Opposite() = %v, want %v", tt.side.Opposite(), tt.opposite)
			}
			if tt.side.Axis() != tt.axis {
				t.Errorf("Axis() = %v, want %v", tt.side.Axis(), tt.axis)
			}
			if tt.side.CrossAxis() == tt.axis {
				t.Errorf("CrossAxis() = %v, should differ from main axis", tt.side.CrossAxis())
			}
			parsed, err := ParseSide(tt.name)
			if err != nil || parsed != tt.side {
				t.Errorf("ParseSide(%q) = %v, %v", tt.name, parsed, err)
			}
		})
	}

	if _, err := ParseSide("middle"); err == nil {
		t.Error("ParseSide(middle) should fail")
	}
}

func TestSideJSON(t *testing.T) {
	type wrapper struct {
		Side Side `json:"side"`
	}

	data, err := json.Marshal(wrapper{Side: Left})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"side":"left"}` {
		t.Errorf("Marshal() = %s", data)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"side":"BOTTOM"}`), &w); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if w.Side != Bottom {
		t.Errorf("Side = %v, want bottom", w.Side)
	}
}

func TestComputePositionBase(t *testing.T) {
	anchor := Rect{X: 100, Y: 100, Width: 50, Height: 20}
	tip := Size{Width: 40, Height: 10}
	clip := Rect{X: 0, Y: 0, Width: 800, Height: 600}

	tests := []struct {
		side Side
		x, y float64
	}{
		{Top, 105, 85},
		{Bottom, 105, 125},
		{Left, 55, 105},
		{Right, 155, 105},
	}

	for _, tt := range tests {
		t.Run(tt.side.String(), func(t *testing.T) {
			res := ComputePosition(anchor, tip, clip, tt.side, Offset(5))
			if res.Rect.X != tt.x || res.Rect.Y != tt.y {
				t.Errorf("position = (%v, %v), want (%v, %v)", res.Rect.X, res.Rect.Y, tt.x, tt.y)
			}
			if res.Rect.Size() != tip {
				t.Errorf("size = %v, want %v", res.Rect.Size(), tip)
			}
			if res.Side != tt.side {
				t.Errorf("Side = %v, want %v", res.Side, tt.side)
			}
		})
	}
}

func TestFlipToTopNearBottomEdge(t *testing.T) {
	clip := Rect{X: 0, Y: 0, Width: 400, Height: 300}
	anchor := Rect{X: 180, Y: 260, Width: 40, Height: 20}
	tip := Size{Width: 100, Height: 40}

	res := ComputePosition(anchor, tip, clip, Bottom, Offset(4), Flip(8), Shift(4, 5))

	if res.Side != Top {
		t.Fatalf("Side = %v, want top", res.Side)
	}
	if !res.Flipped(Bottom) {
		t.Error("Flipped() = false, want true")
	}
	want := Rect{X: 150, Y: 216, Width: 100, Height: 40}
	if res.Rect != want {
		t.Errorf("Rect = %v, want %v", res.Rect, want)
	}
}

func TestFlipStaysWhenOppositeIsTighter(t *testing.T) {
	clip := Rect{X: 0, Y: 0, Width: 400, Height: 60}
	anchor := Rect{X: 180, Y: 20, Width: 40, Height: 20}
	tip := Size{Width: 100, Height: 40}

	res := ComputePosition(anchor, tip, clip, Bottom, Offset(4), Flip(8))
	if res.Side != Bottom {
		t.Errorf("Side = %v, want bottom (equal space should not flip)", res.Side)
	}
}

func TestFlipNotNeeded(t *testing.T) {
	clip := Rect{X: 0, Y: 0, Width: 400, Height: 300}
	anchor := Rect{X: 180, Y: 100, Width: 40, Height: 20}

	res := ComputePosition(anchor, Size{100, 40}, clip, Bottom, Offset(4), Flip(8))
	if res.Side != Bottom {
		t.Errorf("Side = %v, want bottom", res.Side)
	}
}

func TestShiftKeepsInsideClip(t *testing.T) {
	clip := Rect{X: 0, Y: 0, Width: 800, Height: 600}
	anchor := Rect{X: 760, Y: 300, Width: 30, Height: 20}
	tip := Size{Width: 100, Height: 30}
	padding := 4.0

	res := ComputePosition(anchor, tip, clip, Top,
		Offset(padding+6), Flip(2*padding+6), Shift(padding, 8+5), Arrow(Size{16, 6}, 5))

	if right := res.Rect.Right(); right > clip.Right()-padding {
		t.Errorf("tip right edge = %v, exceeds %v", right, clip.Right()-padding)
	}
	if res.Rect.X != 696 {
		t.Errorf("X = %v, want 696", res.Rect.X)
	}
	if res.Side != Top {
		t.Errorf("Side = %v, shift must never change side", res.Side)
	}
}

func TestShiftLeftEdgeAndVerticalAxis(t *testing.T) {
	clip := Rect{X: 0, Y: 0, Width: 800, Height: 600}

	res := ComputePosition(Rect{X: 2, Y: 300, Width: 10, Height: 20}, Size{100, 30}, clip, Bottom, Shift(4, 0))
	if res.Rect.X != 4 {
		t.Errorf("X = %v, want 4", res.Rect.X)
	}

	res = ComputePosition(Rect{X: 300, Y: 590, Width: 20, Height: 8}, Size{60, 100}, clip, Right, Shift(4, 0))
	if res.Rect.Bottom() > 596 {
		t.Errorf("Bottom = %v, exceeds 596", res.Rect.Bottom())
	}
	if res.Rect.X != 320 {
		t.Errorf("X = %v, shift on a side placement must keep the main axis", res.Rect.X)
	}
}

func TestShiftLimitKeepsAnchorUnderTip(t *testing.T) {
	// Clip is wide, but the requested cross position is pulled by a
	// previous modifier; the limiter keeps the anchor center within reach.
	clip := Rect{X: -1000, Y: -1000, Width: 3000, Height: 3000}
	anchor := Rect{X: 500, Y: 500, Width: 10, Height: 10}
	s := &State{Anchor: anchor, Tip: Size{100, 20}, Clip: clip, Requested: Top}
	s.reset(Top)
	s.X = 0

	Shift(0, 13).Apply(s)
	if want := 505.0 - 100 + 13; s.X != want {
		t.Errorf("X = %v, want %v", s.X, want)
	}
}

func TestPipelineOrderMatters(t *testing.T) {
	clip := Rect{X: 0, Y: 0, Width: 400, Height: 300}
	anchor := Rect{X: 360, Y: 260, Width: 30, Height: 20}
	tip := Size{Width: 100, Height: 40}

	flipThenShift := ComputePosition(anchor, tip, clip, Bottom, Offset(4), Flip(8), Shift(4, 5))
	shiftThenFlip := ComputePosition(anchor, tip, clip, Bottom, Offset(4), Shift(4, 5), Flip(8))

	if flipThenShift.Rect == shiftThenFlip.Rect {
		t.Fatalf("expected different results, both = %v", flipThenShift.Rect)
	}
	if flipThenShift.Rect.X != 296 {
		t.Errorf("Flip→Shift X = %v, want 296", flipThenShift.Rect.X)
	}
	if shiftThenFlip.Rect.X != 325 {
		t.Errorf("Shift→Flip X = %v, want 325", shiftThenFlip.Rect.X)
	}
}

func TestArrowPlacement(t *testing.T) {
	clip := Rect{X: 0, Y: 0, Width: 400, Height: 300}
	anchor := Rect{X: 360, Y: 260, Width: 30, Height: 20}
	tip := Size{Width: 100, Height: 40}

	res := ComputePosition(anchor, tip, clip, Bottom, Offset(4), Flip(8), Shift(4, 5), Arrow(Size{16, 6}, 5))
	if res.Arrow == nil {
		t.Fatal("Arrow = nil")
	}

	want := &ArrowData{
		Cross: 71,
		Offsets: []EdgeOffset{
			{Edge: Left, Value: 71},
			{Edge: Bottom, Value: -6},
		},
		Rotation: 180,
	}
	if !reflect.DeepEqual(res.Arrow, want) {
		t.Errorf("Arrow = %+v, want %+v", res.Arrow, want)
	}
}

func TestArrowClampedByRadius(t *testing.T) {
	clip := Rect{X: 0, Y: 0, Width: 400, Height: 300}
	anchor := Rect{X: 390, Y: 100, Width: 10, Height: 20}

	res := ComputePosition(anchor, Size{100, 30}, clip, Top, Shift(4, 13), Arrow(Size{16, 6}, 5))
	if res.Arrow.Cross != 79 {
		t.Errorf("Cross = %v, want 79", res.Arrow.Cross)
	}
}

func TestArrowSideEdges(t *testing.T) {
	clip := Rect{X: 0, Y: 0, Width: 800, Height: 600}
	anchor := Rect{X: 300, Y: 300, Width: 40, Height: 40}

	tests := []struct {
		side     Side
		cross    Side
		static   Side
		rotation float64
	}{
		{Top, Left, Bottom, 180},
		{Bottom, Left, Top, 0},
		{Left, Top, Right, 90},
		{Right, Top, Left, 270},
	}

	for _, tt := range tests {
		t.Run(tt.side.String(), func(t *testing.T) {
			res := ComputePosition(anchor, Size{80, 80}, clip, tt.side, Arrow(Size{16, 6}, 5))
			if got := res.Arrow.Offsets[0].Edge; got != tt.cross {
				t.Errorf("cross edge = %v, want %v", got, tt.cross)
			}
			if got := res.Arrow.Offsets[1].Edge; got != tt.static {
				t.Errorf("static edge = %v, want %v", got, tt.static)
			}
			if res.Arrow.Rotation != tt.rotation {
				t.Errorf("Rotation = %v, want %v", res.Arrow.Rotation, tt.rotation)
			}
			if res.Arrow.Cross != 32 {
				t.Errorf("Cross = %v, want 32 (centered)", res.Arrow.Cross)
			}
		})
	}
}

func TestClipSmallerThanTip(t *testing.T) {
	clip := Rect{X: 0, Y: 0, Width: 50, Height: 50}
	anchor := Rect{X: 10, Y: 10, Width: 20, Height: 20}

	res := ComputePosition(anchor, Size{100, 40}, clip, Bottom, Offset(0), Flip(0), Shift(4, 0), Arrow(Size{200, 6}, 5))

	for _, v := range []float64{res.Rect.X, res.Rect.Y, res.Arrow.Cross} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("degenerate value in %+v", res)
		}
	}
	if res.Rect.X != 4 {
		t.Errorf("X = %v, want 4", res.Rect.X)
	}
	if res.Arrow.Cross != 0 {
		t.Errorf("Cross = %v, want 0", res.Arrow.Cross)
	}
}

func TestComputePositionDeterministic(t *testing.T) {
	clip := Rect{X: 0, Y: 0, Width: 400, Height: 300}
	anchor := Rect{X: 360, Y: 260, Width: 30, Height: 20}
	mods := []Modifier{Offset(4), Flip(8), Shift(4, 5), Arrow(Size{16, 6}, 5)}

	a := ComputePosition(anchor, Size{100, 40}, clip, Bottom, mods...)
	b := ComputePosition(anchor, Size{100, 40}, clip, Bottom, mods...)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("results differ: %+v vs %+v", a, b)
	}
}

func TestKindString(t *testing.T) {
	mods := []Modifier{Offset(1), Flip(1), Shift(1, 1), Arrow(Size{1, 1}, 1)}
	want := []string{"Offset", "Flip", "Shift", "Arrow"}
	for i, m := range mods {
		if m.Kind().String() != want[i] {
			t.Errorf("Kind().String() = %q, want %q", m.Kind().String(), want[i])
		}
	}
}

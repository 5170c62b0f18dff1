package bridge

import (
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"

	errs "github.com/vango-dev/tooltip/internal/errors"
	"github.com/vango-dev/tooltip/pkg/dom"
	"github.com/vango-dev/tooltip/pkg/dom/memdom"
	"github.com/vango-dev/tooltip/pkg/geometry"
	"github.com/vango-dev/tooltip/pkg/tooltip"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	config := (&Config{Logger: quietLogger()}).withDefaults()
	s := newSession(nil, config, otel.Tracer(TracerName))
	t.Cleanup(s.teardown)
	return s
}

// step applies msg and returns the patches it produced.
func step(t *testing.T, s *Session, msg *ClientMessage) []Patch {
	t.Helper()
	if err := s.safeHandle(msg); err != nil {
		t.Fatalf("handle(%s) error = %v", msg.Type, err)
	}
	patches, err := s.rec.flush()
	if err != nil {
		t.Fatalf("flush() error = %v", err)
	}
	return patches
}

var page = &geometry.Rect{Width: 800, Height: 600}

func mountMsg(anchors ...Anchor) *ClientMessage {
	return &ClientMessage{Type: MsgMount, Viewport: page, Anchors: anchors}
}

func anchor(id string, cfg TipConfig) Anchor {
	return Anchor{
		Node:    Node{ID: id, Rect: geometry.Rect{X: 100, Y: 300, Width: 50, Height: 20}},
		Tooltip: cfg,
	}
}

func eventMsg(event, target string) *ClientMessage {
	return &ClientMessage{Type: MsgEvent, Event: dom.EventType(event), Target: target}
}

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name string
		data string
		code string
	}{
		{"valid mount", `{"type":"mount","anchors":[{"id":"a1","tooltip":{"text":"hi"}}]}`, ""},
		{"valid click at point", `{"type":"event","event":"click","point":{"x":1,"y":2}}`, ""},
		{"valid window scroll", `{"type":"event","event":"scroll"}`, ""},
		{"not json", `{"type":`, "T030"},
		{"missing type", `{}`, "T030"},
		{"unknown type", `{"type":"render"}`, "T030"},
		{"unknown event", `{"type":"event","event":"keydown"}`, "T030"},
		{"pointerenter without target", `{"type":"event","event":"pointerenter"}`, "T030"},
		{"click without target or point", `{"type":"event","event":"click"}`, "T030"},
		{"anchor without id", `{"type":"mount","anchors":[{"tooltip":{}}]}`, "T030"},
		{"empty measure", `{"type":"measure"}`, "T030"},
		{"empty unmount", `{"type":"unmount"}`, "T030"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMessage([]byte(tt.data))
			if got := errs.CodeOf(err); got != tt.code {
				t.Errorf("CodeOf(DecodeMessage()) = %q, want %q (err = %v)", got, tt.code, err)
			}
		})
	}
}

func TestDecodeMessageFields(t *testing.T) {
	data := `{"type":"measure","viewport":{"x":0,"y":100,"width":800,"height":600},"sizes":{"el-1":{"width":80,"height":30}}}`
	msg, err := DecodeMessage([]byte(data))
	if err != nil {
		t.Fatalf("DecodeMessage() error = %v", err)
	}
	if want := (geometry.Rect{Y: 100, Width: 800, Height: 600}); msg.Viewport == nil || *msg.Viewport != want {
		t.Errorf("Viewport = %v, want %v", msg.Viewport, want)
	}
	if got, want := msg.Sizes["el-1"], (geometry.Size{Width: 80, Height: 30}); got != want {
		t.Errorf("Sizes[el-1] = %v, want %v", got, want)
	}
}

func TestHoverRoundTrip(t *testing.T) {
	s := newTestSession(t)

	if patches := step(t, s, mountMsg(anchor("a1", TipConfig{Text: "Hello"}))); len(patches) != 0 {
		t.Fatalf("mount patches = %v, want none", patches)
	}

	patches := step(t, s, eventMsg("pointerenter", "a1"))
	if len(patches) != 1 {
		t.Fatalf("pointerenter patches = %d, want 1", len(patches))
	}
	insert := patches[0]
	if insert.Op != OpInsert || insert.ID != "el-1" || insert.After != "a1" {
		t.Errorf("insert = {%s %s after %s}, want {insert el-1 after a1}", insert.Op, insert.ID, insert.After)
	}
	for _, want := range []string{
		`<div id="el-1" class="tooltip">`,
		`<div id="el-2" class="tooltip-contents">Hello</div>`,
		`<div id="el-4" class="tooltip-arrow"><svg`,
	} {
		if !strings.Contains(insert.HTML, want) {
			t.Errorf("insert HTML = %s, want it to contain %s", insert.HTML, want)
		}
	}

	patches = step(t, s, &ClientMessage{
		Type:  MsgMeasure,
		Sizes: map[string]geometry.Size{"el-1": {Width: 80, Height: 30}},
	})
	want := []Patch{
		{Op: OpStyle, ID: "el-1", Set: map[string]string{"left": "85px", "top": "264px", "border-radius": "5px"}},
		{Op: OpStyle, ID: "el-4", Set: map[string]string{"left": "32px", "bottom": "-6px", "transform": "rotate(180deg)"}},
	}
	if !reflect.DeepEqual(patches, want) {
		t.Errorf("measure patches = %+v, want %+v", patches, want)
	}

	patches = step(t, s, eventMsg("pointerleave", "a1"))
	if want := []Patch{{Op: OpRemove, ID: "el-1"}}; !reflect.DeepEqual(patches, want) {
		t.Errorf("pointerleave patches = %+v, want %+v", patches, want)
	}
}

func TestReshowCarriesStyles(t *testing.T) {
	s := newTestSession(t)
	step(t, s, mountMsg(anchor("a1", TipConfig{Text: "Hello", Arrow: boolPtr(false)})))
	step(t, s, eventMsg("pointerenter", "a1"))
	step(t, s, &ClientMessage{Type: MsgMeasure, Sizes: map[string]geometry.Size{"el-1": {Width: 80, Height: 30}}})
	step(t, s, eventMsg("pointerleave", "a1"))

	patches := step(t, s, eventMsg("pointerenter", "a1"))
	if len(patches) == 0 || patches[0].Op != OpInsert {
		t.Fatalf("patches = %+v, want an insert first", patches)
	}
	if !strings.Contains(patches[0].HTML, `style="border-radius: 5px; left: 85px; top: 270px"`) {
		t.Errorf("insert HTML = %s, want the previous position inline", patches[0].HTML)
	}
}

func TestClickOutsideDismisses(t *testing.T) {
	s := newTestSession(t)
	step(t, s, mountMsg(anchor("a1", TipConfig{Text: "Hi", ShowOn: "click"})))

	if patches := step(t, s, eventMsg("pointerenter", "a1")); len(patches) != 0 {
		t.Errorf("pointerenter in click mode patches = %+v, want none", patches)
	}
	patches := step(t, s, eventMsg("click", "a1"))
	if len(patches) != 1 || patches[0].Op != OpInsert {
		t.Fatalf("click patches = %+v, want one insert", patches)
	}

	// A click on the tip itself is inside.
	if patches := step(t, s, eventMsg("click", "el-2")); len(patches) != 0 {
		t.Errorf("click on tip patches = %+v, want none", patches)
	}

	patches = step(t, s, &ClientMessage{Type: MsgEvent, Event: dom.EventClick, Point: &geometry.Point{X: 700, Y: 50}})
	if want := []Patch{{Op: OpRemove, ID: "el-1"}}; !reflect.DeepEqual(patches, want) {
		t.Errorf("outside click patches = %+v, want %+v", patches, want)
	}
}

func TestWindowEvents(t *testing.T) {
	s := newTestSession(t)
	step(t, s, mountMsg(anchor("a1", TipConfig{Text: "Hi", Arrow: boolPtr(false)})))
	step(t, s, eventMsg("pointerenter", "a1"))
	step(t, s, &ClientMessage{Type: MsgMeasure, Sizes: map[string]geometry.Size{"el-1": {Width: 80, Height: 30}}})

	// The page scrolled: the anchor moved with it.
	step(t, s, &ClientMessage{Type: MsgLayout, Rects: map[string]geometry.Rect{
		"a1": {X: 200, Y: 300, Width: 50, Height: 20},
	}})
	patches := step(t, s, eventMsg("scroll", ""))
	want := []Patch{{Op: OpStyle, ID: "el-1", Set: map[string]string{"left": "185px", "top": "270px", "border-radius": "5px"}}}
	if !reflect.DeepEqual(patches, want) {
		t.Errorf("scroll patches = %+v, want %+v", patches, want)
	}

	patches = step(t, s, eventMsg("blur", ""))
	if want := []Patch{{Op: OpRemove, ID: "el-1"}}; !reflect.DeepEqual(patches, want) {
		t.Errorf("blur patches = %+v, want %+v", patches, want)
	}
}

func TestContainerLookup(t *testing.T) {
	s := newTestSession(t)
	a := anchor("a1", TipConfig{Text: "Hi", Arrow: boolPtr(false)})
	a.Container = "panel"
	a.Parent = "panel"
	step(t, s, &ClientMessage{
		Type:     MsgMount,
		Viewport: page,
		Elements: []Node{{ID: "panel", Rect: geometry.Rect{X: 90, Y: 100, Width: 100, Height: 400}}},
		Anchors:  []Anchor{a},
	})

	if el := s.containerFunc("missing")(); el != nil {
		t.Errorf("containerFunc(missing)() = %v, want nil", el)
	}

	step(t, s, eventMsg("pointerenter", "a1"))
	patches := step(t, s, &ClientMessage{Type: MsgMeasure, Sizes: map[string]geometry.Size{"el-1": {Width: 80, Height: 30}}})
	// Shifted right to stay inside the panel.
	want := []Patch{{Op: OpStyle, ID: "el-1", Set: map[string]string{"left": "90px", "top": "270px", "border-radius": "5px"}}}
	if !reflect.DeepEqual(patches, want) {
		t.Errorf("patches = %+v, want %+v", patches, want)
	}

	step(t, s, &ClientMessage{Type: MsgLayout, Rects: map[string]geometry.Rect{"a1": {X: 110, Y: 300, Width: 50, Height: 20}}})
	patches = step(t, s, eventMsg("scroll", "panel"))
	want = []Patch{{Op: OpStyle, ID: "el-1", Set: map[string]string{"left": "95px", "top": "270px", "border-radius": "5px"}}}
	if !reflect.DeepEqual(patches, want) {
		t.Errorf("container scroll patches = %+v, want %+v", patches, want)
	}
}

func TestUnknownIDs(t *testing.T) {
	s := newTestSession(t)
	step(t, s, mountMsg(anchor("a1", TipConfig{Text: "Hi"})))

	tests := []struct {
		name string
		msg  *ClientMessage
		code string
	}{
		{"event target", eventMsg("pointerenter", "nope"), "T031"},
		{"layout", &ClientMessage{Type: MsgLayout, Rects: map[string]geometry.Rect{"nope": {}}}, "T031"},
		{"measure", &ClientMessage{Type: MsgMeasure, Sizes: map[string]geometry.Size{"nope": {}}}, "T031"},
		{"unmount", &ClientMessage{Type: MsgUnmount, IDs: []string{"nope"}}, "T031"},
		{"parent", mountMsg(Anchor{Node: Node{ID: "a2", Parent: "nope"}}), "T031"},
		{"duplicate anchor", mountMsg(anchor("a1", TipConfig{})), "T030"},
		{"bad side", mountMsg(anchor("a3", TipConfig{Side: "middle"})), "T030"},
		{"bad trigger", mountMsg(anchor("a4", TipConfig{ShowOn: "focus"})), "T030"},
		{"tooltip id", mountMsg(anchor("el-1", TipConfig{})), "T030"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.safeHandle(tt.msg)
			s.rec.flush()
			if got := errs.CodeOf(err); got != tt.code {
				t.Errorf("CodeOf(err) = %q, want %q (err = %v)", got, tt.code, err)
			}
		})
	}
}

func TestPlaceRejectsCycles(t *testing.T) {
	s := newTestSession(t)
	step(t, s, &ClientMessage{Type: MsgMount, Viewport: page, Elements: []Node{
		{ID: "box", Rect: geometry.Rect{X: 90, Y: 100, Width: 100, Height: 400}},
		{ID: "inner", Parent: "box"},
	}})

	tests := []struct {
		name string
		node Node
	}{
		{"own parent", Node{ID: "box", Parent: "box"}},
		{"under descendant", Node{ID: "box", Parent: "inner"}},
		{"root", Node{ID: "body", Parent: "inner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.safeHandle(&ClientMessage{Type: MsgMount, Elements: []Node{tt.node}})
			if got := errs.CodeOf(err); got != "T030" {
				t.Errorf("CodeOf(err) = %q, want T030 (err = %v)", got, err)
			}
		})
	}

	for _, id := range []string{"box", "inner"} {
		el, _ := s.doc.ByID(id)
		if !el.Connected() {
			t.Errorf("%s.Connected() = false after rejected moves", id)
		}
	}

	// The session keeps working with the untouched tree.
	a := anchor("a1", TipConfig{Text: "Hi"})
	a.Parent = "inner"
	a.Container = "box"
	step(t, s, mountMsg(a))
	if patches := step(t, s, eventMsg("pointerenter", "a1")); len(patches) != 1 || patches[0].Op != OpInsert {
		t.Errorf("pointerenter patches = %v, want one insert", patches)
	}
}

func TestPanicIsRecovered(t *testing.T) {
	s := newTestSession(t)
	step(t, s, mountMsg(anchor("a1", TipConfig{Text: "Hi"})))
	step(t, s, eventMsg("pointerenter", "a1"))

	a1, _ := s.doc.ByID("a1")
	s.doc.Remove(a1)
	s.rec.flush()

	err := s.safeHandle(&ClientMessage{Type: MsgMeasure, Sizes: map[string]geometry.Size{"el-1": {Width: 80, Height: 30}}})
	if got := errs.CodeOf(err); got != "T002" {
		t.Errorf("CodeOf(err) = %q, want T002 (err = %v)", got, err)
	}
}

func TestUnmountReleasesListeners(t *testing.T) {
	s := newTestSession(t)
	step(t, s, mountMsg(anchor("a1", TipConfig{Text: "Hi"}), anchor("a2", TipConfig{Text: "Yo", ShowOn: "click"})))
	step(t, s, eventMsg("pointerenter", "a1"))

	patches := step(t, s, &ClientMessage{Type: MsgUnmount, IDs: []string{"a1"}})
	if want := []Patch{{Op: OpRemove, ID: "el-1"}}; !reflect.DeepEqual(patches, want) {
		t.Errorf("unmount patches = %+v, want %+v", patches, want)
	}
	if _, ok := s.Tooltip("a1"); ok {
		t.Error("Tooltip(a1) found after unmount")
	}
	if patches := step(t, s, eventMsg("pointerenter", "a1")); len(patches) != 0 {
		t.Errorf("pointerenter after unmount patches = %+v, want none", patches)
	}

	step(t, s, &ClientMessage{Type: MsgUnmount, IDs: []string{"a2"}})
	if got := s.doc.ListenerCount(); got != 0 {
		t.Errorf("ListenerCount() = %d, want 0", got)
	}

	// The anchor can be mounted again.
	step(t, s, mountMsg(anchor("a1", TipConfig{Text: "Again"})))
	if _, ok := s.Tooltip("a1"); !ok {
		t.Error("Tooltip(a1) not found after remount")
	}
}

func TestTeardownClosesTooltips(t *testing.T) {
	s := newTestSession(t)
	step(t, s, mountMsg(anchor("a1", TipConfig{Text: "Hi"})))
	tip, _ := s.Tooltip("a1")

	s.teardown()
	if !tip.Closed() {
		t.Error("tooltip not closed by teardown")
	}
	if got := s.doc.ListenerCount(); got != 0 {
		t.Errorf("ListenerCount() = %d, want 0", got)
	}
}

func TestTipConfigPartial(t *testing.T) {
	defaults := tooltip.DefaultOptions()

	p, err := TipConfig{
		HTML:         "<b>bold</b>",
		Padding:      floatPtr(4),
		Side:         "Left",
		ShowOn:       "click",
		BorderRadius: floatPtr(0),
		Class:        strPtr("dark"),
		Arrow:        boolPtr(false),
	}.partial()
	if err != nil {
		t.Fatalf("partial() error = %v", err)
	}
	got := tooltip.Resolve(&defaults, p)
	if got.Padding != 4 || got.Side != geometry.Left || got.ShowOn != tooltip.Click ||
		got.BorderRadius != 0 || got.Class != "dark" || got.Arrow != nil {
		t.Errorf("Resolve() = %+v", got)
	}

	noArrow := defaults
	noArrow.Arrow = nil
	p, _ = TipConfig{Text: "x", Arrow: boolPtr(true)}.partial()
	if got := tooltip.Resolve(&noArrow, p); got.Arrow == nil {
		t.Error("arrow: true did not restore the default arrow")
	}

	p, _ = TipConfig{Text: "x"}.partial()
	if got := tooltip.Resolve(&noArrow, p); got.Arrow != nil {
		t.Error("unset arrow did not inherit the defaults")
	}
}

func TestRecorderMergesStyles(t *testing.T) {
	doc := memdom.New(geometry.Rect{Width: 100, Height: 100})
	el := doc.NewElement("div", "x")
	doc.Append(doc.Body(), el)

	var r recorder
	stop := doc.Observe(r.record)
	defer stop()

	el.SetStyle("left", "1px")
	el.SetStyle("top", "2px")
	el.RemoveStyle("left")
	el.SetStyle("top", "3px")

	patches, _ := r.flush()
	want := []Patch{{Op: OpStyle, ID: "x", Set: map[string]string{"top": "3px"}, Clear: []string{"left"}}}
	if !reflect.DeepEqual(patches, want) {
		t.Errorf("patches = %+v, want %+v", patches, want)
	}

	detached := doc.NewElement("div", "y")
	detached.SetStyle("left", "1px")
	if patches, _ := r.flush(); len(patches) != 0 {
		t.Errorf("detached style patches = %+v, want none", patches)
	}
}

func TestMarkupEscapes(t *testing.T) {
	doc := memdom.New(geometry.Rect{})
	el := doc.NewElement("div", `a"b`)
	el.SetStyle("font-family", `"x"`)

	var b strings.Builder
	if err := writeMarkup(&b, el); err != nil {
		t.Fatalf("writeMarkup() error = %v", err)
	}
	want := `<div id="a&quot;b" style="font-family: &quot;x&quot;"></div>`
	if got := b.String(); got != want {
		t.Errorf("writeMarkup() = %s, want %s", got, want)
	}
}

func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

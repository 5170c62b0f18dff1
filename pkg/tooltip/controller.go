package tooltip

import (
	"log/slog"
	"time"

	errs "github.com/vango-dev/tooltip/internal/errors"
	"github.com/vango-dev/tooltip/pkg/dom"
	"github.com/vango-dev/tooltip/pkg/geometry"
	"github.com/vango-dev/tooltip/pkg/vdom"
)

// State is the attachment state of a tooltip.
type State uint8

const (
	Detached State = iota
	Attached
)

// String returns "detached" or "attached".
func (s State) String() string {
	if s == Attached {
		return "attached"
	}
	return "detached"
}

// Class names of the tooltip subtree.
const (
	ClassTooltip  = "tooltip"
	ClassContents = "tooltip-contents"
	ClassArrowBox = "tooltip-arrow-box"
	ClassArrow    = "tooltip-arrow"
)

// Controller owns one tip element. It inserts the tip next to the anchor,
// positions it and removes it again. The tip is created once and reused
// across show and hide cycles.
//
// A Controller is not safe for concurrent use. All calls for one document
// must come from the goroutine that dispatches its events.
type Controller struct {
	host   dom.Host
	anchor dom.Element
	tip    dom.Element
	arrow  dom.Element
	opts   Options

	logger   *slog.Logger
	observer Observer

	// arrowEdges are the edge styles written on the arrow by the last apply.
	arrowEdges []geometry.Side
	last       *Placement

	recalcs int
	skips   int

	// onContainer is told which container each recalculation resolved.
	onContainer func(dom.Element)
}

func newController(host dom.Host, anchor dom.Element, content *vdom.VNode, opts Options, logger *slog.Logger, obs Observer) *Controller {
	c := &Controller{
		host:     host,
		anchor:   anchor,
		opts:     opts,
		logger:   logger,
		observer: obs,
	}
	c.tip = host.CreateElement(tipSpec(content, opts, func(el dom.Element) { c.arrow = el }))
	return c
}

// tipSpec describes the tooltip subtree:
// div.tooltip > div.tooltip-contents + div.tooltip-arrow-box > div.tooltip-arrow
func tipSpec(content *vdom.VNode, opts Options, arrowRef func(dom.Element)) dom.ElementSpec {
	class := ClassTooltip
	if opts.Class != "" {
		class += " " + opts.Class
	}
	spec := dom.ElementSpec{
		Tag:   "div",
		Class: class,
		Children: []dom.ElementSpec{
			{Tag: "div", Class: ClassContents, Content: content},
		},
	}
	if opts.Arrow != nil {
		spec.Children = append(spec.Children, dom.ElementSpec{
			Tag:   "div",
			Class: ClassArrowBox,
			Children: []dom.ElementSpec{
				{Tag: "div", Class: ClassArrow, Content: opts.Arrow, Ref: arrowRef},
			},
		})
	}
	return spec
}

// State returns Attached while the tip is in the document.
func (c *Controller) State() State {
	if c.tip.Connected() {
		return Attached
	}
	return Detached
}

// Tip returns the tip element.
func (c *Controller) Tip() dom.Element { return c.tip }

// Arrow returns the arrow element, or nil when no arrow is configured.
func (c *Controller) Arrow() dom.Element { return c.arrow }

// Options returns the resolved options.
func (c *Controller) Options() Options { return c.opts }

// LastPlacement returns the most recently applied placement.
func (c *Controller) LastPlacement() (Placement, bool) {
	if c.last == nil {
		return Placement{}, false
	}
	return *c.last, true
}

// Recalculations returns how many placements were applied.
func (c *Controller) Recalculations() int { return c.recalcs }

// Skips returns how many recalculations were skipped for lack of
// measurements.
func (c *Controller) Skips() int { return c.skips }

// EnsureAttached inserts the tip after the anchor if it is not in the
// document. It panics if the anchor itself is not in the document.
func (c *Controller) EnsureAttached() {
	if c.tip.Connected() {
		return
	}
	c.requireAnchor()
	c.host.InsertAfter(c.anchor, c.tip)
	c.observer.OnShow(c.opts.ShowOn)
	c.logger.Debug("tooltip shown", "trigger", c.opts.ShowOn, "side", c.opts.Side)
}

// Recalculate measures everything and moves the tip. It does nothing while
// the tip is detached, and skips when the tip or arrow has no size yet.
// It panics if the anchor is not in the document.
func (c *Controller) Recalculate() {
	if !c.tip.Connected() {
		return
	}
	c.requireAnchor()

	start := time.Now()
	p, err := Place(c.opts, c.measure())
	if err != nil {
		c.skips++
		c.observer.OnSkip(err)
		c.logger.Debug("tooltip recalculation skipped", "error", err)
		return
	}
	if p.Degraded {
		c.logger.Warn("tooltip container is outside the viewport; using the viewport",
			"code", "T020")
	}
	if p.Flipped() {
		c.logger.Debug("tooltip flipped", "requested", p.Requested, "side", p.Side)
	}

	c.apply(p)
	c.recalcs++
	c.last = &p
	c.observer.OnRecalculate(p, time.Since(start))
}

// Detach removes the tip from the document. The tip can be shown again.
func (c *Controller) Detach() {
	if !c.tip.Connected() {
		return
	}
	c.host.Remove(c.tip)
}

// Show attaches and positions the tip.
func (c *Controller) Show() {
	c.EnsureAttached()
	c.Recalculate()
}

// hide detaches the tip and reports reason if it was visible.
func (c *Controller) hide(reason HideReason) {
	if !c.tip.Connected() {
		return
	}
	c.Detach()
	c.observer.OnHide(reason)
	c.logger.Debug("tooltip hidden", "reason", reason)
}

func (c *Controller) requireAnchor() {
	if !c.anchor.Connected() {
		panic(errs.New("T002"))
	}
}

func (c *Controller) measure() Measurements {
	m := Measurements{
		Anchor:    c.anchor.Rect(),
		Tip:       c.tip.Rect().Size(),
		Viewport:  c.host.Window().Viewport(),
		Container: c.containerRect(),
	}
	if c.arrow != nil {
		m.Arrow = c.arrow.Rect().Size()
	}
	return m
}

// containerRect resolves the container. Anything that does not resolve to
// a live element falls back to the viewport.
func (c *Controller) containerRect() *geometry.Rect {
	el := c.resolveContainer()
	if c.onContainer != nil {
		c.onContainer(el)
	}
	if el == nil {
		return nil
	}
	r := el.Rect()
	return &r
}

func (c *Controller) resolveContainer() dom.Element {
	if c.opts.Container == nil {
		return nil
	}
	el := c.opts.Container()
	if el == nil || !el.Connected() {
		c.logger.Debug("tooltip container did not resolve; using the viewport", "code", "T020")
		return nil
	}
	return el
}

// apply writes p to the tip and arrow. Arrow edges written by the previous
// placement that p does not use are cleared first.
func (c *Controller) apply(p Placement) {
	for _, s := range p.TipStyles() {
		c.tip.SetStyle(s.Name, s.Value)
	}
	if c.arrow == nil {
		return
	}

	edges := make([]geometry.Side, 0, len(p.Arrow))
	for _, e := range p.Arrow {
		edges = append(edges, e.Edge)
	}
	for _, old := range c.arrowEdges {
		if !containsSide(edges, old) {
			c.arrow.RemoveStyle(old.String())
		}
	}
	for _, s := range p.ArrowStyles() {
		c.arrow.SetStyle(s.Name, s.Value)
	}
	c.arrowEdges = edges
}

func containsSide(sides []geometry.Side, s geometry.Side) bool {
	for _, v := range sides {
		if v == s {
			return true
		}
	}
	return false
}

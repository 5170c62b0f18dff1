package tooltip

import (
	"log/slog"

	errs "github.com/vango-dev/tooltip/internal/errors"
	"github.com/vango-dev/tooltip/pkg/dom"
	"github.com/vango-dev/tooltip/pkg/scope"
)

// Tooltip is a tooltip bound to one anchor.
type Tooltip struct {
	host   dom.Host
	anchor dom.Element
	ctrl   *Controller

	releases []func()
	closed   bool

	// container is the element carrying the container scroll listener.
	container        dom.Element
	releaseContainer func()
}

type attachConfig struct {
	logger   *slog.Logger
	observer Observer
}

// AttachOption configures Attach.
type AttachOption func(*attachConfig)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) AttachOption {
	return func(c *attachConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) AttachOption {
	return func(c *attachConfig) {
		if o != nil {
			c.observer = o
		}
	}
}

// Attach binds a tooltip to anchor. The options are resolved against the
// ambient defaults visible from owner, the tip element is created
// (detached), and the listeners for the trigger mode are registered.
//
// The tooltip is closed when owner is disposed. owner may be nil, in which
// case the caller must call Close.
func Attach(owner *scope.Owner, host dom.Host, anchor dom.Element, p PartialOptions, opts ...AttachOption) (*Tooltip, error) {
	if host == nil {
		return nil, errs.New("T003")
	}
	if anchor == nil {
		return nil, errs.New("T001")
	}

	cfg := attachConfig{
		logger:   slog.Default(),
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	resolved := Resolve(DefaultsFor(owner), p)
	t := &Tooltip{
		host:   host,
		anchor: anchor,
		ctrl:   newController(host, anchor, p.Content, resolved, cfg.logger, cfg.observer),
	}
	t.bind()
	cfg.observer.OnAttach(resolved.ShowOn)

	if owner != nil {
		owner.OnCleanup(t.Close)
	}
	return t, nil
}

func (t *Tooltip) track(release func()) {
	t.releases = append(t.releases, release)
}

// Close removes the tip and releases every listener. It is idempotent.
func (t *Tooltip) Close() {
	if t.closed {
		return
	}
	t.closed = true

	for i := len(t.releases) - 1; i >= 0; i-- {
		t.releases[i]()
	}
	t.releases = nil
	t.unwatchContainer()

	t.ctrl.hide(HideClose)
	t.ctrl.observer.OnClose(t.ctrl.opts.ShowOn)
}

// Closed reports whether Close ran.
func (t *Tooltip) Closed() bool { return t.closed }

// Listeners returns the number of live listener registrations.
func (t *Tooltip) Listeners() int {
	n := len(t.releases)
	if t.releaseContainer != nil {
		n++
	}
	return n
}

// Controller returns the lifecycle controller.
func (t *Tooltip) Controller() *Controller { return t.ctrl }

// Anchor returns the anchor element.
func (t *Tooltip) Anchor() dom.Element { return t.anchor }

// Element returns the tip element.
func (t *Tooltip) Element() dom.Element { return t.ctrl.tip }

// ArrowElement returns the arrow element, or nil without an arrow.
func (t *Tooltip) ArrowElement() dom.Element { return t.ctrl.arrow }

// Options returns the resolved options.
func (t *Tooltip) Options() Options { return t.ctrl.opts }

// State returns the attachment state.
func (t *Tooltip) State() State { return t.ctrl.State() }

// Show attaches and positions the tip, as the trigger would.
func (t *Tooltip) Show() { t.ctrl.Show() }

// Hide detaches the tip.
func (t *Tooltip) Hide() { t.ctrl.hide(HideManual) }

// Recalculate repositions the tip if it is attached.
func (t *Tooltip) Recalculate() {
	if t.ctrl.State() == Attached {
		t.ctrl.Recalculate()
	}
}

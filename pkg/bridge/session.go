package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	errs "github.com/vango-dev/tooltip/internal/errors"
	"github.com/vango-dev/tooltip/pkg/dom"
	"github.com/vango-dev/tooltip/pkg/dom/memdom"
	"github.com/vango-dev/tooltip/pkg/geometry"
	"github.com/vango-dev/tooltip/pkg/scope"
	"github.com/vango-dev/tooltip/pkg/tooltip"
	"github.com/vango-dev/tooltip/pkg/vdom"
)

// ErrSessionClosed is returned when writing to a closed session.
var ErrSessionClosed = errors.New("bridge: session closed")

// mounted is a tooltip attached to a client anchor.
type mounted struct {
	owner *scope.Owner
	tip   *tooltip.Tooltip
	ids   []string
}

// Session mirrors one browser page. The page's anchors live in an
// in-memory document and every client message is applied to it on a
// single goroutine, so the tooltip controllers never run concurrently.
type Session struct {
	ID        string
	CreatedAt time.Time

	conn   *websocket.Conn
	mu     sync.Mutex // Protects conn writes
	closed atomic.Bool
	once   sync.Once

	inbox chan []byte
	done  chan struct{}
	seq   atomic.Uint64

	// Owned by the event loop.
	doc     *memdom.Document
	owner   *scope.Owner
	anchors map[string]*mounted
	owners  map[string]*mounted // tip and arrow ids
	rec     recorder
	unwatch func()

	config  *Config
	logger  *slog.Logger
	tracer  trace.Tracer
	onClose func(*Session)
}

func newSession(conn *websocket.Conn, config *Config, tracer trace.Tracer) *Session {
	id := uuid.NewString()
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		conn:      conn,
		inbox:     make(chan []byte, config.QueueSize),
		done:      make(chan struct{}),
		doc:       memdom.New(geometry.Rect{}),
		owner:     scope.NewOwner(nil),
		anchors:   make(map[string]*mounted),
		owners:    make(map[string]*mounted),
		config:    config,
		logger:    config.Logger.With("session_id", id),
		tracer:    tracer,
	}
	tooltip.ProvideDefaults(s.owner, config.Defaults)
	s.unwatch = s.doc.Observe(s.rec.record)
	return s
}

// Document returns the mirrored page. It must only be touched from the
// event loop.
func (s *Session) Document() *memdom.Document { return s.doc }

// IsClosed reports whether the session has been closed.
func (s *Session) IsClosed() bool { return s.closed.Load() }

// Start starts the read, event and heartbeat loops.
func (s *Session) Start() {
	go s.ReadLoop()
	go s.WriteLoop()
	go s.EventLoop()
}

// ReadLoop reads client messages and queues them for the event loop.
// It blocks until the connection fails or the session is closed.
func (s *Session) ReadLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				s.config.Metrics.RecordWebSocketError("read")
			}
			return
		}

		select {
		case s.inbox <- msg:
		case <-s.done:
			return
		default:
			s.logger.Warn("message queue full, dropping message")
			s.send(ServerMessage{Type: ServerError, Message: "message queue full"})
		}
	}
}

// WriteLoop sends heartbeat pings until the session is closed.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.ping(); err != nil {
				s.logger.Debug("ping failed", "error", err)
				s.config.Metrics.RecordWebSocketError("ping")
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// EventLoop applies queued messages in order. It owns the document.
func (s *Session) EventLoop() {
	for {
		select {
		case msg := <-s.inbox:
			s.process(msg)
		case <-s.done:
			s.teardown()
			return
		}
	}
}

// process handles one raw client message and sends the resulting patches.
func (s *Session) process(raw []byte) {
	msg, err := DecodeMessage(raw)
	if err != nil {
		s.logger.Warn("malformed message", "error", err)
		s.config.Metrics.RecordMessage("invalid", err)
		s.send(errorMessage(err))
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("tooltip.session_id", s.ID),
		attribute.String("tooltip.message", string(msg.Type)),
	}
	if msg.Type == MsgEvent {
		attrs = append(attrs,
			attribute.String("tooltip.event", msg.Event.String()),
			attribute.String("tooltip.target", msg.Target),
		)
	}
	_, span := s.tracer.Start(context.Background(), "tooltip."+string(msg.Type),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	err = s.safeHandle(msg)
	s.config.Metrics.RecordMessage(string(msg.Type), err)

	// The document changed even if the handler failed part way.
	patches, renderErr := s.rec.flush()
	if renderErr != nil {
		s.logger.Error("render failed", "error", renderErr)
	}
	span.SetAttributes(attribute.Int("tooltip.patches", len(patches)))

	if len(patches) > 0 {
		if werr := s.sendPatches(patches); werr != nil {
			s.logger.Debug("patch write failed", "error", werr)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("message failed", "type", msg.Type, "code", errs.CodeOf(err), "error", err)
		s.send(errorMessage(err))
		return
	}
	span.SetStatus(codes.Ok, "")
}

// safeHandle runs handle, turning a panic into an error so one bad message
// does not end the session.
func (s *Session) safeHandle(msg *ClientMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("message panic",
				"type", msg.Type,
				"panic", r,
				"stack", string(debug.Stack()))
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("bridge: panic: %v", r)
			}
		}
	}()
	return s.handle(msg)
}

// handle applies a decoded message to the document.
func (s *Session) handle(msg *ClientMessage) error {
	if msg.Viewport != nil {
		s.doc.Win().SetViewport(*msg.Viewport)
	}
	switch msg.Type {
	case MsgMount:
		return s.mount(msg.Elements, msg.Anchors)
	case MsgLayout:
		return s.layout(msg.Rects)
	case MsgEvent:
		return s.event(msg)
	case MsgMeasure:
		return s.measure(msg.Sizes)
	case MsgUnmount:
		return s.unmount(msg.IDs)
	}
	return nil
}

func (s *Session) mount(elements []Node, anchors []Anchor) error {
	for _, n := range elements {
		if _, err := s.place(n); err != nil {
			return err
		}
	}
	for _, a := range anchors {
		if _, ok := s.anchors[a.ID]; ok {
			return errs.New("T030").WithDetailf("anchor %q is already mounted", a.ID)
		}
		el, err := s.place(a.Node)
		if err != nil {
			return err
		}
		p, err := a.Tooltip.partial()
		if err != nil {
			return err
		}
		if a.Container != "" {
			p = p.WithContainer(s.containerFunc(a.Container))
		}

		owner := scope.NewOwner(s.owner)
		opts := []tooltip.AttachOption{tooltip.WithLogger(s.logger.With("anchor", a.ID))}
		if s.config.Metrics != nil {
			opts = append(opts, tooltip.WithObserver(s.config.Metrics))
		}
		t, err := tooltip.Attach(owner, s.doc, el, p, opts...)
		if err != nil {
			owner.Dispose()
			return err
		}
		s.track(a.ID, owner, t)
	}
	return nil
}

// place creates or updates a client element.
func (s *Session) place(n Node) (*memdom.Element, error) {
	if _, owned := s.owners[n.ID]; owned {
		return nil, errs.New("T030").WithDetailf("id %q belongs to a tooltip", n.ID)
	}
	parent := s.doc.Body()
	if n.Parent != "" {
		p, ok := s.doc.ByID(n.Parent)
		if !ok {
			return nil, errs.New("T031").WithDetailf("parent %q", n.Parent)
		}
		parent = p
	}
	if n.ID == s.doc.Body().ID() {
		return nil, errs.New("T030").WithDetailf("id %q is the document root", n.ID)
	}
	el, ok := s.doc.ByID(n.ID)
	if !ok {
		el = s.doc.NewElement("div", n.ID)
	}
	if el.Parent() != parent {
		if err := s.doc.Append(parent, el); err != nil {
			return nil, errs.New("T030").WithDetailf("%q cannot be placed under %q", n.ID, n.Parent).Wrap(err)
		}
	}
	el.SetRect(n.Rect)
	return el, nil
}

func (s *Session) track(anchorID string, owner *scope.Owner, t *tooltip.Tooltip) {
	m := &mounted{owner: owner, tip: t}
	for _, el := range []dom.Element{t.Element(), t.ArrowElement()} {
		if e, ok := el.(*memdom.Element); ok && e != nil {
			m.ids = append(m.ids, e.ID())
			s.owners[e.ID()] = m
		}
	}
	s.anchors[anchorID] = m
}

// containerFunc looks the container up on every call so a container the
// client unmounts or replaces is picked up.
func (s *Session) containerFunc(id string) tooltip.ContainerFunc {
	return func() dom.Element {
		el, ok := s.doc.ByID(id)
		if !ok {
			return nil
		}
		return el
	}
}

func (s *Session) lookup(id string) (*memdom.Element, error) {
	el, ok := s.doc.ByID(id)
	if !ok {
		return nil, errs.New("T031").WithDetailf("%q", id)
	}
	return el, nil
}

func (s *Session) layout(rects map[string]geometry.Rect) error {
	var missing error
	for _, id := range sortedKeys(rects) {
		el, err := s.lookup(id)
		if err != nil {
			if missing == nil {
				missing = err
			}
			continue
		}
		el.SetRect(rects[id])
	}
	return missing
}

func (s *Session) event(msg *ClientMessage) error {
	var point geometry.Point
	if msg.Point != nil {
		point = *msg.Point
	}

	var target *memdom.Element
	if msg.Target != "" {
		el, err := s.lookup(msg.Target)
		if err != nil {
			return err
		}
		target = el
	}

	switch msg.Event {
	case dom.EventPointerEnter, dom.EventPointerLeave:
		target.Dispatch(dom.Event{Type: msg.Event, Target: target, Point: point})
	case dom.EventClick:
		if target == nil {
			s.doc.ClickAt(point)
			return nil
		}
		target.Dispatch(dom.Event{Type: dom.EventClick, Target: target, Point: point})
	case dom.EventScroll:
		if target != nil {
			target.Dispatch(dom.Event{Type: dom.EventScroll, Target: target})
			return nil
		}
		s.doc.Win().Dispatch(dom.EventScroll)
	case dom.EventResize:
		s.doc.Win().Dispatch(dom.EventResize)
	case dom.EventBlur:
		s.doc.Win().Blur()
	}
	return nil
}

// measure records rendered sizes and repositions the tooltips whose tip
// or arrow was measured.
func (s *Session) measure(sizes map[string]geometry.Size) error {
	var missing error
	var touched []*mounted
	seen := make(map[*mounted]bool)
	for _, id := range sortedKeys(sizes) {
		el, err := s.lookup(id)
		if err != nil {
			if missing == nil {
				missing = err
			}
			continue
		}
		el.SetSize(sizes[id])
		if m := s.owners[id]; m != nil && !seen[m] {
			seen[m] = true
			touched = append(touched, m)
		}
	}
	for _, m := range touched {
		m.tip.Recalculate()
	}
	return missing
}

func (s *Session) unmount(ids []string) error {
	for _, id := range ids {
		m, ok := s.anchors[id]
		if !ok {
			return errs.New("T031").WithDetailf("anchor %q", id)
		}
		m.owner.Dispose()
		delete(s.anchors, id)
		for _, tid := range m.ids {
			delete(s.owners, tid)
		}
	}
	return nil
}

// Tooltip returns the tooltip mounted on anchor id. It must only be
// called from the event loop.
func (s *Session) Tooltip(anchorID string) (*tooltip.Tooltip, bool) {
	m, ok := s.anchors[anchorID]
	if !ok {
		return nil, false
	}
	return m.tip, true
}

func (s *Session) sendPatches(patches []Patch) error {
	for _, p := range patches {
		s.config.Metrics.RecordPatches(string(p.Op), 1)
	}
	return s.send(ServerMessage{
		Type:    ServerPatches,
		Seq:     s.seq.Add(1),
		Patches: patches,
	})
}

// send writes a message to the client.
func (s *Session) send(msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.config.Metrics.RecordWebSocketError("write")
		return err
	}
	return nil
}

func (s *Session) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

// Close closes the connection and stops the loops. The document is torn
// down by the event loop. Close is idempotent.
func (s *Session) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed.Store(true)
		if s.conn != nil {
			s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			s.conn.Close()
		}
		s.mu.Unlock()

		close(s.done)
		s.logger.Info("session closed", "duration", time.Since(s.CreatedAt))
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}

// teardown closes every tooltip. Patches produced by it are dropped since
// the page is gone.
func (s *Session) teardown() {
	s.owner.Dispose()
	s.unwatch()
	s.rec.flush()
	s.anchors = map[string]*mounted{}
	s.owners = map[string]*mounted{}
}

func (c TipConfig) partial() (tooltip.PartialOptions, error) {
	var p tooltip.PartialOptions
	if c.HTML != "" {
		p = tooltip.Tip(vdom.Raw(c.HTML))
	} else {
		p = tooltip.Text(c.Text)
	}

	if c.Padding != nil {
		p = p.WithPadding(*c.Padding)
	}
	if c.Side != "" {
		side, err := geometry.ParseSide(c.Side)
		if err != nil {
			return p, errs.New("T030").Wrap(err)
		}
		p = p.WithSide(side)
	}
	if c.ShowOn != "" {
		showOn, err := tooltip.ParseShowOn(c.ShowOn)
		if err != nil {
			return p, errs.New("T030").Wrap(err)
		}
		p = p.WithShowOn(showOn)
	}
	if c.BorderRadius != nil {
		p = p.WithBorderRadius(*c.BorderRadius)
	}
	if c.Class != nil {
		p = p.WithClass(*c.Class)
	}
	if c.Arrow != nil {
		if *c.Arrow {
			p = p.WithArrow(tooltip.DefaultArrow())
		} else {
			p = p.WithoutArrow()
		}
	}
	return p, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

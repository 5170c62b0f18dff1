package bridge

import (
	"encoding/json"
	"fmt"

	errs "github.com/vango-dev/tooltip/internal/errors"
	"github.com/vango-dev/tooltip/pkg/dom"
	"github.com/vango-dev/tooltip/pkg/geometry"
)

// MessageType identifies a client message.
type MessageType string

const (
	MsgMount   MessageType = "mount"
	MsgLayout  MessageType = "layout"
	MsgEvent   MessageType = "event"
	MsgMeasure MessageType = "measure"
	MsgUnmount MessageType = "unmount"
)

// ClientMessage is a message sent by the browser. Only the fields that
// belong to Type are read.
type ClientMessage struct {
	Type MessageType `json:"type"`

	// Viewport, when set, replaces the window viewport before the message
	// is handled. Coordinates are page coordinates.
	Viewport *geometry.Rect `json:"viewport,omitempty"`

	// mount
	Elements []Node   `json:"elements,omitempty"`
	Anchors  []Anchor `json:"anchors,omitempty"`

	// layout
	Rects map[string]geometry.Rect `json:"rects,omitempty"`

	// event
	Event  dom.EventType   `json:"event,omitempty"`
	Target string          `json:"target,omitempty"`
	Point  *geometry.Point `json:"point,omitempty"`

	// measure
	Sizes map[string]geometry.Size `json:"sizes,omitempty"`

	// unmount
	IDs []string `json:"ids,omitempty"`
}

// Node is a page element the server needs to know about, typically a
// scroll container.
type Node struct {
	ID     string        `json:"id"`
	Parent string        `json:"parent,omitempty"`
	Rect   geometry.Rect `json:"rect"`
}

// Anchor is an element that owns a tooltip.
type Anchor struct {
	Node
	Container string    `json:"container,omitempty"`
	Tooltip   TipConfig `json:"tooltip"`
}

// TipConfig is the per-anchor tooltip configuration. Unset fields fall
// back to the server defaults.
type TipConfig struct {
	Text string `json:"text,omitempty"`
	HTML string `json:"html,omitempty"`

	Padding      *float64 `json:"padding,omitempty"`
	Side         string   `json:"side,omitempty"`
	ShowOn       string   `json:"showOn,omitempty"`
	BorderRadius *float64 `json:"borderRadius,omitempty"`
	Class        *string  `json:"class,omitempty"`
	Arrow        *bool    `json:"arrow,omitempty"`
}

// DecodeMessage parses and validates a client message.
func DecodeMessage(data []byte) (*ClientMessage, error) {
	var m ClientMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errs.New("T030").Wrap(err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *ClientMessage) validate() error {
	malformed := func(format string, args ...any) error {
		return errs.New("T030").WithDetail(fmt.Sprintf(format, args...))
	}

	switch m.Type {
	case MsgMount:
		for _, n := range m.Elements {
			if n.ID == "" {
				return malformed("mount: element without id")
			}
		}
		for _, a := range m.Anchors {
			if a.ID == "" {
				return malformed("mount: anchor without id")
			}
		}
	case MsgLayout:
	case MsgEvent:
		switch m.Event {
		case dom.EventPointerEnter, dom.EventPointerLeave:
			if m.Target == "" {
				return malformed("event %s: missing target", m.Event)
			}
		case dom.EventClick:
			if m.Target == "" && m.Point == nil {
				return malformed("event click: missing target and point")
			}
		case dom.EventScroll, dom.EventResize, dom.EventBlur:
		default:
			return malformed("event: unknown type %q", m.Event)
		}
	case MsgMeasure:
		if len(m.Sizes) == 0 {
			return malformed("measure: no sizes")
		}
	case MsgUnmount:
		if len(m.IDs) == 0 {
			return malformed("unmount: no ids")
		}
	case "":
		return malformed("missing type")
	default:
		return malformed("unknown type %q", m.Type)
	}
	return nil
}

// ServerMessage types.
const (
	ServerReady   = "ready"
	ServerPatches = "patches"
	ServerError   = "error"
)

// ServerMessage is a message sent to the browser.
type ServerMessage struct {
	Type    string  `json:"type"`
	Session string  `json:"session,omitempty"`
	Seq     uint64  `json:"seq,omitempty"`
	Patches []Patch `json:"patches,omitempty"`

	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// PatchOp is a DOM operation the browser applies.
type PatchOp string

const (
	OpInsert PatchOp = "insert"
	OpRemove PatchOp = "remove"
	OpStyle  PatchOp = "style"
)

// Patch is one DOM operation.
type Patch struct {
	Op PatchOp `json:"op"`
	ID string  `json:"id"`

	// insert
	After string `json:"after,omitempty"`
	HTML  string `json:"html,omitempty"`

	// style
	Set   map[string]string `json:"set,omitempty"`
	Clear []string          `json:"clear,omitempty"`
}

// errorMessage builds an error message for the client from err.
func errorMessage(err error) ServerMessage {
	msg := ServerMessage{Type: ServerError}
	if te := errs.FromError(err, "T030"); te != nil {
		msg.Code = te.Code
		msg.Message = te.Message
		if te.Detail != "" {
			msg.Message += ": " + te.Detail
		}
	}
	return msg
}

// Package bridge runs tooltips for a browser page on the server.
//
// The browser loads a small client (served at /client.js) that reports
// its anchors, their layout and the pointer, scroll, resize and blur
// events over a WebSocket. Each connection gets a Session that mirrors
// the page in an in-memory document and attaches a real tooltip to every
// anchor. Whatever the tooltips do to that document is sent back as
// patches the client applies to the live DOM.
//
// # Protocol
//
// Messages are JSON objects with a "type" field. The client sends:
//
//	mount    register elements and anchors with their tooltip config
//	layout   update element rectangles and the viewport
//	event    pointerenter, pointerleave, click, scroll, resize or blur
//	measure  report rendered sizes of tips and arrows
//	unmount  close the tooltips of the given anchors
//
// The server replies with "ready" once, then "patches" (insert, remove,
// style) and "error" messages. An inserted tip has no size until the
// client measures it, so the first placement happens on the measure
// message that follows the insert.
//
// All coordinates are page coordinates.
//
// # Usage
//
//	srv := bridge.New(&bridge.Config{Logger: logger})
//	http.ListenAndServe(":8080", srv.Routes())
package bridge

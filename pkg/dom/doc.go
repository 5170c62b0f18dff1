// Package dom defines the host document interfaces the tooltip controller
// is written against: elements with bounding rectangles and inline styles,
// a window with a viewport, and a dispatcher for pointer, click, scroll,
// resize and blur events.
//
// The memdom subpackage implements these interfaces in memory. It backs the
// tests and the remote bridge, which mirrors a browser page on the server.
package dom

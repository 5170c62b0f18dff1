// Package tooltip positions a tooltip next to an anchor element and keeps it
// there while the page scrolls and resizes.
//
// A tooltip is bound once per anchor with Attach. Options come from three
// layers: the built-in defaults, the ambient defaults provided on an owner
// with ProvideDefaults, and the call-site PartialOptions. Each layer replaces
// whole fields of the one before it.
//
//	owner := scope.NewOwner(nil)
//	tooltip.ProvideDefaults(owner, tooltip.Options{Padding: 4, Side: geometry.Bottom, BorderRadius: 5})
//
//	tip, err := tooltip.Attach(owner, host, button,
//	    tooltip.Text("Save the document").WithShowOn(tooltip.Click))
//	if err != nil {
//	    return err
//	}
//	defer owner.Dispose() // closes tip and releases its listeners
//
// # Triggers
//
// In Hover mode the tip is shown on pointerenter and removed on
// pointerleave. In Click mode it is shown on click and removed by a click
// outside both the anchor and the tip; one document listener is shared by
// all Click-mode tooltips of a document. Both modes reposition on window
// and container scroll and on resize, and hide on window blur.
//
// # Placement
//
// Every recalculation runs the modifiers Offset, Flip, Shift and Arrow in
// that order (see Pipeline). A tip or arrow that has not been laid out yet
// is skipped rather than placed at a bogus position.
package tooltip

// Package memdom is an in-memory implementation of the dom host interfaces.
//
// It has no layout engine. Element rectangles are set explicitly, and the
// left and top inline styles move an element when given in px. Every
// structural and style change is reported to observers as a Mutation, which
// lets a remote session mirror the document into a real browser.
//
//	doc := memdom.New(geometry.Rect{Width: 1024, Height: 768})
//	btn := doc.NewElement("button", "save")
//	btn.SetRect(geometry.Rect{X: 100, Y: 100, Width: 80, Height: 24})
//	doc.Append(doc.Body(), btn)
package memdom

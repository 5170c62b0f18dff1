// Package render converts VNode trees into HTML.
//
// It is used by remote hosts that ship tooltip markup to a browser:
//
//	html, err := render.HTML(vdom.Div(vdom.Class("tooltip"), vdom.Text("Saved")))
//
// Text and attribute values are escaped. Attributes are written in sorted
// order so the same tree always renders to the same bytes.
package render

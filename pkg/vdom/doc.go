// Package vdom provides the renderable content model used for tooltip
// bodies and arrow graphics.
//
// VNode is the building block representing elements, text and raw
// HTML. Props holds attributes. Elements are created using variadic
// factory functions:
//
//	Div(Class("hint"),
//	    Strong(Text("Shortcut")),
//	    Text(" Ctrl+K"),
//	)
package vdom

package vdom

// Text creates a text node. The renderer escapes it.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Raw creates a node whose text is written out as HTML unescaped. Only
// pass markup the page author controls.
func Raw(html string) *VNode {
	return &VNode{Kind: KindRaw, Text: html}
}

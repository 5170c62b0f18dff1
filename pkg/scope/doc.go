// Package scope provides owning scopes for resources with a lifetime tied
// to a part of the UI tree, and typed context values passed down that tree.
//
// Every component subtree gets an Owner. Resources register a cleanup with
// OnCleanup; disposing the Owner runs those cleanups exactly once, after
// disposing all child owners.
//
//	root := scope.NewOwner(nil)
//	child := scope.NewOwner(root)
//	child.OnCleanup(func() { release() })
//	root.Dispose() // runs release()
//
// Context values are provided on an Owner and looked up from any descendant:
//
//	var Theme = scope.CreateContext("theme", "light")
//	Theme.Provide(root, "dark")
//	Theme.Use(child) // "dark"
package scope

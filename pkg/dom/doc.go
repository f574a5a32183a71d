// Package dom is the in-process document model that weft renders into.
//
// A Document owns a tree of Nodes: HTML and SVG elements, text, comments,
// fragments and shadow roots. The model carries the state the reconciler
// cares about and nothing more: ordered attributes, expando properties,
// event listeners, form-control state (value, checked, selection range),
// focus, and private per-node slots used by the engine to attach metadata.
//
// # Tree mutation
//
// InsertBefore, AppendChild, ReplaceChild and RemoveChild follow the DOM
// rules: inserting a node that already has a parent moves it, and removing a
// subtree that contains the focused element clears the document's active
// element without dispatching blur, as browsers do.
//
// # Property surface
//
// Elements expose a set of JS-like properties. Standard elements get a fixed
// table (value, checked, textContent, and so on). Elements created from a
// definition registered with Document.Define carry a Go implementation value
// and its exported fields and setter methods become writable properties,
// while getter-only methods are read-only. Anything else assigned through
// SetProperty becomes an expando property.
//
// # HTML
//
// ParseFragment and OuterHTML/InnerHTML convert to and from HTML text using
// golang.org/x/net/html. Open shadow roots serialise as declarative
// <template shadowrootmode="open"> children.
package dom

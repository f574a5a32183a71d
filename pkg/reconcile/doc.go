// Package reconcile is the element factory and reconciliation engine.
//
// Render functions build their output with Factory.Create. Inside
// RunInContext each call is keyed (see GenerateKey) and looked up in the
// component's Cache: a hit patches the cached node's props and children in
// place against the metadata stored on the node, a miss creates and marks a
// new node. There is no separate virtual tree; the live nodes plus their
// metadata are the previous state.
//
//	out := reconcile.RunInContext(comp, func() *dom.Node {
//	    return f.Create("ul", nil,
//	        f.Create("li", reconcile.Props{"key": "a"}, "first"),
//	        f.Create("li", reconcile.Props{"key": "b"}, "second"),
//	    )
//	})
//
// Nodes the engine did not create, and nodes carrying PreserveAttr, are
// never removed or patched; the child reconciler keeps them behind the
// rendered output. CaptureFocusState and RestoreFocusState carry the
// focused control's caret and value across a pass.
//
// Problems are absorbed and logged as warnings with a registered code
// (W001-W009); nothing here returns an error to the render function.
package reconcile

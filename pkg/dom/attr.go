package dom

import "strings"

func (n *Node) attrName(name string) string {
	if n.ns == HTMLNamespace {
		return strings.ToLower(name)
	}
	return name
}

// GetAttribute returns the value of attribute name and whether it is set.
func (n *Node) GetAttribute(name string) (string, bool) {
	name = n.attrName(name)
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute reports whether attribute name is set.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

// SetAttribute sets attribute name to value. HTML attribute names are
// lowercased; SVG names keep their case.
func (n *Node) SetAttribute(name, value string) {
	if n.typ != ElementNode || name == "" {
		return
	}
	name = n.attrName(name)
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			n.attributeChanged(name, value, true)
			return
		}
	}
	n.attrs = append(n.attrs, Attribute{Name: name, Value: value})
	n.attributeChanged(name, value, true)
}

// RemoveAttribute removes attribute name if present.
func (n *Node) RemoveAttribute(name string) {
	name = n.attrName(name)
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			n.attributeChanged(name, "", false)
			return
		}
	}
}

// Attributes returns a copy of n's attributes in insertion order.
func (n *Node) Attributes() []Attribute {
	out := make([]Attribute, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// attributeChanged keeps content attributes that have a default-state
// meaning in sync with form state that has not been touched through the
// property API, the way the HTML "dirty" flags work.
func (n *Node) attributeChanged(name, value string, present bool) {
	switch name {
	case "value":
		if !n.form.valueDirty && (n.tag == "input" || n.tag == "option") {
			n.form.value = value
		}
	case "checked":
		if !n.form.checkedDirty {
			n.form.checked = present
		}
	case "selected":
		if n.tag == "option" && !n.form.selectedDirty {
			n.form.selected = present
		}
	case "disabled":
		n.form.disabled = present
	case "readonly":
		n.form.readOnly = present
	}
}

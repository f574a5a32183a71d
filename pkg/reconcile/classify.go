package reconcile

import (
	"strings"

	"github.com/vango-dev/weft/pkg/dom"
)

// Classification is how a prop is written to an element.
type Classification int

const (
	// Attribute writes through SetAttribute.
	Attribute Classification = iota
	// Property assigns the element's writable property.
	Property
	// ReadonlyFallback means the element exposes the property read-only,
	// so the value is written as an attribute instead.
	ReadonlyFallback
)

func (c Classification) String() string {
	switch c {
	case Property:
		return "property"
	case ReadonlyFallback:
		return "readonly-fallback"
	default:
		return "attribute"
	}
}

var standardAttributes = func() map[string]struct{} {
	names := []string{
		// global
		"accesskey", "autocapitalize", "autofocus", "class", "contenteditable",
		"dir", "draggable", "enterkeyhint", "hidden", "id", "inert", "inputmode",
		"is", "itemid", "itemprop", "itemref", "itemscope", "itemtype", "lang",
		"nonce", "part", "popover", "role", "slot", "spellcheck", "style",
		"tabindex", "title", "translate",
		// forms
		"accept", "accept-charset", "action", "autocomplete", "checked", "cols",
		"dirname", "disabled", "enctype", "for", "form", "formaction",
		"formenctype", "formmethod", "formnovalidate", "formtarget", "list",
		"max", "maxlength", "method", "min", "minlength", "multiple", "name",
		"novalidate", "pattern", "placeholder", "readonly", "required", "rows",
		"selected", "size", "step", "type", "value", "wrap",
		// links and media
		"alt", "async", "autoplay", "controls", "crossorigin", "decoding",
		"defer", "download", "height", "href", "hreflang", "integrity",
		"loading", "loop", "media", "muted", "ping", "poster", "preload",
		"referrerpolicy", "rel", "sandbox", "sizes", "src", "srcdoc", "srclang",
		"srcset", "target", "width",
		// tables and misc
		"abbr", "charset", "cite", "colspan", "content", "coords", "datetime",
		"headers", "high", "http-equiv", "kind", "label", "low", "open",
		"optimum", "reversed", "rowspan", "scope", "shape", "span", "start",
		"summary", "usemap",
	}
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}()

// IsStandardAttribute reports whether name is an HTML attribute name the
// reconciler always writes with SetAttribute.
func IsStandardAttribute(name string) bool {
	lower := strings.ToLower(name)
	if _, ok := standardAttributes[lower]; ok {
		return true
	}
	for _, p := range []string{"data-", "aria-", "xml:", "xlink:"} {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// Classify decides how prop name is written to n. Standard attributes and
// anything on an SVG element are attributes; otherwise the element's
// property surface is inspected. Inspection is best-effort for elements whose
// implementation is not reflectable.
func Classify(n *dom.Node, name string) Classification {
	if IsStandardAttribute(name) || n.IsSVG() {
		return Attribute
	}
	desc, ok := n.LookupProperty(name)
	switch {
	case !ok:
		return Attribute
	case desc.Writable:
		return Property
	default:
		return ReadonlyFallback
	}
}

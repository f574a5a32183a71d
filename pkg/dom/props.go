package dom

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

var (
	// ErrReadOnlyProperty is returned when assigning a getter-only property.
	ErrReadOnlyProperty = errors.New("dom: property is read-only")

	// ErrPropertyType is returned when a value cannot be assigned to a typed
	// custom element property.
	ErrPropertyType = errors.New("dom: value type not assignable to property")
)

// PropertyDescriptor describes a property exposed by an element.
type PropertyDescriptor struct {
	Name     string
	Writable bool
	// Expando is true for ad-hoc properties created by SetProperty.
	Expando bool
}

type builtinProp struct {
	writable bool
	get      func(n *Node) any
	set      func(n *Node, v any)
}

func reflected(attr string) builtinProp {
	return builtinProp{
		writable: true,
		get: func(n *Node) any {
			v, _ := n.GetAttribute(attr)
			return v
		},
		set: func(n *Node, v any) { n.SetAttribute(attr, toString(v)) },
	}
}

func reflectedBool(attr string) builtinProp {
	return builtinProp{
		writable: true,
		get:      func(n *Node) any { return n.HasAttribute(attr) },
		set:      func(n *Node, v any) { n.toggleAttr(attr, toBool(v)) },
	}
}

func readOnly(get func(n *Node) any) builtinProp {
	return builtinProp{get: get}
}

var commonProps = map[string]builtinProp{
	"id":              reflected("id"),
	"className":       reflected("class"),
	"title":           reflected("title"),
	"lang":            reflected("lang"),
	"dir":             reflected("dir"),
	"slot":            reflected("slot"),
	"accessKey":       reflected("accesskey"),
	"contentEditable": reflected("contenteditable"),
	"draggable":       reflected("draggable"),
	"tabIndex":        reflected("tabindex"),
	"hidden":          reflectedBool("hidden"),
	"textContent": {
		writable: true,
		get:      func(n *Node) any { return n.TextContent() },
		set:      func(n *Node, v any) { n.SetTextContent(toString(v)) },
	},
	"innerHTML": {
		writable: true,
		get:      func(n *Node) any { return n.InnerHTML() },
		set:      func(n *Node, v any) { _ = n.SetInnerHTML(toString(v)) },
	},
	"scrollTop": {
		writable: true,
		get:      func(n *Node) any { return n.ScrollTop() },
		set: func(n *Node, v any) {
			f, _ := strconv.ParseFloat(toString(v), 64)
			n.SetScrollTop(f)
		},
	},

	"tagName":         readOnly(func(n *Node) any { return strings.ToUpper(n.tag) }),
	"nodeName":        readOnly(func(n *Node) any { return strings.ToUpper(n.tag) }),
	"localName":       readOnly(func(n *Node) any { return n.tag }),
	"namespaceURI":    readOnly(func(n *Node) any { return string(n.ns) }),
	"parentNode":      readOnly(func(n *Node) any { return n.parent }),
	"parentElement":   readOnly(func(n *Node) any { return n.parent }),
	"childNodes":      readOnly(func(n *Node) any { return n.ChildNodes() }),
	"children":        readOnly(func(n *Node) any { return n.Elements() }),
	"firstChild":      readOnly(func(n *Node) any { return n.FirstChild() }),
	"lastChild":       readOnly(func(n *Node) any { return n.LastChild() }),
	"nextSibling":     readOnly(func(n *Node) any { return n.NextSibling() }),
	"previousSibling": readOnly(func(n *Node) any { return n.PreviousSibling() }),
	"ownerDocument":   readOnly(func(n *Node) any { return n.doc }),
	"isConnected":     readOnly(func(n *Node) any { return n.IsConnected() }),
	"shadowRoot":      readOnly(func(n *Node) any { return n.shadow }),
	"attributes":      readOnly(func(n *Node) any { return n.Attributes() }),
	"classList":       readOnly(func(n *Node) any { v, _ := n.GetAttribute("class"); return strings.Fields(v) }),
	"clientWidth":     readOnly(func(n *Node) any { return 0 }),
	"clientHeight":    readOnly(func(n *Node) any { return 0 }),
	"offsetWidth":     readOnly(func(n *Node) any { return 0 }),
	"offsetHeight":    readOnly(func(n *Node) any { return 0 }),
}

var valueProp = builtinProp{
	writable: true,
	get:      func(n *Node) any { return n.Value() },
	set:      func(n *Node, v any) { n.SetValue(toString(v)) },
}

var disabledProp = builtinProp{
	writable: true,
	get:      func(n *Node) any { return n.Disabled() },
	set:      func(n *Node, v any) { n.SetDisabled(toBool(v)) },
}

var readOnlyProp = builtinProp{
	writable: true,
	get:      func(n *Node) any { return n.ReadOnly() },
	set:      func(n *Node, v any) { n.SetReadOnly(toBool(v)) },
}

var selectionProps = map[string]builtinProp{
	"selectionStart": {
		writable: true,
		get:      func(n *Node) any { return n.SelectionStart() },
		set: func(n *Node, v any) {
			i, _ := strconv.Atoi(toString(v))
			n.SetSelectionRange(i, n.SelectionEnd())
		},
	},
	"selectionEnd": {
		writable: true,
		get:      func(n *Node) any { return n.SelectionEnd() },
		set: func(n *Node, v any) {
			i, _ := strconv.Atoi(toString(v))
			n.SetSelectionRange(n.SelectionStart(), i)
		},
	},
}

var tagProps = map[string]map[string]builtinProp{
	"input": merge(selectionProps, map[string]builtinProp{
		"value":    valueProp,
		"disabled": disabledProp,
		"readOnly": readOnlyProp,
		"checked": {
			writable: true,
			get:      func(n *Node) any { return n.Checked() },
			set:      func(n *Node, v any) { n.SetChecked(toBool(v)) },
		},
		"defaultValue": reflected("value"),
		"type":         reflected("type"),
		"name":         reflected("name"),
		"placeholder":  reflected("placeholder"),
		"min":          reflected("min"),
		"max":          reflected("max"),
		"step":         reflected("step"),
		"required":     reflectedBool("required"),
		"multiple":     reflectedBool("multiple"),
		"form":         readOnly(func(n *Node) any { return nil }),
		"validity":     readOnly(func(n *Node) any { return nil }),
		"labels":       readOnly(func(n *Node) any { return nil }),
		"list":         readOnly(func(n *Node) any { return nil }),
	}),
	"textarea": merge(selectionProps, map[string]builtinProp{
		"value":       valueProp,
		"disabled":    disabledProp,
		"readOnly":    readOnlyProp,
		"rows":        reflected("rows"),
		"cols":        reflected("cols"),
		"name":        reflected("name"),
		"placeholder": reflected("placeholder"),
		"form":        readOnly(func(n *Node) any { return nil }),
	}),
	"select": {
		"value":    valueProp,
		"disabled": disabledProp,
		"multiple": reflectedBool("multiple"),
		"name":     reflected("name"),
		"selectedIndex": {
			writable: true,
			get:      func(n *Node) any { return n.SelectedIndex() },
			set: func(n *Node, v any) {
				i, _ := strconv.Atoi(toString(v))
				n.SetSelectedIndex(i)
			},
		},
		"options": readOnly(func(n *Node) any { return n.Options() }),
		"form":    readOnly(func(n *Node) any { return nil }),
	},
	"option": {
		"value":    valueProp,
		"disabled": disabledProp,
		"label":    reflected("label"),
		"text": {
			writable: true,
			get:      func(n *Node) any { return n.TextContent() },
			set:      func(n *Node, v any) { n.SetTextContent(toString(v)) },
		},
		"selected": {
			writable: true,
			get:      func(n *Node) any { return n.Selected() },
			set:      func(n *Node, v any) { n.SetSelected(toBool(v)) },
		},
	},
	"button": {
		"disabled": disabledProp,
		"type":     reflected("type"),
		"name":     reflected("name"),
		"value":    reflected("value"),
	},
	"a": {
		"href":   reflected("href"),
		"target": reflected("target"),
		"rel":    reflected("rel"),
	},
	"img": {
		"src":    reflected("src"),
		"alt":    reflected("alt"),
		"width":  reflected("width"),
		"height": reflected("height"),
	},
	"label": {
		"htmlFor": reflected("for"),
	},
}

func merge(ms ...map[string]builtinProp) map[string]builtinProp {
	out := make(map[string]builtinProp)
	for _, m := range ms {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func (n *Node) builtin(name string) (builtinProp, bool) {
	if n.typ != ElementNode {
		return builtinProp{}, false
	}
	if n.ns == HTMLNamespace {
		if p, ok := tagProps[n.tag][name]; ok {
			return p, true
		}
	}
	p, ok := commonProps[name]
	return p, ok
}

// LookupProperty reports whether n exposes a property called name and
// whether it can be assigned. Custom element implementations are consulted
// first, then the built-in table, then expando properties.
func (n *Node) LookupProperty(name string) (PropertyDescriptor, bool) {
	if n.typ != ElementNode || name == "" {
		return PropertyDescriptor{}, false
	}
	if m, ok := lookupImpl(n.impl, name); ok {
		return PropertyDescriptor{Name: name, Writable: m.writable()}, true
	}
	if p, ok := n.builtin(name); ok {
		return PropertyDescriptor{Name: name, Writable: p.writable}, true
	}
	if _, ok := n.props[name]; ok {
		return PropertyDescriptor{Name: name, Writable: true, Expando: true}, true
	}
	return PropertyDescriptor{}, false
}

// Property returns the value of property name.
func (n *Node) Property(name string) (any, bool) {
	if m, ok := lookupImpl(n.impl, name); ok {
		return m.get(), true
	}
	if p, ok := n.builtin(name); ok {
		return p.get(n), true
	}
	v, ok := n.props[name]
	return v, ok
}

// SetProperty assigns property name. Unknown names become expando
// properties holding v as-is.
func (n *Node) SetProperty(name string, v any) error {
	if n.typ != ElementNode {
		return fmt.Errorf("dom: set property %q on %s node", name, n.typ)
	}
	if m, ok := lookupImpl(n.impl, name); ok {
		return m.set(v)
	}
	if p, ok := n.builtin(name); ok {
		if !p.writable {
			return fmt.Errorf("%w: %s", ErrReadOnlyProperty, name)
		}
		p.set(n, v)
		return nil
	}
	if n.props == nil {
		n.props = make(map[string]any)
	}
	n.props[name] = v
	return nil
}

// DeleteProperty removes an expando property. Built-in and implementation
// properties cannot be deleted.
func (n *Node) DeleteProperty(name string) bool {
	if _, ok := n.props[name]; !ok {
		return false
	}
	delete(n.props, name)
	return true
}

// implMember is a property found on a custom element implementation.
type implMember struct {
	field  reflect.Value
	getter reflect.Value
	setter reflect.Value
}

func (m implMember) writable() bool {
	return (m.field.IsValid() && m.field.CanSet()) || m.setter.IsValid()
}

func (m implMember) get() any {
	if m.field.IsValid() {
		return m.field.Interface()
	}
	if m.getter.IsValid() {
		return m.getter.Call(nil)[0].Interface()
	}
	return nil
}

func (m implMember) set(v any) error {
	if m.field.IsValid() && m.field.CanSet() {
		rv, err := assignable(v, m.field.Type())
		if err != nil {
			return err
		}
		m.field.Set(rv)
		return nil
	}
	if m.setter.IsValid() {
		rv, err := assignable(v, m.setter.Type().In(0))
		if err != nil {
			return err
		}
		m.setter.Call([]reflect.Value{rv})
		return nil
	}
	return ErrReadOnlyProperty
}

func assignable(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if isNumeric(rv.Kind()) && isNumeric(t.Kind()) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s into %s", ErrPropertyType, rv.Type(), t)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// lookupImpl finds a property on a custom element implementation. Exported
// fields match by `prop` struct tag or case-insensitive name. Methods
// Name() and SetName(v) form a getter/setter pair; a getter alone is
// read-only.
func lookupImpl(impl any, name string) (implMember, bool) {
	if impl == nil || name == "" {
		return implMember{}, false
	}
	v := reflect.ValueOf(impl)
	var m implMember
	if v.Kind() == reflect.Pointer && v.Elem().Kind() == reflect.Struct {
		s := v.Elem()
		t := s.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			tag := f.Tag.Get("prop")
			if tag == "-" {
				continue
			}
			if tag == name || (tag == "" && strings.EqualFold(f.Name, name)) {
				m.field = s.Field(i)
				return m, true
			}
		}
	}
	exported := upperFirst(name)
	if g := v.MethodByName(exported); g.IsValid() && g.Type().NumIn() == 0 && g.Type().NumOut() == 1 {
		m.getter = g
	}
	if s := v.MethodByName("Set" + exported); s.IsValid() && s.Type().NumIn() == 1 {
		m.setter = s
	}
	if m.getter.IsValid() || m.setter.IsValid() {
		return m, true
	}
	return implMember{}, false
}

func upperFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func toBool(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}

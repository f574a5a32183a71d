package demo

import (
	"slices"
	"strconv"
	"strings"

	"github.com/vango-dev/weft/pkg/component"
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/reconcile"
)

type todoItem struct {
	ID   int
	Text string
	Done bool
}

// newTodo is a keyed list with an input for new items. After the first
// pass a widget outside the engine's control is appended to the list to
// show that it survives later passes.
func newTodo(env Env) *Demo {
	d := &Demo{}
	var (
		items  *component.State[[]todoItem]
		draft  *component.State[string]
		nextID = 1
	)

	add := func() {
		text := strings.TrimSpace(draft.Get())
		if text == "" {
			return
		}
		component.Batch(func() {
			items.Update(func(list []todoItem) []todoItem {
				return append(slices.Clone(list), todoItem{ID: nextID, Text: text})
			})
			draft.Set("")
		})
		nextID++
	}
	toggle := func(id int) func() {
		return func() {
			items.Update(func(list []todoItem) []todoItem {
				out := slices.Clone(list)
				for i := range out {
					if out[i].ID == id {
						out[i].Done = !out[i].Done
					}
				}
				return out
			})
		}
	}
	remove := func(id int) func() {
		return func() {
			items.Update(func(list []todoItem) []todoItem {
				return slices.DeleteFunc(slices.Clone(list), func(t todoItem) bool { return t.ID == id })
			})
		}
	}

	render := func(f *reconcile.Factory) *dom.Node {
		rows := make([]any, 0, len(items.Get()))
		done := 0
		for _, it := range items.Get() {
			if it.Done {
				done++
			}
			id := strconv.Itoa(it.ID)
			rows = append(rows, f.Create("li", reconcile.Props{"key": it.ID, "class": cls(it.Done)},
				f.Create("input", reconcile.Props{
					"type":            "checkbox",
					"checked":         it.Done,
					reconcile.KeyAttr: "toggle-" + id,
					"onClick":         toggle(it.ID),
				}),
				f.Create("span", nil, it.Text),
				f.Create("button", reconcile.Props{reconcile.KeyAttr: "remove-" + id, "onClick": remove(it.ID)}, "×"),
			))
		}

		return f.Create("section", reconcile.Props{"class": "todo"},
			f.Create("form", nil,
				f.Create("input", reconcile.Props{
					reconcile.KeyAttr: "new",
					"placeholder":     "What needs doing?",
					"value":           draft.Get(),
					"onInput":         func(ev *dom.Event) { draft.Set(ev.Target.Value()) },
				}),
				f.Create("button", reconcile.Props{reconcile.KeyAttr: "add", "type": "button", "onClick": add}, "Add"),
			),
			f.Create("ul", reconcile.Props{"key": "list"}, rows),
			f.Create("p", reconcile.Props{"class": "summary"}, done, " of ", len(items.Get()), " done"),
		)
	}

	injected := false
	inject := func() {
		if injected {
			return
		}
		list := d.Host.Root().QuerySelectorAttr("class", "todo")
		if list == nil {
			return
		}
		ul := list.ChildAt(1)
		widget := env.Doc.CreateElement("div")
		widget.SetAttribute("class", "third-party")
		widget.SetTextContent("injected by a script the engine does not own")
		ul.AppendChild(widget)
		injected = true
	}

	d.Host = component.New(env.Doc, env.Loop, "TodoList", render,
		env.hostOptions(component.WithUpdated(inject))...)
	items = component.NewState[[]todoItem](d.Host, nil)
	draft = component.NewState(d.Host, "")

	d.Steps = []Step{
		{"type \"Write docs\"", func(d *Demo) { d.Dispatch("input", "new", "Write docs") }},
		{"add", func(d *Demo) { d.Dispatch("click", "add", nil) }},
		{"type \"Ship\"", func(d *Demo) { d.Dispatch("input", "new", "Ship") }},
		{"add", func(d *Demo) { d.Dispatch("click", "add", nil) }},
		{"toggle item 1", func(d *Demo) { d.Dispatch("click", "toggle-1", nil) }},
		{"focus the input and type \"Celebrate\"", func(d *Demo) {
			d.Dispatch("focus", "new", nil)
			d.Dispatch("input", "new", "Celebrate")
		}},
		{"blur the input", func(d *Demo) { d.Dispatch("blur", "new", nil) }},
		{"add", func(d *Demo) { d.Dispatch("click", "add", nil) }},
		{"remove item 2", func(d *Demo) { d.Dispatch("click", "remove-2", nil) }},
	}
	return d
}

func cls(done bool) any {
	if done {
		return "done"
	}
	return nil
}

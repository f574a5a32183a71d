package demo

import (
	"strconv"

	"github.com/vango-dev/weft/pkg/component"
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/reconcile"
)

const monthDays = 31

// newCalendar shows seven consecutive days starting at a day of a 31-day
// month, wrapping into the next month. Days render as bare sibling text
// nodes.
func newCalendar(env Env) *Demo {
	d := &Demo{}
	var start *component.State[int]

	d.Host = component.New(env.Doc, env.Loop, "Calendar", func(f *reconcile.Factory) *dom.Node {
		days := make([]string, 7)
		for i := range days {
			days[i] = strconv.Itoa((start.Get()+i-1)%monthDays + 1)
		}
		shift := func(n int) func() {
			return func() {
				start.Update(func(s int) int { return (s+n-1+monthDays)%monthDays + 1 })
			}
		}
		return f.Create("section", reconcile.Props{"class": "calendar"},
			f.Create("nav", nil,
				f.Create("button", reconcile.Props{reconcile.KeyAttr: "prev", "onClick": shift(-7)}, "‹"),
				f.Create("button", reconcile.Props{reconcile.KeyAttr: "next", "onClick": shift(7)}, "›"),
			),
			f.Create("div", reconcile.Props{"class": "days"}, days),
		)
	}, env.hostOptions()...)
	start = component.NewState(d.Host, 28)

	d.Steps = []Step{
		{"next week", func(d *Demo) { d.Dispatch("click", "next", nil) }},
		{"next week", func(d *Demo) { d.Dispatch("click", "next", nil) }},
		{"previous week", func(d *Demo) { d.Dispatch("click", "prev", nil) }},
	}
	return d
}

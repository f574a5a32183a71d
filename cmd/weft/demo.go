package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weft/internal/demo"
	"github.com/vango-dev/weft/internal/errors"
)

func demoCmd(g *globalFlags) *cobra.Command {
	var finalOnly bool

	cmd := &cobra.Command{
		Use:   "demo [name]",
		Short: "Run a demo component headless",
		Long: `Run a demo component without a browser.

The demo is mounted into an in-process DOM and its scripted
interactions are played one by one. The render root's HTML is
printed after each step. Without a name the demos are listed.

Examples:
  weft demo
  weft demo calendar
  weft demo todo --final`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				listDemos(w)
				return nil
			}
			a, err := g.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			step := 0
			d, err := a.runHeadless(args[0], func(label, html string) {
				if !finalOnly {
					fmt.Fprintf(w, "── %d. %s\n%s\n\n", step, label, html)
				}
				step++
			})
			if err != nil {
				return err
			}
			if finalOnly {
				fmt.Fprintln(w, d.Host.HTML())
				return nil
			}
			success(w, "%s: %d steps, %d render passes", d.Name, len(d.Steps), d.Host.Scheduler().Passes())
			return nil
		},
	}

	cmd.Flags().BoolVar(&finalOnly, "final", false, "Print only the HTML after the last step")

	return cmd
}

func listDemos(w io.Writer) {
	fmt.Fprintln(w, "Available demos:")
	for _, n := range demo.Names() {
		fmt.Fprintf(w, "  %-10s %s\n", n, demo.Describe(n))
	}
}

func requireDemo(name string) error {
	for _, n := range demo.Names() {
		if n == name {
			return nil
		}
	}
	return errors.New("E080").WithDetail("unknown demo " + name)
}

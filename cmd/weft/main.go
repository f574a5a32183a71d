package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vango-dev/weft/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦ ╦┌─┐┌─┐┌┬┐
  ║║║├┤ ├┤  │
  ╚╩╝└─┘└   ┴
`

// colors is false when stdout is not a terminal.
var colors = true

func main() {
	if !terminal(os.Stdout) {
		colors = false
	}
	if !terminal(os.Stderr) {
		errors.DisableColors()
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and reports a failure on stderr in the
// format chosen by --error-format.
func run(args []string, stdout, stderr io.Writer) int {
	var g globalFlags
	cmd := newRootCmdWith(&g)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		errors.Fprint(stderr, err, g.errorFormat)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	return newRootCmdWith(&g)
}

func newRootCmdWith(g *globalFlags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "weft",
		Short: "Keyed DOM reconciliation for Web Components",
		Long: `weft renders Web Components into a live DOM without a virtual DOM.

Elements are cached per component and per key, updated in place
between render passes, and never thrown away while the user is
typing into them. This tool runs the bundled demo components
headless, serves them to a browser, and keeps golden snapshots
of their output.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(errors.Outputs(), g.errorFormat) {
				format := g.errorFormat
				g.errorFormat = errors.OutputText
				return errors.New("E040").
					WithDetail("unknown error format " + format).
					WithSuggestion("Use " + strings.Join(errors.Outputs(), ", "))
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.dir, "dir", "C", ".", "Project directory (weft.json is looked up from here)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable development diagnostics")
	rootCmd.PersistentFlags().BoolVar(&g.trace, "trace", false, "Write render pass spans to stderr")
	rootCmd.PersistentFlags().StringVar(&g.errorFormat, "error-format", errors.OutputText, "Error output: text, compact or json")

	rootCmd.AddCommand(
		demoCmd(g),
		serveCmd(g),
		snapshotCmd(g),
		versionCmd(),
	)
	return rootCmd
}

func terminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func paint(code, text string) string {
	if !colors {
		return text
	}
	return "\033[" + code + "m" + text + "\033[0m"
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint("32", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint("33", "⚠"), fmt.Sprintf(format, args...))
}

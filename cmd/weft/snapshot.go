package main

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/sourcegraph/go-diff/diff"
	"github.com/spf13/cobra"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/snapshot"
)

func snapshotCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage golden snapshots of demo output",
		Long: `Save, inspect and compare golden snapshots.

A snapshot is the render root's HTML after a demo's script has
run. Snapshots live in the store configured under "snapshot" in
weft.json: a local directory (default) or an S3 bucket.`,
	}

	cmd.AddCommand(
		snapshotSaveCmd(g),
		snapshotShowCmd(g),
		snapshotListCmd(g),
		snapshotDiffCmd(g),
		snapshotDeleteCmd(g),
	)
	return cmd
}

// openStore sets up the command and opens the configured store.
func openStore(g *globalFlags, cmd *cobra.Command) (*app, snapshot.Store, error) {
	a, err := g.setup(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	s, err := snapshot.Open(a.cfg, a.metrics)
	if err != nil {
		return nil, nil, err
	}
	return a, s, nil
}

// storeError maps store errors to coded errors.
func storeError(err error, name string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, snapshot.ErrNotFound):
		return errors.New("E060").
			WithDetail("no snapshot named " + name).
			WithSuggestion("Run `weft snapshot list` to see stored snapshots")
	case stderrors.Is(err, snapshot.ErrInvalidName):
		return errors.New("E062").WithDetail(err.Error())
	default:
		return errors.FromError(err, "E061")
	}
}

func snapshotSaveCmd(g *globalFlags) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "save <demo>",
		Short: "Run a demo and store its final HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDemo(args[0]); err != nil {
				return err
			}
			a, s, err := openStore(g, cmd)
			if err != nil {
				return err
			}
			defer a.close()
			if name == "" {
				name = args[0]
			}

			d, err := a.runHeadless(args[0], func(string, string) {})
			if err != nil {
				return err
			}
			snap := &snapshot.Snapshot{
				Name:      name,
				Component: d.Host.ComponentID(),
				HTML:      d.Host.HTML(),
				Passes:    d.Host.Scheduler().Passes(),
				CreatedAt: time.Now().UTC(),
			}
			if err := s.Save(cmd.Context(), snap); err != nil {
				return storeError(err, name)
			}
			success(cmd.OutOrStdout(), "Saved %s (%s, %d passes)", name, snap.Component, snap.Passes)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Snapshot name (default: the demo name)")
	return cmd
}

func snapshotShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, s, err := openStore(g, cmd)
			if err != nil {
				return err
			}
			defer a.close()
			snap, err := s.Load(cmd.Context(), args[0])
			if err != nil {
				return storeError(err, args[0])
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# %s  %s  %d passes  %s\n", snap.Name, snap.Component, snap.Passes, snap.CreatedAt.Format(time.RFC3339))
			fmt.Fprintln(w, snap.HTML)
			return nil
		},
	}
}

func snapshotListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, s, err := openStore(g, cmd)
			if err != nil {
				return err
			}
			defer a.close()
			names, err := s.List(cmd.Context())
			if err != nil {
				return storeError(err, "")
			}
			w := cmd.OutOrStdout()
			if len(names) == 0 {
				warn(w, "No snapshots stored")
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(w, n)
			}
			return nil
		},
	}
}

func snapshotDiffCmd(g *globalFlags) *cobra.Command {
	var (
		demoName string
		context  int
	)

	cmd := &cobra.Command{
		Use:   "diff <name>",
		Short: "Compare a stored snapshot with a fresh render",
		Long: `Run a demo again and compare its final HTML with a stored
snapshot. The demo defaults to the snapshot name. Exits non-zero
when the output changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if demoName == "" {
				demoName = name
			}
			if err := requireDemo(demoName); err != nil {
				return err
			}
			a, s, err := openStore(g, cmd)
			if err != nil {
				return err
			}
			defer a.close()
			stored, err := s.Load(cmd.Context(), name)
			if err != nil {
				return storeError(err, name)
			}
			d, err := a.runHeadless(demoName, func(string, string) {})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fd := snapshot.Unified(name, demoName+" (render)", stored.HTML, d.Host.HTML(), context)
			if fd == nil {
				success(w, "%s matches", name)
				return nil
			}
			out, err := diff.PrintFileDiff(fd)
			if err != nil {
				return err
			}
			w.Write(out)
			st := fd.Stat()
			return errors.New("E063").
				WithDetail(fmt.Sprintf("%s differs from a fresh render of %s (%d added, %d removed, %d changed)",
					name, demoName, st.Added, st.Deleted, st.Changed)).
				WithSuggestion(fmt.Sprintf("Run `weft snapshot save %s --name %s` to accept the change", demoName, name))
		},
	}

	cmd.Flags().StringVar(&demoName, "demo", "", "Demo to render (default: the snapshot name)")
	cmd.Flags().IntVarP(&context, "context", "U", snapshot.DefaultContext, "Unchanged lines shown around each change")
	return cmd
}

func snapshotDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, s, err := openStore(g, cmd)
			if err != nil {
				return err
			}
			defer a.close()
			if err := s.Delete(cmd.Context(), args[0]); err != nil {
				return storeError(err, args[0])
			}
			success(cmd.OutOrStdout(), "Deleted %s", args[0])
			return nil
		},
	}
}

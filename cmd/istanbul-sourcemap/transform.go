package main

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	istanbul "github.com/canyon-project/istanbul-sourcemap"
)

func (a *app) newTransformCommand() *cobra.Command {
	var (
		output string
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "transform [files...]",
		Short: "Remap coverage files onto their original sources",
		Long: `Reads Istanbul coverage JSON from the named files, or from standard input if
none are named, remaps every entry that carries an inputSourceMap and writes
the combined result. Files ending in .gz are read and written gzipped.

If the same entry appears in several input files, the first one wins.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.remapper(cmd.Flags())
			if err != nil {
				return err
			}
			run := func() error {
				return a.transform(r, args, output, cmd.InOrStdin(), cmd.OutOrStdout())
			}
			if !watch {
				return run()
			}
			if len(args) == 0 {
				return errors.New("--watch needs input files")
			}
			return a.watch(cmd.Context(), args, run)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result to `file` instead of stdout")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "transform again whenever an input file changes")
	addRemapFlags(cmd.Flags())
	return cmd
}

func (a *app) transform(r *istanbul.Remapper, paths []string, output string, stdin io.Reader, stdout io.Writer) error {
	in, err := a.loadInputs(paths, stdin)
	if err != nil {
		return err
	}
	res, err := r.Transform(in)
	if err != nil {
		return err
	}
	if n := len(res.Skipped); n > 0 {
		a.log.Warnf("%d file(s) passed through with undecodable source maps.", n)
	}
	if err := writeCoverage(output, res.Coverage, stdout); err != nil {
		return err
	}
	a.log.WithField("files", len(res.Coverage)).Debug("Transform done.")
	return nil
}

// watch calls fn, and calls it again each time one of paths is written,
// until ctx is done. Failures of fn are logged and don't stop watching.
func (a *app) watch(ctx context.Context, paths []string, fn func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer w.Close()
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			return errors.Wrapf(err, "failed to watch %s", p)
		}
	}

	for {
		if err := fn(); err != nil {
			a.log.Error(err)
		}
		a.log.Info("Watching for changes...")
		changed, err := a.waitForChange(ctx, w)
		if err != nil || !changed {
			return err
		}
	}
}

// waitForChange blocks until a watched file changes. It reports false when
// ctx is done or the watcher is closed.
func (a *app) waitForChange(ctx context.Context, w *fsnotify.Watcher) (bool, error) {
	for {
		select {
		case <-ctx.Done():
			return false, nil
		case ev, ok := <-w.Events:
			if !ok {
				return false, nil
			}
			switch {
			case ev.Op&(fsnotify.Write|fsnotify.Create) != 0:
			case ev.Op&(fsnotify.Rename|fsnotify.Remove) != 0:
				// Editors often replace files on save, which drops the watch.
				if err := w.Add(ev.Name); err != nil {
					a.log.WithField("file", ev.Name).Warnf("Stopped watching: %s", err)
					continue
				}
			default:
				continue
			}
			a.log.WithField("file", ev.Name).Info("Change detected.")
			return true, nil
		case err, ok := <-w.Errors:
			if !ok {
				return false, nil
			}
			return false, errors.Wrap(err, "file watcher failed")
		}
	}
}

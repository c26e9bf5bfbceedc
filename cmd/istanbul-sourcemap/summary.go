package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/canyon-project/istanbul-sourcemap/coverage"
)

func (a *app) newSummaryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [files...]",
		Short: "Print a per-file coverage table of the remapped coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.remapper(cmd.Flags())
			if err != nil {
				return err
			}
			in, err := a.loadInputs(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			res, err := r.Transform(in)
			if err != nil {
				return err
			}
			renderSummary(cmd.OutOrStdout(), res.Coverage)
			return nil
		},
	}
	addRemapFlags(cmd.Flags())
	return cmd
}

func renderSummary(w io.Writer, m coverage.CoverageMap) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"File", "Statements", "Functions", "Branches"})

	paths := maps.Keys(m)
	slices.Sort(paths)
	var total coverage.Summary
	for _, path := range paths {
		s := m[path].Summarize()
		total.Add(s)
		t.AppendRow(table.Row{path, s.Statements, s.Functions, s.Branches})
	}
	t.AppendFooter(table.Row{"Total", total.Statements, total.Functions, total.Branches})
	t.Render()
}

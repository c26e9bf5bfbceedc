package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	istanbul "github.com/canyon-project/istanbul-sourcemap"
	"github.com/canyon-project/istanbul-sourcemap/internal/errorList"
)

func (a *app) newCheckCommand() *cobra.Command {
	var maxErrors int
	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Report every embedded source map that fails to decode",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.loadInputs(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			// Failures are reported below, not as they're found.
			quiet := log.New()
			quiet.SetOutput(a.log.Out)
			quiet.SetLevel(log.ErrorLevel)
			r, err := istanbul.NewWithOptions(istanbul.Options{Lenient: true, Logger: quiet})
			if err != nil {
				return err
			}
			res, err := r.Transform(in)
			if err != nil {
				return err
			}

			var errs errorList.ErrorList
			for _, err := range res.Skipped {
				errs = errs.Append(err)
			}
			if err := errs.Trim(maxErrors).ErrOrNil(); err != nil {
				return err
			}

			total := 0
			for _, fc := range in {
				if fc.InputSourceMap != nil {
					total++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d source map(s) OK\n", total)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxErrors, "max-errors", 10, "stop listing failures after `n`, 0 lists all")
	return cmd
}

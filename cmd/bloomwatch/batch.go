package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samijaber1/bloomwatch/internal/adapter/fixture"
	"github.com/samijaber1/bloomwatch/internal/batch"
	"github.com/samijaber1/bloomwatch/internal/metrics"
)

func newBatchCmd() *cobra.Command {
	var (
		input string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze every fixture in a directory and store the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := setup(true)
			if err != nil {
				return err
			}
			defer d.close()

			adapter := fixture.NewAdapter()
			names, err := adapter.LoadDirectory(input)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return fmt.Errorf("no fixtures found in %s", input)
			}

			opts := batch.Options{
				Concurrency:  int64(d.cfg.Concurrency),
				SkipExisting: d.cfg.SkipExisting && !force,
				Names:        d.names,
				Recorder:     metrics.NewRecorder(),
				Logger:       d.logger,
			}
			if d.store != nil {
				opts.Store = d.store
			}

			rep, err := batch.NewRunner(d.analyzer, opts).Run(cmd.Context(), adapter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range rep.Completed {
				top := "-"
				if len(r.Summary.Patterns) > 0 {
					top = r.Summary.Patterns[0].Notation
				}
				fmt.Fprintf(out, "%-12s %-16s uptime %5.1f%%  rotations %3d  top %s\n",
					r.ReportCode, r.Participant, r.Uptime.Percent, len(r.Rotations), top)
			}
			for _, name := range rep.Skipped {
				fmt.Fprintf(out, "%-12s skipped (already stored)\n", name)
			}
			for _, f := range rep.Failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "%-12s failed: %v\n", f.Name, f.Err)
			}

			fmt.Fprintf(out, "\n%d completed, %d skipped, %d failed\n",
				len(rep.Completed), len(rep.Skipped), len(rep.Failed))
			if len(rep.Failed) > 0 {
				return fmt.Errorf("%d run(s) failed", len(rep.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Directory of fixture JSON files")
	cmd.Flags().BoolVar(&force, "force", false, "Re-analyze runs that are already stored")
	cmd.MarkFlagRequired("input")

	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samijaber1/bloomwatch/internal/adapter/fixture"
	"github.com/samijaber1/bloomwatch/internal/phase"
	"github.com/samijaber1/bloomwatch/internal/report"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		input       string
		participant string
		phaseN      int
		showCasts   bool
		asJSON      bool
		store       bool
		maxPatterns int
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one fixture and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := phase.Validate(phaseN); err != nil {
				return err
			}

			d, err := setup(store)
			if err != nil {
				return err
			}
			defer d.close()

			adapter := fixture.NewAdapter()
			name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			if err := adapter.LoadFixture(name, input); err != nil {
				return err
			}

			in, err := adapter.Input(name)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("participant") {
				in.Participant = participant
			}
			if cmd.Flags().Changed("phase") {
				in.Phase = phaseN
			}

			if names := adapter.AbilityNames(name); len(names) > 0 {
				if err := d.names.PutAll(names); err != nil {
					d.logger.Warn("failed to cache ability names", zap.Error(err))
				}
			}

			result, err := d.analyzer.Analyze(cmd.Context(), in)
			if err != nil {
				return err
			}

			if store {
				if d.store == nil {
					return fmt.Errorf("--store needs a database in the configuration")
				}
				if err := d.store.SaveAnalysis(cmd.Context(), result); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			return report.NewWriter(out, report.Options{
				Names:       d.names,
				Casts:       showCasts,
				MaxPatterns: maxPatterns,
			}).Render(result)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Fixture JSON file")
	cmd.Flags().StringVar(&participant, "participant", "", "Override the fixture's participant")
	cmd.Flags().IntVar(&phaseN, "phase", 0, "Phase of a two-boss encounter (1 or 2, 0 for the whole fight)")
	cmd.Flags().BoolVar(&showCasts, "casts", false, "List every classified cast")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&store, "store", false, "Persist the result to the configured database")
	cmd.Flags().IntVar(&maxPatterns, "top", 0, "Show at most this many patterns")
	cmd.MarkFlagRequired("input")

	return cmd
}

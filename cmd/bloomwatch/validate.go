package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/samijaber1/bloomwatch/internal/profile"
)

func newValidateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate encounter profile YAML files in a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			validator, err := profile.NewValidator()
			if err != nil {
				return fmt.Errorf("failed to initialize validator: %w", err)
			}

			errs := validator.ValidateDirectory(dir)
			if len(errs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "✓ All profile files are valid")
				return nil
			}

			printValidationErrors(cmd, errs)
			return fmt.Errorf("validation failed with %d error(s)", len(errs))
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory containing profile YAML files")
	cmd.MarkFlagRequired("dir")

	return cmd
}

// printValidationErrors prints errors grouped by file
func printValidationErrors(cmd *cobra.Command, errs []profile.ValidationError) {
	errorsByFile := make(map[string][]profile.ValidationError)
	for _, err := range errs {
		errorsByFile[err.File] = append(errorsByFile[err.File], err)
	}

	var files []string
	for file := range errorsByFile {
		files = append(files, file)
	}
	sort.Strings(files)

	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "✗ Validation failed with %d error(s):\n\n", len(errs))
	for _, file := range files {
		for _, err := range errorsByFile[file] {
			if err.Path != "" {
				fmt.Fprintf(w, "%s: %s: %s\n", filepath.Base(err.File), err.Path, err.Message)
			} else {
				fmt.Fprintf(w, "%s: %s\n", filepath.Base(err.File), err.Message)
			}
		}
	}
}

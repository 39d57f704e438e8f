package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cxxtok/cxxtok/internal/driver"
	"github.com/cxxtok/cxxtok/internal/report"
)

func newTokenizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize <files...>",
		Short: "Tokenize and simplify one or more translation units",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandArgs(args)
			if err != nil {
				return err
			}
			files, err := readFiles(paths)
			if err != nil {
				return err
			}
			prof, err := buildProfile()
			if err != nil {
				return err
			}

			diags := &report.Report{}
			d := driver.New(prof, diags, newLogger())
			d.Workers = flagJobs

			lists, runErr := d.ProcessFiles(context.Background(), files, "")
			for _, l := range lists {
				fmt.Printf("%d token(s)\n", l.Len())
			}
			printDiagnostics(diags)

			if runErr != nil {
				return runErr
			}
			if diags.HasErrors() {
				os.Exit(1)
			}
			return nil
		},
	}
}

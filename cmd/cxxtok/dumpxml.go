package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cxxtok/cxxtok/internal/fileset"
	"github.com/cxxtok/cxxtok/internal/report"
	"github.com/cxxtok/cxxtok/internal/driver"
	"github.com/cxxtok/cxxtok/internal/xmldump"
)

func newDumpXMLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump-xml <files...>",
		Short: "Tokenize, simplify, and dump the canonical token list as XML (spec §6)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandArgs(args)
			if err != nil {
				return err
			}
			prof, err := buildProfile()
			if err != nil {
				return err
			}

			diags := &report.Report{}
			d := driver.New(prof, diags, newLogger())

			exitCode := 0
			for _, p := range paths {
				src, err := os.ReadFile(p)
				if err != nil {
					return fmt.Errorf("reading %q: %w", p, err)
				}

				var files fileset.Table
				list, err := d.Tokenize(&files, p, string(src), "")
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", p, err)
					exitCode = 1
					continue
				}
				if ok, err := d.SimplifyTokens1(list); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", p, err)
					exitCode = 1
					continue
				} else if !ok {
					continue
				}

				if err := xmldump.Dump(os.Stdout, list, files.Path); err != nil {
					return fmt.Errorf("dumping %q: %w", p, err)
				}
			}
			printDiagnostics(diags)
			if exitCode != 0 {
				os.Exit(exitCode)
			}
			return nil
		},
	}
}

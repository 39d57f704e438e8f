package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cxxtok/cxxtok/internal/driver"
	"github.com/cxxtok/cxxtok/internal/fileset"
	"github.com/cxxtok/cxxtok/internal/garbage"
	"github.com/cxxtok/cxxtok/internal/linker"
)

// newCheckGarbageCmd exposes internal/garbage standalone, for tooling that
// only wants the syntactic sanity check (spec §4.8) without running the
// full simplify pipeline: it links brackets and runs garbage.Check, no
// more.
func newCheckGarbageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-garbage <files...>",
		Short: "Run only bracket linking and garbage-code detection (spec §4.8)",
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
			d := driver.New(prof, nil, newLogger())
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
				if err := linker.CreateLinks(list); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", p, err)
					exitCode = 1
					continue
				}
				if err := garbage.Check(list); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", p, err)
					exitCode = 1
					continue
				}
			}
			if exitCode != 0 {
				os.Exit(exitCode)
			}
			return nil
		},
	}
}

// Command cxxtok is the CLI executor surface named in the "Supplemented
// features" directive, grounded on cli/cppcheckexecutor.h: it resolves a
// set of translation units (with glob expansion), runs them through
// internal/driver, and reports diagnostics with an exit-code policy
// mirroring the reference executor's check() contract (0 = clean, 1 =
// syntax/internal error encountered).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagLanguage      string
	flagStd           string
	flagPlatform      string
	flagDebugWarnings bool
	flagCheckHeaders  bool
	flagVerbose       bool
	flagJobs          int
)

func main() {
	root := &cobra.Command{
		Use:   "cxxtok",
		Short: "Post-preprocessor C/C++ tokenizer and normalizer",
		Long: `cxxtok tokenizes already-preprocessed C/C++ translation units, links
brackets, expands typedefs and using-aliases, assigns variable ids,
simplifies the token stream to a canonical form, and builds an
expression AST -- the front-end stage a static-analysis tool runs
before its own checks.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagLanguage, "language", "c++", "source language: c or c++")
	root.PersistentFlags().StringVar(&flagStd, "std", "c++17", "language standard (c89, c99, c11, c++03, c++11, c++14, c++17, c++20)")
	root.PersistentFlags().StringVar(&flagPlatform, "platform", "unix64", "target platform (unix32, unix64, win32A, win32W, win64)")
	root.PersistentFlags().BoolVar(&flagDebugWarnings, "debug-warnings", false, "dump partial pipeline state on phase failure")
	root.PersistentFlags().BoolVar(&flagCheckHeaders, "check-headers", false, "set the profile's CheckHeaders flag (does not change which files are processed)")
	root.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable progress/debug logging")
	root.PersistentFlags().IntVar(&flagJobs, "j", 1, "number of files to process concurrently")

	root.AddCommand(newTokenizeCmd())
	root.AddCommand(newDumpXMLCmd())
	root.AddCommand(newCheckGarbageCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

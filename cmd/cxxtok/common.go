package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cxxtok/cxxtok/internal/report"
	"github.com/cxxtok/cxxtok/internal/settings"
	"github.com/cxxtok/cxxtok/internal/xlog"
)

// globRoot is the filesystem root glob patterns are resolved against
// (the current working directory), matched via an fs.FS the way
// doublestar.Glob is documented to be used.
var globRoot = os.DirFS(".")

// expandArgs turns the CLI's file arguments into a flat, deduplicated
// file list, expanding any argument containing a glob meta-character
// with doublestar (spec "Supplemented features": "file-glob expansion",
// matching the reference executor's directory-recursion behavior,
// e.g. `src/**/*.cpp`). Plain paths pass through unchanged.
func expandArgs(args []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[") {
			add(arg)
			continue
		}
		if !doublestar.ValidatePattern(arg) {
			return nil, fmt.Errorf("invalid glob %q", arg)
		}
		matches, err := doublestar.Glob(globRoot, arg)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", arg, err)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

// readFiles reads every path into memory, keyed by path, the shape
// Driver.ProcessFiles consumes.
func readFiles(paths []string) (map[string]string, error) {
	files := make(map[string]string, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		files[p] = string(data)
	}
	return files, nil
}

// buildProfile assembles a settings.Profile from the root command's
// persistent flags (spec "Supplemented features": --language/--std/
// --platform/--debug-warnings/--check-headers).
func buildProfile() (*settings.Profile, error) {
	prof := settings.Default()

	switch strings.ToLower(flagLanguage) {
	case "c":
		prof.Language = settings.C
	case "c++", "cpp", "cxx":
		prof.Language = settings.CXX
	default:
		return nil, fmt.Errorf("unknown --language %q", flagLanguage)
	}

	std, ok := standards[strings.ToLower(flagStd)]
	if !ok {
		return nil, fmt.Errorf("unknown --std %q", flagStd)
	}
	prof.Standard = std

	plat, ok := platforms[strings.ToLower(flagPlatform)]
	if !ok {
		return nil, fmt.Errorf("unknown --platform %q", flagPlatform)
	}
	prof.Platform = plat

	prof.Flags.DebugWarnings = flagDebugWarnings
	prof.Flags.CheckHeaders = flagCheckHeaders
	prof.Flags.Verbose = flagVerbose

	return prof, nil
}

var standards = map[string]settings.Standard{
	"c89": settings.C89, "c99": settings.C99, "c11": settings.C11,
	"c++03": settings.CPP03, "c++11": settings.CPP11, "c++14": settings.CPP14,
	"c++17": settings.CPP17, "c++20": settings.CPP20,
}

var platforms = map[string]settings.Platform{
	"unix32": settings.Unix32, "unix64": settings.Unix64,
	"win32a": settings.Win32A, "win32w": settings.Win32W, "win64": settings.Win64,
}

// newLogger builds the xlog.Logger the root --verbose flag selects.
func newLogger() *xlog.Logger {
	if flagVerbose {
		return xlog.New(true)
	}
	return xlog.Nop()
}

// printDiagnostics renders every recorded diagnostic to stderr, one line
// each, sorted the way report.Report.All already returns them.
func printDiagnostics(diags *report.Report) {
	for _, d := range diags.All() {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

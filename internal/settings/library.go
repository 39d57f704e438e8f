package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PodType describes a library-declared POD typedef, e.g. `uint32_t` or
// `size_t` from a system header the upstream preprocessor expanded
// through but whose ABI facts still matter downstream (spec §6,
// "podtype(name) -> {size, sign}").
type PodType struct {
	Size   int  `yaml:"size"`
	Signed bool `yaml:"signed"`
}

// libraryData is the on-disk YAML shape for a Library profile.
type libraryData struct {
	PodTypes          map[string]PodType `yaml:"podtypes"`
	NoReturnFunctions []string           `yaml:"noreturn"`
	ConstFunctions    []string           `yaml:"const_functions"`
	PureFunctions     []string           `yaml:"pure_functions"`
	NotLibraryNames   []string           `yaml:"not_library_functions"`
	MarkupExtensions  []string           `yaml:"markup_extensions"`
}

// Library is the Library collaborator of spec §6: facts about
// library/standard functions and types that the tokenizer cannot infer
// from the translation unit alone.
type Library struct {
	podTypes        map[string]PodType
	noReturn        map[string]bool
	constFns        map[string]bool
	pureFns         map[string]bool
	notLibraryFns   map[string]bool
	markupExtension map[string]bool
}

// NewLibrary returns an empty Library: every query answers "unknown"/false.
func NewLibrary() *Library {
	return &Library{
		podTypes:        map[string]PodType{},
		noReturn:        map[string]bool{},
		constFns:        map[string]bool{},
		pureFns:         map[string]bool{},
		notLibraryFns:   map[string]bool{},
		markupExtension: map[string]bool{},
	}
}

// LoadLibrary reads a Library profile from a YAML file on disk.
func LoadLibrary(path string) (*Library, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: reading library file %q: %w", path, err)
	}

	var data libraryData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("settings: parsing library file %q: %w", path, err)
	}

	lib := NewLibrary()
	for name, pod := range data.PodTypes {
		lib.podTypes[name] = pod
	}
	for _, name := range data.NoReturnFunctions {
		lib.noReturn[name] = true
	}
	for _, name := range data.ConstFunctions {
		lib.constFns[name] = true
	}
	for _, name := range data.PureFunctions {
		lib.pureFns[name] = true
	}
	for _, name := range data.NotLibraryNames {
		lib.notLibraryFns[name] = true
	}
	for _, ext := range data.MarkupExtensions {
		lib.markupExtension[ext] = true
	}
	return lib, nil
}

// PodType returns the recorded POD type facts for name, if any.
func (l *Library) PodType(name string) (PodType, bool) {
	if l == nil {
		return PodType{}, false
	}
	pt, ok := l.podTypes[name]
	return pt, ok
}

// IsNoReturn reports whether the named function is known to never return.
func (l *Library) IsNoReturn(name string) bool {
	return l != nil && l.noReturn[name]
}

// IsFunctionConst reports whether the named function is known to be
// `const` (no side effects, return value depends only on arguments) or, if
// pure is true, merely `pure` (spec §6, "isFunctionConst(name, pure)").
func (l *Library) IsFunctionConst(name string, pure bool) bool {
	if l == nil {
		return false
	}
	if pure {
		return l.pureFns[name] || l.constFns[name]
	}
	return l.constFns[name]
}

// IsNotLibraryFunction reports whether name is known to NOT be a standard
// or configured-library function. The garbage detector's unknown-macro
// heuristic does not consult it.
func (l *Library) IsNotLibraryFunction(name string) bool {
	return l != nil && l.notLibraryFns[name]
}

// MarkupFile reports whether path's extension is configured as a "markup"
// file whose contents should be tokenized but not fully simplified (spec
// §6, "markupFile(path) -> bool").
func (l *Library) MarkupFile(path string) bool {
	if l == nil {
		return false
	}
	for ext := range l.markupExtension {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

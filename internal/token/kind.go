package token

import "fmt"

// Kind classifies a [Token] by its lexeme (spec §3, Token "kind"): one of
// the nine variants below, cached at append time rather than recomputed
// on every query.
type Kind uint8

const (
	Other Kind = iota
	Name
	Number
	String
	Char
	Boolean
	Op
	Bracket
	Keyword
)

func (k Kind) String() string {
	switch k {
	case Name:
		return "Name"
	case Number:
		return "Number"
	case String:
		return "String"
	case Char:
		return "Char"
	case Boolean:
		return "Boolean"
	case Op:
		return "Op"
	case Bracket:
		return "Bracket"
	case Keyword:
		return "Keyword"
	case Other:
		return "Other"
	default:
		return fmt.Sprintf("token.Kind(%d)", uint8(k))
	}
}

// keywords is the recognized set of C/C++ reserved words. This is
// deliberately the union of the C and C++ keyword sets; a keyword not
// valid in the active language/standard still classifies as Keyword (it is
// the job of garbage detection and the caller's language check, not kind
// classification, to reject it -- see spec §4.8).
var keywords = map[string]bool{
	"alignas": true, "alignof": true, "asm": true, "auto": true, "bool": true,
	"break": true, "case": true, "catch": true, "char": true, "char16_t": true,
	"char32_t": true, "char8_t": true, "class": true, "concept": true,
	"const": true, "consteval": true, "constexpr": true, "constinit": true,
	"const_cast": true, "continue": true, "co_await": true, "co_return": true,
	"co_yield": true, "decltype": true, "default": true, "delete": true,
	"do": true, "double": true, "dynamic_cast": true, "else": true,
	"enum": true, "explicit": true, "export": true, "extern": true,
	"false": true, "float": true, "for": true, "friend": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "mutable": true,
	"namespace": true, "new": true, "noexcept": true, "nullptr": true,
	"operator": true, "private": true, "protected": true, "public": true,
	"register": true, "reinterpret_cast": true, "requires": true,
	"return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "static_assert": true, "static_cast": true,
	"struct": true, "switch": true, "template": true, "this": true,
	"thread_local": true, "throw": true, "true": true, "try": true,
	"typedef": true, "typeid": true, "typename": true, "union": true,
	"unsigned": true, "using": true, "virtual": true, "void": true,
	"volatile": true, "wchar_t": true, "while": true,
	// C-only, harmless to carry for C++: _Bool, _Complex, restrict.
	"_Bool": true, "_Complex": true, "restrict": true,
}

// IsKeyword reports whether name is a recognized C/C++ reserved word.
func IsKeyword(name string) bool {
	return keywords[name]
}

var brackets = map[string]bool{
	"(": true, ")": true, "{": true, "}": true, "[": true, "]": true,
	"<": true, ">": true,
}

// operators is every multi- and single-character C/C++ operator lexeme
// that isn't a bracket. Longest-match lexing means this set only needs to
// answer "is this whole lexeme an operator", never to drive tokenization
// itself.
var operators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "=": true,
	"==": true, "!=": true, "<=": true, ">=": true, "&&": true, "||": true,
	"!": true, "&": true, "|": true, "^": true, "~": true, "<<": true,
	">>": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
	"++": true, "--": true, "->": true, "->*": true, ".": true, ".*": true,
	"::": true, ",": true, ";": true, ":": true, "?": true, "...": true,
	"and": true, "or": true, "not": true, "xor": true, "bitand": true,
	"bitor": true, "compl": true, "not_eq": true, "and_eq": true,
	"or_eq": true, "xor_eq": true,
}

// classify derives a Kind from raw lexeme text (spec §4.1: "appended
// tokens are classified by kind immediately from the lexeme").
func classify(lexeme string) Kind {
	if lexeme == "" {
		return Other
	}

	switch {
	case brackets[lexeme]:
		return Bracket
	case lexeme == "true" || lexeme == "false":
		return Boolean
	case keywords[lexeme]:
		return Keyword
	case operators[lexeme]:
		return Op
	}

	c := lexeme[0]
	switch {
	case c == '"':
		return String
	case c == '\'':
		return Char
	case c >= '0' && c <= '9':
		return Number
	case c == '.' && len(lexeme) > 1 && lexeme[1] >= '0' && lexeme[1] <= '9':
		return Number
	case isIdentStart(c):
		return Name
	default:
		return Other
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

// Package lex implements the first of the tokenizer's two ingestion entry
// points named in spec §6: scanning a raw byte stream of already
// preprocessed source text into a flat sequence of lexical [Item] values.
// The second entry point -- consuming an already-tokenized sequence
// straight from an upstream preprocessor -- needs no scanning at all and
// lives as internal/driver.IngestItems. driver.Tokenize does not go
// through IngestItems: it appends the scanned lexemes to its TokenList
// itself.
//
// Scanning style (a single forward cursor over the rune stream, switching
// on the lookahead rune) is grounded on the teacher's experimental/parser
// lexer, adapted from Protobuf's token set to C/C++'s.
package lex

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Item is one raw lexeme produced by [Scan], not yet attached to a
// TokenList. internal/driver.Tokenize appends each Item in order via
// TokenList.Append.
type Item struct {
	Lexeme string
	Offset int // byte offset of the first byte of Lexeme within the scanned text.
}

// multiCharOps is every multi-character operator/punctuator this scanner
// must greedily prefer over its single-character prefix, longest first so
// a linear scan of the list is also a correct longest-match search.
var multiCharOps = []string{
	"<<=", ">>=", "->*", "...", "::",
	"<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"++", "--", "->", "+=", "-=", "*=", "/=", "%=",
	"&=", "|=", "^=", ".*",
}

// Scan lexes text (the output of an upstream C preprocessor: no directives,
// no comments survive in well-formed input, but this scanner tolerates
// leftover `//`/`/* */` comments defensively) into an ordered slice of
// Items. Whitespace and comments are consumed but produce no Item.
func Scan(text string) []Item {
	var items []Item
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])

		switch {
		case unicode.IsSpace(r):
			i += size

		case r == '/' && i+1 < len(text) && text[i+1] == '/':
			j := strings.IndexByte(text[i:], '\n')
			if j < 0 {
				i = len(text)
			} else {
				i += j
			}

		case r == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				i = len(text)
			} else {
				i += end + 4
			}

		case r == '"':
			n := scanQuoted(text[i:], '"')
			items = append(items, Item{Lexeme: text[i : i+n], Offset: i})
			i += n

		case r == '\'':
			n := scanQuoted(text[i:], '\'')
			items = append(items, Item{Lexeme: text[i : i+n], Offset: i})
			i += n

		case isDigit(r) || (r == '.' && i+1 < len(text) && isDigit(rune(text[i+1]))):
			n := scanNumber(text[i:])
			items = append(items, Item{Lexeme: text[i : i+n], Offset: i})
			i += n

		case isIdentStart(r):
			n := scanIdent(text[i:])
			items = append(items, Item{Lexeme: text[i : i+n], Offset: i})
			i += n

		default:
			if op, ok := matchMultiCharOp(text[i:]); ok {
				items = append(items, Item{Lexeme: op, Offset: i})
				i += len(op)
				continue
			}
			items = append(items, Item{Lexeme: string(r), Offset: i})
			i += size
		}
	}
	return items
}

func matchMultiCharOp(rest string) (string, bool) {
	for _, op := range multiCharOps {
		if strings.HasPrefix(rest, op) {
			return op, true
		}
	}
	return "", false
}

// scanQuoted consumes a quoted literal (string or char) starting at
// rest[0] == quote, including an optional wide/UTF prefix already
// consumed by the caller's identifier path -- so this handles only the
// quote-delimited body -- and returns its length in bytes, honoring
// backslash escapes.
func scanQuoted(rest string, quote byte) int {
	n := 1
	for n < len(rest) {
		c := rest[n]
		if c == '\\' && n+1 < len(rest) {
			n += 2
			continue
		}
		n++
		if c == quote {
			break
		}
	}
	return n
}

func scanNumber(rest string) int {
	n := 0
	for n < len(rest) {
		c := rest[n]
		switch {
		case c >= '0' && c <= '9', c == '.', c == '\'':
			n++
		case (c == 'e' || c == 'E' || c == 'p' || c == 'P') && n+1 < len(rest) &&
			(rest[n+1] == '+' || rest[n+1] == '-'):
			n += 2
		case isIdentPart(rune(c)):
			n++
		default:
			return n
		}
	}
	return n
}

func scanIdent(rest string) int {
	n := 0
	for n < len(rest) {
		r, size := utf8.DecodeRuneInString(rest[n:])
		if !isIdentPart(r) {
			break
		}
		n += size
	}
	return n
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || r >= 0x80
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

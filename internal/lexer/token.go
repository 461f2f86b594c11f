// Package lexer scans JavaScript source into a positioned stream of
// significant tokens. Whitespace and comments never become tokens; they are
// reported as the gap in front of the next token.
package lexer

import "sort"

// Kind classifies a token.
type Kind uint8

const (
	EOF Kind = iota
	Identifier
	Keyword
	Number
	String
	Template
	RegExp
	Punct
	Shebang
)

var kindNames = [...]string{
	EOF:        "EOF",
	Identifier: "Identifier",
	Keyword:    "Keyword",
	Number:     "Number",
	String:     "String",
	Template:   "Template",
	RegExp:     "RegExp",
	Punct:      "Punct",
	Shebang:    "Shebang",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Token is a significant token. Gap is the offset where the whitespace and
// comments preceding the token begin, which is the End of the previous
// token (or 0).
type Token struct {
	Kind  Kind
	Start int
	End   int
	Gap   int
	Line  int
}

// Text returns the token's source text.
func (t Token) Text(src []byte) string {
	return string(src[t.Start:t.End])
}

// keywords are reserved words. They never count as identifiers for the
// regex/division rule.
var keywords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "null": true, "return": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true, "let": true, "await": true,
}

// LineIndex maps byte offsets to 1-based line numbers.
type LineIndex struct {
	starts []int
}

// NewLineIndex records the start offset of every line of src.
func NewLineIndex(src []byte) *LineIndex {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts}
}

// Line returns the 1-based line holding offset.
func (li *LineIndex) Line(offset int) int {
	return sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset })
}

package lexer

import (
	"unicode"
	"unicode/utf8"
)

// Scanner produces significant tokens from JavaScript source. It is not a
// validating lexer: malformed input is consumed one byte at a time so that
// every byte outside a gap belongs to some token.
type Scanner struct {
	src   []byte
	pos   int
	lines *LineIndex

	prev       Kind
	prevParen  bool   // previous token was ')'
	substStack []bool // open braces; true marks a template substitution
}

// New returns a scanner positioned at the start of src.
func New(src []byte) *Scanner {
	return &Scanner{src: src, lines: NewLineIndex(src), prev: EOF}
}

// Scan tokenizes src. The last token is always EOF, whose Gap covers any
// trailing comments.
func Scan(src []byte) []Token {
	s := New(src)
	toks := make([]Token, 0, len(src)/4+1)
	for {
		t := s.Next()
		toks = append(toks, t)
		if t.Kind == EOF {
			return toks
		}
	}
}

// Lines exposes the scanner's line index.
func (s *Scanner) Lines() *LineIndex {
	return s.lines
}

// Next returns the next significant token.
func (s *Scanner) Next() Token {
	gap := s.pos
	s.skipTrivia()

	start := s.pos
	if start >= len(s.src) {
		return Token{Kind: EOF, Start: len(s.src), End: len(s.src), Gap: gap, Line: s.lines.Line(len(s.src))}
	}

	kind := s.scanToken()
	t := Token{Kind: kind, Start: start, End: s.pos, Gap: gap, Line: s.lines.Line(start)}
	s.prev = kind
	s.prevParen = kind == Punct && s.src[start] == ')'
	return t
}

func (s *Scanner) scanToken() Kind {
	c := s.src[s.pos]
	switch {
	case s.pos == 0 && c == '#' && s.peek(1) == '!':
		s.skipLine()
		return Shebang
	case c == '#' && isIdentStart(s.runeAt(s.pos+1)):
		s.pos++
		s.scanIdent()
		return Identifier
	case isIdentStart(s.runeAt(s.pos)) || c == '\\':
		word := s.scanIdent()
		if keywords[word] {
			return Keyword
		}
		return Identifier
	case isDigit(c) || (c == '.' && isDigit(s.peek(1))):
		s.scanNumber()
		return Number
	case c == '"' || c == '\'':
		s.scanString(c)
		return String
	case c == '`':
		s.pos++
		s.scanTemplate()
		return Template
	case c == '{':
		s.substStack = append(s.substStack, false)
		s.pos++
		return Punct
	case c == '}':
		if n := len(s.substStack); n > 0 {
			subst := s.substStack[n-1]
			s.substStack = s.substStack[:n-1]
			if subst {
				s.pos++
				s.scanTemplate()
				return Template
			}
		}
		s.pos++
		return Punct
	case c == '/':
		if s.regexAllowed() && s.scanRegExp() {
			return RegExp
		}
		s.pos++
		return Punct
	}

	if c < utf8.RuneSelf {
		s.pos++
	} else {
		_, size := utf8.DecodeRune(s.src[s.pos:])
		s.pos += size
	}
	return Punct
}

// regexAllowed applies the division rule: '/' divides only after a number,
// an identifier or a closing parenthesis.
func (s *Scanner) regexAllowed() bool {
	if s.prevParen {
		return false
	}
	return s.prev != Number && s.prev != Identifier
}

func (s *Scanner) skipTrivia() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
			s.pos++
		case c == '/' && s.peek(1) == '/':
			s.skipLine()
		case c == '/' && s.peek(1) == '*':
			s.skipBlockComment()
		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRune(s.src[s.pos:])
			if !unicode.IsSpace(r) && r != '\uFEFF' {
				return
			}
			s.pos += size
		default:
			return
		}
	}
}

func (s *Scanner) skipLine() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.pos++
	}
}

func (s *Scanner) skipBlockComment() {
	s.pos += 2
	for s.pos < len(s.src) {
		if s.src[s.pos] == '*' && s.peek(1) == '/' {
			s.pos += 2
			return
		}
		s.pos++
	}
}

func (s *Scanner) scanIdent() string {
	start := s.pos
	for s.pos < len(s.src) {
		if s.src[s.pos] == '\\' {
			// unicode escape inside an identifier
			s.pos += 2
			continue
		}
		r, size := utf8.DecodeRune(s.src[s.pos:])
		if !isIdentPart(r) {
			break
		}
		s.pos += size
	}
	if s.pos > len(s.src) {
		s.pos = len(s.src)
	}
	if s.pos == start {
		s.pos++
	}
	return string(s.src[start:s.pos])
}

func (s *Scanner) scanNumber() {
	hex := s.src[s.pos] == '0' && (s.peek(1) == 'x' || s.peek(1) == 'X')
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case isDigit(c) || isASCIILetter(c) || c == '_' || c == '.':
			s.pos++
			if !hex && (c == 'e' || c == 'E') && (s.peek(0) == '+' || s.peek(0) == '-') {
				s.pos++
			}
		default:
			return
		}
	}
}

// scanString stops at the closing quote or, for an unterminated literal, at
// the end of the line.
func (s *Scanner) scanString(quote byte) {
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\\':
			s.pos += 2
		case c == quote:
			s.pos++
			return
		case c == '\n':
			return
		default:
			s.pos++
		}
	}
	s.pos = len(s.src)
}

// scanTemplate consumes template characters up to the closing backtick or
// the next substitution, whose brace is pushed on the stack.
func (s *Scanner) scanTemplate() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\\':
			s.pos += 2
		case c == '`':
			s.pos++
			return
		case c == '$' && s.peek(1) == '{':
			s.pos += 2
			s.substStack = append(s.substStack, true)
			return
		default:
			s.pos++
		}
	}
	s.pos = len(s.src)
}

// scanRegExp consumes a regular expression literal with its flags. It
// reports false, consuming nothing, when the literal is not closed on the
// same line.
func (s *Scanner) scanRegExp() bool {
	i := s.pos + 1
	inClass := false
	for i < len(s.src) {
		c := s.src[i]
		switch {
		case c == '\\':
			i += 2
			continue
		case c == '\n' || c == '\r':
			return false
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			i++
			for i < len(s.src) && (isASCIILetter(s.src[i])) {
				i++
			}
			s.pos = i
			return true
		}
		i++
	}
	return false
}

func (s *Scanner) peek(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

func (s *Scanner) runeAt(i int) rune {
	if i >= len(s.src) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRune(s.src[i:])
	return r
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isASCIILetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == '\u200C' || r == '\u200D' ||
		unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) || unicode.Is(unicode.Pc, r)
}

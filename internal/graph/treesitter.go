package graph

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jgillick/jwalk/internal/lexer"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// DefaultMaxFileSize bounds the sources the parser accepts.
const DefaultMaxFileSize = 10 * 1024 * 1024

// TreeSitterParser implements Parser using tree-sitter grammars.
// A new tree-sitter parser is created per Parse call, so one
// TreeSitterParser may be shared by concurrent workers.
type TreeSitterParser struct {
	languages   map[Language]*tree_sitter.Language
	maxFileSize int
	comments    bool
}

// ParserOption configures a TreeSitterParser.
type ParserOption func(*TreeSitterParser)

// WithMaxFileSize rejects sources larger than size bytes. Zero disables the
// limit.
func WithMaxFileSize(size int) ParserOption {
	return func(p *TreeSitterParser) {
		p.maxFileSize = size
	}
}

// WithComments toggles comment binding.
func WithComments(enabled bool) ParserOption {
	return func(p *TreeSitterParser) {
		p.comments = enabled
	}
}

// NewTreeSitterParser creates a TreeSitterParser with the JavaScript,
// TypeScript and TSX grammars registered.
func NewTreeSitterParser(opts ...ParserOption) *TreeSitterParser {
	p := &TreeSitterParser{
		languages: map[Language]*tree_sitter.Language{
			LangJavaScript: tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
			LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			LangTSX:        tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
		},
		maxFileSize: DefaultMaxFileSize,
		comments:    true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse builds the symbol graph of source and binds its comments.
func (p *TreeSitterParser) Parse(ctx context.Context, path string, source []byte, lang Language) (*ScriptFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tsLang, ok := p.languages[lang]
	if !ok {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)}
	}
	if p.maxFileSize > 0 && len(source) > p.maxFileSize {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(source), p.maxFileSize)}
	}
	if !utf8.Valid(source) {
		return nil, &ParseError{Path: path, Err: ErrInvalidContent}
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &ParseError{Path: path, Err: ErrNilTree}
	}
	defer tree.Close()

	return NewScriptFile(path, lang, source, tree.RootNode(), p.comments), nil
}

// NewScriptFile runs the build pass over root and, when comments is set,
// the comment association pass over the token stream of source.
func NewScriptFile(path string, lang Language, source []byte, root *tree_sitter.Node, comments bool) *ScriptFile {
	g := BuildGraph(root, source)
	sf := &ScriptFile{
		Path:     path,
		Language: lang,
		Source:   source,
		Graph:    g,
		Root:     RootID,
	}
	if comments {
		sf.Comments = g.BindComments(source, lexer.Scan(source), g.Flatten(RootID))
	}
	return sf
}

// SupportedLanguages returns the languages this parser can handle.
func (p *TreeSitterParser) SupportedLanguages() []Language {
	return []Language{LangJavaScript, LangTypeScript, LangTSX}
}

// Close is a no-op because parsers are created per Parse call.
func (p *TreeSitterParser) Close() error {
	return nil
}

// countLOC counts the number of lines in source by counting newline bytes
// and adding one for the final line if the source is non-empty.
func countLOC(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	return bytes.Count(source, []byte{'\n'}) + 1
}

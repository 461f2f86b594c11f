package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Parser builds the symbol graph of a single source file.
// Implementations: TreeSitterParser.
type Parser interface {
	// Parse builds the ScriptFile for source. lang selects the grammar.
	Parse(ctx context.Context, path string, source []byte, lang Language) (*ScriptFile, error)

	// SupportedLanguages returns the languages this parser can handle.
	SupportedLanguages() []Language

	// Close releases parser resources.
	Close() error
}

var extLanguages = map[string]Language{
	".js":  LangJavaScript,
	".mjs": LangJavaScript,
	".cjs": LangJavaScript,
	".jsx": LangJavaScript,
	".ts":  LangTypeScript,
	".mts": LangTypeScript,
	".cts": LangTypeScript,
	".tsx": LangTSX,
}

// LanguageForPath maps a file extension to a Language.
func LanguageForPath(path string) (Language, bool) {
	lang, ok := extLanguages[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// LoadFile reads path and parses it with p. An unreadable file is an error
// and produces no graph.
func LoadFile(ctx context.Context, p Parser, path string) (*ScriptFile, error) {
	lang, ok := LanguageForPath(path)
	if !ok {
		return nil, &ParseError{Path: path, Err: ErrUnsupportedLanguage}
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return p.Parse(ctx, path, source, lang)
}

package graph

// --- Enums ---

// Kind classifies symbol nodes in a script's symbol graph.
type Kind string

const (
	KindRoot      Kind = "root"
	KindFunction  Kind = "function"
	KindVariable  Kind = "variable"
	KindObject    Kind = "object"
	KindProperty  Kind = "property"
	KindMethod    Kind = "method"
	KindParameter Kind = "parameter"
)

// IsCallable reports whether nodes of this kind carry parameters and
// returned shapes.
func (k Kind) IsCallable() bool {
	return k == KindFunction || k == KindMethod
}

// IsScope reports whether nodes of this kind resolve names for their
// children.
func (k Kind) IsScope() bool {
	switch k {
	case KindRoot, KindFunction, KindMethod, KindObject:
		return true
	}
	return false
}

// LiteralKind is the coarse shape of a value observed in an assignment.
type LiteralKind string

const (
	LiteralString  LiteralKind = "string"
	LiteralNumber  LiteralKind = "number"
	LiteralBoolean LiteralKind = "boolean"
	LiteralNull    LiteralKind = "null"
	LiteralThis    LiteralKind = "this"
	LiteralRegExp  LiteralKind = "regexp"
	LiteralObject  LiteralKind = "object"
	LiteralUnknown LiteralKind = "unknown"
)

// Language identifies a source dialect the parser understands.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
)

// EdgeKind classifies relationships persisted in the symbol index.
type EdgeKind string

const (
	EdgeKindDefines   EdgeKind = "DEFINES"   // file -> top-level symbol
	EdgeKindContains  EdgeKind = "CONTAINS"  // symbol -> child symbol
	EdgeKindDocuments EdgeKind = "DOCUMENTS" // comment -> following symbol
)

// --- Handles ---

// NodeID addresses a Node inside a Graph arena.
type NodeID int32

// CommentID addresses a Comment inside a Graph arena.
type CommentID int32

const (
	NoNode    NodeID    = -1
	NoComment CommentID = -1
)

// Position locates a node or comment in the source. Line is 1-based,
// Offset is a byte offset.
type Position struct {
	Line   int `json:"line"`
	Offset int `json:"offset"`
}

// NoPosition is used for parameters, which are not ordered in the file.
var NoPosition = Position{Line: -1, Offset: -1}

// --- Models ---

// Callable is the Function/Method payload of a Node.
type Callable struct {
	Params  []NodeID `json:"params,omitempty"`
	Returns []NodeID `json:"returns,omitempty"` // object shapes returned by the function
}

// Node is one declared or inferred entity of the analyzed script.
type Node struct {
	ID   NodeID   `json:"id"`
	Kind Kind     `json:"kind"`
	Name string   `json:"name,omitempty"`
	Pos  Position `json:"pos"`

	Parent   NodeID   `json:"parent"`
	Scope    NodeID   `json:"scope"`
	Children []NodeID `json:"children,omitempty"`

	FirstChild  NodeID `json:"firstChild"`
	PrevSibling NodeID `json:"prevSibling"`
	NextSibling NodeID `json:"nextSibling"`

	PrevComment CommentID `json:"prevComment"`
	NextComment CommentID `json:"nextComment"`

	Private        bool `json:"private,omitempty"`
	Anonymous      bool `json:"anonymous,omitempty"`
	ImplicitGlobal bool `json:"implicitGlobal,omitempty"`
	ImplicitObject bool `json:"implicitObject,omitempty"`
	Constructor    bool `json:"constructor,omitempty"`

	Literals LiteralSet `json:"literals,omitempty"`
	Callable *Callable  `json:"callable,omitempty"`
}

// Comment is free text found between two significant tokens.
type Comment struct {
	ID   CommentID `json:"id"`
	Pos  Position  `json:"pos"`
	Text string    `json:"text"`

	PrevComment CommentID `json:"prevComment"`
	NextComment CommentID `json:"nextComment"`
	PrevSibling NodeID    `json:"prevSibling"`
	NextSibling NodeID    `json:"nextSibling"`
}

// ScriptFile is the analysis result for one source file.
type ScriptFile struct {
	Path     string      `json:"path"`
	Language Language    `json:"language"`
	Source   []byte      `json:"-"`
	Graph    *Graph      `json:"graph"`
	Root     NodeID      `json:"root"`
	Comments []CommentID `json:"comments"`
}

// --- Index records ---

// FileRecord is a persisted source file.
type FileRecord struct {
	Path     string   `json:"path"`
	Language Language `json:"language"`
	LOC      int      `json:"loc"`
}

// SymbolRecord is a persisted, flattened view of a Node.
type SymbolRecord struct {
	ID             string   `json:"id"`
	FilePath       string   `json:"filePath"`
	Name           string   `json:"name"`
	QualifiedName  string   `json:"qualifiedName"`
	Kind           Kind     `json:"kind"`
	Line           int      `json:"line"`
	Offset         int      `json:"offset"`
	Type           string   `json:"type"`
	Params         []string `json:"params,omitempty"`
	Private        bool     `json:"private"`
	ImplicitGlobal bool     `json:"implicitGlobal"`
	Constructor    bool     `json:"constructor"`
	Doc            string   `json:"doc,omitempty"`
}

// CommentRecord is a persisted comment.
type CommentRecord struct {
	ID       string `json:"id"`
	FilePath string `json:"filePath"`
	Line     int    `json:"line"`
	Offset   int    `json:"offset"`
	Text     string `json:"text"`
}

// Edge represents a relationship between two records.
type Edge struct {
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
	Kind     EdgeKind `json:"kind"`
}

// IndexStats summarizes a symbol index.
type IndexStats struct {
	FileCount    int `json:"fileCount"`
	SymbolCount  int `json:"symbolCount"`
	CommentCount int `json:"commentCount"`
	EdgeCount    int `json:"edgeCount"`
}

// SymbolQuery filters QuerySymbols results.
type SymbolQuery struct {
	Name     string // substring match on name or qualified name
	Kind     Kind   // optional
	FilePath string // optional exact match
	Limit    int    // 0 means no limit
}

//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given path, so an index survives across runs.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// KuzuDB creates the leaf directory itself.
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	db, err := kuzu.OpenDatabase(path, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS File(
		path STRING,
		language STRING,
		loc INT64,
		PRIMARY KEY(path)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Symbol(
		id STRING,
		file_path STRING,
		name STRING,
		qualified_name STRING,
		kind STRING,
		line_no INT64,
		byte_offset INT64,
		literal_type STRING,
		params STRING,
		is_private BOOLEAN,
		is_implicit_global BOOLEAN,
		is_constructor BOOLEAN,
		doc STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Comment(
		id STRING,
		file_path STRING,
		line_no INT64,
		byte_offset INT64,
		body STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS DEFINES(FROM File TO Symbol)`,
	`CREATE REL TABLE IF NOT EXISTS CONTAINS(FROM Symbol TO Symbol)`,
	`CREATE REL TABLE IF NOT EXISTS DOCUMENTS(FROM Comment TO Symbol)`,
}

var relTables = []string{"DEFINES", "CONTAINS", "DOCUMENTS"}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddFile inserts a File node.
func (s *KuzuStore) AddFile(_ context.Context, file FileRecord) error {
	return s.exec(
		"CREATE (f:File {path: $path, language: $lang, loc: $loc})",
		map[string]any{
			"path": file.Path,
			"lang": string(file.Language),
			"loc":  int64(file.LOC),
		},
	)
}

// AddSymbol inserts a Symbol node. MERGE keeps re-adding the same ID
// idempotent.
func (s *KuzuStore) AddSymbol(_ context.Context, sym SymbolRecord) error {
	return s.exec(
		`MERGE (s:Symbol {id: $id})
		 SET s.file_path = $fp,
			s.name = $name,
			s.qualified_name = $qn,
			s.kind = $kind,
			s.line_no = $line,
			s.byte_offset = $off,
			s.literal_type = $type,
			s.params = $params,
			s.is_private = $private,
			s.is_implicit_global = $global,
			s.is_constructor = $ctor,
			s.doc = $doc`,
		map[string]any{
			"id":      sym.ID,
			"fp":      sym.FilePath,
			"name":    sym.Name,
			"qn":      sym.QualifiedName,
			"kind":    string(sym.Kind),
			"line":    int64(sym.Line),
			"off":     int64(sym.Offset),
			"type":    sym.Type,
			"params":  strings.Join(sym.Params, ","),
			"private": sym.Private,
			"global":  sym.ImplicitGlobal,
			"ctor":    sym.Constructor,
			"doc":     sym.Doc,
		},
	)
}

// AddComment inserts a Comment node.
func (s *KuzuStore) AddComment(_ context.Context, c CommentRecord) error {
	return s.exec(
		`MERGE (c:Comment {id: $id})
		 SET c.file_path = $fp, c.line_no = $line, c.byte_offset = $off, c.body = $body`,
		map[string]any{
			"id":   c.ID,
			"fp":   c.FilePath,
			"line": int64(c.Line),
			"off":  int64(c.Offset),
			"body": c.Text,
		},
	)
}

// AddEdge inserts a relationship edge between two nodes.
// The Cypher statement is chosen based on the EdgeKind.
func (s *KuzuStore) AddEdge(_ context.Context, edge Edge) error {
	cypher, err := edgeCypher(edge.Kind)
	if err != nil {
		return err
	}
	return s.exec(cypher, map[string]any{
		"src": edge.SourceID,
		"dst": edge.TargetID,
	})
}

// edgeCypher returns the MATCH-CREATE Cypher for the given edge kind.
func edgeCypher(kind EdgeKind) (string, error) {
	switch kind {
	case EdgeKindDefines:
		return `MATCH (a:File {path: $src}), (b:Symbol {id: $dst})
				CREATE (a)-[:DEFINES]->(b)`, nil
	case EdgeKindContains:
		return `MATCH (a:Symbol {id: $src}), (b:Symbol {id: $dst})
				CREATE (a)-[:CONTAINS]->(b)`, nil
	case EdgeKindDocuments:
		return `MATCH (a:Comment {id: $src}), (b:Symbol {id: $dst})
				CREATE (a)-[:DOCUMENTS]->(b)`, nil
	default:
		return "", fmt.Errorf("kuzu: unsupported edge kind: %s", kind)
	}
}

// RemoveFile deletes the file node and every symbol and comment recorded
// for it, together with their relationships.
func (s *KuzuStore) RemoveFile(_ context.Context, path string) error {
	params := map[string]any{"path": path}
	for _, cypher := range []string{
		"MATCH (s:Symbol) WHERE s.file_path = $path DETACH DELETE s",
		"MATCH (c:Comment) WHERE c.file_path = $path DETACH DELETE c",
		"MATCH (f:File) WHERE f.path = $path DETACH DELETE f",
	} {
		if err := s.exec(cypher, params); err != nil {
			return err
		}
	}
	return nil
}

// ---------- Read operations ----------

// symbolColumns is the RETURN list decoded by rowToSymbol.
const symbolColumns = `s.id, s.file_path, s.name, s.qualified_name, s.kind, s.line_no,
	s.byte_offset, s.literal_type, s.params, s.is_private, s.is_implicit_global,
	s.is_constructor, s.doc`

// GetFile retrieves a single File node by path.
func (s *KuzuStore) GetFile(_ context.Context, path string) (*FileRecord, error) {
	rows, err := s.query(
		"MATCH (f:File {path: $path}) RETURN f.path, f.language, f.loc",
		map[string]any{"path": path},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	r := rows[0]
	return &FileRecord{
		Path:     toString(r[0]),
		Language: Language(toString(r[1])),
		LOC:      toInt(r[2]),
	}, nil
}

// GetSymbol retrieves a single Symbol node by ID.
func (s *KuzuStore) GetSymbol(_ context.Context, id string) (*SymbolRecord, error) {
	rows, err := s.query(
		"MATCH (s:Symbol {id: $id}) RETURN "+symbolColumns,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rowToSymbol(rows[0]), nil
}

// QuerySymbols returns symbols whose name or qualified name contains q.Name
// (case-insensitive), filtered by kind and file.
func (s *KuzuStore) QuerySymbols(_ context.Context, q SymbolQuery) ([]SymbolRecord, error) {
	where := []string{"(lower(s.name) CONTAINS $q OR lower(s.qualified_name) CONTAINS $q)"}
	params := map[string]any{"q": strings.ToLower(q.Name)}
	if q.Kind != "" {
		where = append(where, "s.kind = $kind")
		params["kind"] = string(q.Kind)
	}
	if q.FilePath != "" {
		where = append(where, "s.file_path = $fp")
		params["fp"] = q.FilePath
	}

	cypher := "MATCH (s:Symbol) WHERE " + strings.Join(where, " AND ") +
		" RETURN " + symbolColumns + " ORDER BY s.file_path, s.byte_offset, s.id"
	if q.Limit > 0 {
		cypher += " LIMIT $lim"
		params["lim"] = int64(q.Limit)
	}
	return s.querySymbols(cypher, params)
}

// ---------- Graph traversal ----------

// GetMembers follows CONTAINS edges one hop from symbolID.
func (s *KuzuStore) GetMembers(ctx context.Context, symbolID string) ([]SymbolRecord, error) {
	if _, err := s.GetSymbol(ctx, symbolID); err != nil {
		return nil, err
	}
	return s.querySymbols(
		"MATCH (p:Symbol {id: $id})-[:CONTAINS]->(s:Symbol) RETURN "+symbolColumns+
			" ORDER BY s.file_path, s.byte_offset, s.id",
		map[string]any{"id": symbolID},
	)
}

// ImplicitGlobals returns every symbol that leaked to the global scope.
func (s *KuzuStore) ImplicitGlobals(_ context.Context) ([]SymbolRecord, error) {
	return s.querySymbols(
		"MATCH (s:Symbol) WHERE s.is_implicit_global = true RETURN "+symbolColumns+
			" ORDER BY s.file_path, s.byte_offset, s.id",
		nil,
	)
}

// ---------- Stats ----------

// Stats returns counts of all node and edge tables.
func (s *KuzuStore) Stats(_ context.Context) (*IndexStats, error) {
	files, err := s.countTable("File")
	if err != nil {
		return nil, err
	}
	symbols, err := s.countTable("Symbol")
	if err != nil {
		return nil, err
	}
	comments, err := s.countTable("Comment")
	if err != nil {
		return nil, err
	}
	edges, err := s.countEdges()
	if err != nil {
		return nil, err
	}
	return &IndexStats{
		FileCount:    files,
		SymbolCount:  symbols,
		CommentCount: comments,
		EdgeCount:    edges,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

func (s *KuzuStore) querySymbols(cypher string, params map[string]any) ([]SymbolRecord, error) {
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]SymbolRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToSymbol(r))
	}
	return out, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	cypher := fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countEdges returns the total number of edges across all relationship tables.
func (s *KuzuStore) countEdges() (int, error) {
	total := 0
	for _, t := range relTables {
		cypher := fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", t)
		rows, err := s.query(cypher, nil)
		if err != nil {
			// Table may not exist yet; treat as zero.
			continue
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			total += toInt(rows[0][0])
		}
	}
	return total, nil
}

// rowToSymbol converts a symbolColumns result row into a SymbolRecord.
func rowToSymbol(r []any) *SymbolRecord {
	var params []string
	if p := toString(r[8]); p != "" {
		params = strings.Split(p, ",")
	}
	return &SymbolRecord{
		ID:             toString(r[0]),
		FilePath:       toString(r[1]),
		Name:           toString(r[2]),
		QualifiedName:  toString(r[3]),
		Kind:           Kind(toString(r[4])),
		Line:           toInt(r[5]),
		Offset:         toInt(r[6]),
		Type:           toString(r[7]),
		Params:         params,
		Private:        toBool(r[9]),
		ImplicitGlobal: toBool(r[10]),
		Constructor:    toBool(r[11]),
		Doc:            toString(r[12]),
	}
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}

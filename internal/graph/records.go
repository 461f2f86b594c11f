package graph

import (
	"context"
	"fmt"
)

// Records is the flattened, persistable form of a ScriptFile.
type Records struct {
	File     FileRecord
	Symbols  []SymbolRecord
	Comments []CommentRecord
	Edges    []Edge
}

// SymbolID builds the stable record ID of a node.
func SymbolID(path, qualified string, offset int) string {
	if qualified == "" {
		qualified = "<anonymous>"
	}
	return fmt.Sprintf("%s#%s@%d", path, qualified, offset)
}

// CommentRecordID builds the stable record ID of a comment.
func CommentRecordID(path string, offset int) string {
	return fmt.Sprintf("%s#comment@%d", path, offset)
}

// BuildRecords converts sf into index records: one SymbolRecord per node of
// the flattened listing, DEFINES edges for top-level symbols, CONTAINS edges
// for members and DOCUMENTS edges for doc comments.
func BuildRecords(sf *ScriptFile) Records {
	g := sf.Graph
	rec := Records{
		File: FileRecord{
			Path:     sf.Path,
			Language: sf.Language,
			LOC:      countLOC(sf.Source),
		},
	}

	ordered := g.Flatten(sf.Root)
	ids := make(map[NodeID]string, len(ordered))
	for _, id := range ordered {
		n := g.Node(id)
		qualified := g.QualifiedName(id)
		sid := SymbolID(sf.Path, qualified, n.Pos.Offset)
		ids[id] = sid

		sym := SymbolRecord{
			ID:             sid,
			FilePath:       sf.Path,
			Name:           n.Name,
			QualifiedName:  qualified,
			Kind:           n.Kind,
			Line:           n.Pos.Line,
			Offset:         n.Pos.Offset,
			Type:           string(n.InferredKind()),
			Params:         g.ParamNames(id),
			Private:        n.Private,
			ImplicitGlobal: n.ImplicitGlobal,
			Constructor:    n.Constructor,
		}
		if c, ok := g.DocFor(id); ok {
			sym.Doc = c.Body()
		}
		rec.Symbols = append(rec.Symbols, sym)
	}

	for _, id := range ordered {
		sid := ids[id]
		parent := g.Node(id).Parent
		if parent == sf.Root {
			rec.Edges = append(rec.Edges, Edge{SourceID: sf.Path, TargetID: sid, Kind: EdgeKindDefines})
			continue
		}
		if psid, ok := ids[parent]; ok {
			rec.Edges = append(rec.Edges, Edge{SourceID: psid, TargetID: sid, Kind: EdgeKindContains})
		}
	}

	for _, cid := range sf.Comments {
		c := g.Comment(cid)
		crid := CommentRecordID(sf.Path, c.Pos.Offset)
		rec.Comments = append(rec.Comments, CommentRecord{
			ID:       crid,
			FilePath: sf.Path,
			Line:     c.Pos.Line,
			Offset:   c.Pos.Offset,
			Text:     c.Text,
		})
		if c.NextSibling == NoNode || g.Node(c.NextSibling).PrevComment != cid {
			continue
		}
		if sid, ok := ids[c.NextSibling]; ok {
			rec.Edges = append(rec.Edges, Edge{SourceID: crid, TargetID: sid, Kind: EdgeKindDocuments})
		}
	}
	return rec
}

// WriteScriptFile replaces everything stored for sf.Path with the records
// of sf.
func WriteScriptFile(ctx context.Context, s Store, sf *ScriptFile) error {
	rec := BuildRecords(sf)
	if err := s.RemoveFile(ctx, sf.Path); err != nil {
		return fmt.Errorf("remove %s: %w", sf.Path, err)
	}
	if err := s.AddFile(ctx, rec.File); err != nil {
		return fmt.Errorf("add file %s: %w", sf.Path, err)
	}
	for _, sym := range rec.Symbols {
		if err := s.AddSymbol(ctx, sym); err != nil {
			return fmt.Errorf("add symbol %s: %w", sym.ID, err)
		}
	}
	for _, c := range rec.Comments {
		if err := s.AddComment(ctx, c); err != nil {
			return fmt.Errorf("add comment %s: %w", c.ID, err)
		}
	}
	for _, e := range rec.Edges {
		if err := s.AddEdge(ctx, e); err != nil {
			return fmt.Errorf("add edge %s->%s: %w", e.SourceID, e.TargetID, err)
		}
	}
	return nil
}

package export

import (
	"encoding/json"
	"time"

	"github.com/jgillick/jwalk/internal/graph"
)

// ListingExport is the top-level JSON export structure.
type ListingExport struct {
	ExportedAt string       `json:"exportedAt"`
	Files      []FileExport `json:"files"`
}

// FileExport is the flattened listing of one file: symbols in source order,
// its comments and the edges between them.
type FileExport struct {
	Path     string                `json:"path"`
	Language graph.Language        `json:"language"`
	LOC      int                   `json:"loc"`
	Symbols  []graph.SymbolRecord  `json:"symbols"`
	Comments []graph.CommentRecord `json:"comments"`
	Edges    []graph.Edge          `json:"edges"`
	Inspect  []InspectRow          `json:"inspect,omitempty"`
}

// JSONOptions controls GenerateJSON.
type JSONOptions struct {
	// Inspect adds the inspect report rows to each file.
	Inspect bool
	// All is passed to BuildInspectRows.
	All bool
}

// BuildListing converts files into a ListingExport.
func BuildListing(files []*graph.ScriptFile, opts JSONOptions) *ListingExport {
	out := &ListingExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Files:      make([]FileExport, 0, len(files)),
	}
	for _, sf := range files {
		rec := graph.BuildRecords(sf)
		fe := FileExport{
			Path:     rec.File.Path,
			Language: rec.File.Language,
			LOC:      rec.File.LOC,
			Symbols:  nonNil(rec.Symbols),
			Comments: nonNil(rec.Comments),
			Edges:    nonNil(rec.Edges),
		}
		if opts.Inspect {
			fe.Inspect = BuildInspectRows(sf, InspectOptions{All: opts.All})
		}
		out.Files = append(out.Files, fe)
	}
	return out
}

// GenerateJSON renders files as indented JSON.
func GenerateJSON(files []*graph.ScriptFile, opts JSONOptions) ([]byte, error) {
	return json.MarshalIndent(BuildListing(files, opts), "", "  ")
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

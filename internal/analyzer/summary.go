package analyzer

import "github.com/jgillick/jwalk/internal/graph"

// FileSummary counts what a built file holds.
type FileSummary struct {
	Symbols         int
	Comments        int
	ImplicitGlobals int
}

// Summarize counts the symbols reachable from the file's root. Nodes left
// detached in the arena by merges and replaced declarations are not counted.
func Summarize(sf *graph.ScriptFile) FileSummary {
	s := FileSummary{Comments: len(sf.Comments)}
	for _, id := range sf.Graph.Flatten(sf.Root) {
		s.Symbols++
		if sf.Graph.Node(id).ImplicitGlobal {
			s.ImplicitGlobals++
		}
	}
	return s
}

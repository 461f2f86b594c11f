package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jgillick/jwalk/internal/graph"
)

// GenerateMermaid produces a Mermaid graph TD diagram of the scope trees of
// files. Each file is a subgraph; arrows point from a scope to the symbols
// it holds. Implicit globals are drawn with the "global" class.
func GenerateMermaid(files []*graph.ScriptFile) string {
	nextID := 0
	newID := func() string {
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("  classDef global fill:#fdd,stroke:#c33\n")

	for _, sf := range files {
		g := sf.Graph
		fileID := newID()
		sb.WriteString(fmt.Sprintf("  subgraph %s_file[\"%s\"]\n", fileID, escapeLabel(shortPath(sf.Path))))
		sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", fileID, escapeLabel(filepath.Base(sf.Path))))

		var globals []string
		var edges []string
		var walk func(parentID string, id graph.NodeID)
		walk = func(parentID string, id graph.NodeID) {
			for _, c := range g.OrderedChildren(id) {
				cid := newID()
				sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", cid, escapeLabel(mermaidLabel(g, c))))
				edges = append(edges, fmt.Sprintf("  %s --> %s\n", parentID, cid))
				if g.Node(c).ImplicitGlobal {
					globals = append(globals, cid)
				}
				walk(cid, c)
			}
		}
		walk(fileID, sf.Root)
		sb.WriteString("  end\n")

		for _, e := range edges {
			sb.WriteString(e)
		}
		if len(globals) > 0 {
			sb.WriteString(fmt.Sprintf("  class %s global\n", strings.Join(globals, ",")))
		}
	}
	return sb.String()
}

func mermaidLabel(g *graph.Graph, id graph.NodeID) string {
	n := g.Node(id)
	name := n.Name
	if name == "" {
		name = "anonymous"
	}
	if n.Kind.IsCallable() {
		name += "(" + strings.Join(g.ParamNames(id), ", ") + ")"
	}
	return fmt.Sprintf("%s: %s", n.Kind, name)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}

// shortPath returns the last 2 path segments for readability.
func shortPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

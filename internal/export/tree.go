// Package export renders symbol graphs for people and tools: an indented
// tree, the inspect report, a JSON listing and a Mermaid scope diagram.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jgillick/jwalk/internal/graph"
)

// TreeOptions controls PrintTree.
type TreeOptions struct {
	// Comments prints each symbol's doc comment above it.
	Comments bool
	// Color styles names and tags for a terminal.
	Color bool
}

var (
	nameStyle    = lipgloss.NewStyle().Bold(true)
	posStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	typeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	commentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
)

type painter bool

func (p painter) paint(s lipgloss.Style, text string) string {
	if !p {
		return text
	}
	return s.Render(text)
}

// PrintTree writes the symbol tree of sf, one symbol per line in sibling
// order, indented two spaces per level:
//
//	[line:offset] name (params) <type> - constructor
func PrintTree(w io.Writer, sf *graph.ScriptFile, opts TreeOptions) error {
	var b strings.Builder
	writeTree(&b, sf.Graph, sf.Root, 0, opts)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTree(b *strings.Builder, g *graph.Graph, id graph.NodeID, depth int, opts TreeOptions) {
	pad := strings.Repeat("  ", depth)
	p := painter(opts.Color)
	for _, child := range g.OrderedChildren(id) {
		if opts.Comments {
			if c, ok := g.DocFor(child); ok {
				for _, line := range strings.Split(c.Body(), "\n") {
					b.WriteString(pad + p.paint(commentStyle, strings.TrimRight("// "+line, " ")) + "\n")
				}
			}
		}
		b.WriteString(pad + TreeLine(g, child, opts.Color) + "\n")
		writeTree(b, g, child, depth+1, opts)
	}
}

// TreeLine formats a single node the way PrintTree does.
func TreeLine(g *graph.Graph, id graph.NodeID, colored bool) string {
	color := painter(colored)
	n := g.Node(id)
	var b strings.Builder
	b.WriteString(color.paint(posStyle, fmt.Sprintf("[%d:%d]", n.Pos.Line, n.Pos.Offset)))
	b.WriteByte(' ')

	name := n.Name
	if name == "" {
		name = "[anonymous]"
	}
	b.WriteString(color.paint(nameStyle, name))

	if n.Kind.IsCallable() {
		fmt.Fprintf(&b, " (%s)", strings.Join(g.ParamNames(id), ", "))
	}
	if k := n.InferredKind(); k != graph.LiteralUnknown {
		b.WriteString(" " + color.paint(typeStyle, "<"+string(k)+">"))
	}
	if n.Constructor {
		b.WriteString(color.paint(noteStyle, " - constructor"))
	}
	if n.ImplicitGlobal {
		b.WriteString(color.paint(noteStyle, " - implicit global"))
	}
	return b.String()
}

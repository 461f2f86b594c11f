package graph

import (
	"bytes"
	"math"
	"strings"
	"unicode"

	"github.com/jgillick/jwalk/internal/lexer"
)

// BindComments captures the free text found between significant tokens as
// comments and links each one to the symbols bracketing it. A comment is
// positioned at the start of its gap. When several comments share a
// bracketing pair, both symbols link to the last of them. ordered must be
// the Flatten listing of the graph. The new comments are returned in source order.
func (g *Graph) BindComments(src []byte, toks []lexer.Token, ordered []NodeID) []CommentID {
	lines := lexer.NewLineIndex(src)
	offsets := make([]int, len(ordered))
	for i, id := range ordered {
		offsets[i] = g.Nodes[id].Pos.Offset
	}

	var out []CommentID
	last := NoComment
	for _, t := range toks {
		if t.Start <= t.Gap {
			continue
		}
		gap := src[t.Gap:t.Start]
		lead := bytes.IndexFunc(gap, func(r rune) bool { return !isGapSpace(r) })
		if lead < 0 {
			continue
		}
		text := strings.TrimFunc(string(gap[lead:]), isGapSpace)
		off := t.Gap

		id := CommentID(len(g.Comments))
		c := Comment{
			ID:          id,
			Pos:         Position{Line: lines.Line(off), Offset: off},
			Text:        text,
			PrevComment: last,
			NextComment: NoComment,
			PrevSibling: NoNode,
			NextSibling: NoNode,
		}

		prev, next := FindBracket(offsets, off, len(src))
		if prev >= 0 {
			c.PrevSibling = ordered[prev]
			g.Node(ordered[prev]).NextComment = id
		}
		if next >= 0 {
			c.NextSibling = ordered[next]
			g.Node(ordered[next]).PrevComment = id
		}

		g.Comments = append(g.Comments, c)
		if last != NoComment {
			g.Comments[last].NextComment = id
		}
		last = id
		out = append(out, id)
	}
	return out
}

// FindBracket locates, by interpolation search over the ascending offsets,
// the pair prev, next with offsets[prev] < o <= offsets[next]. Either index
// is -1 when absent. The search starts at round(o/L*N) and walks towards
// the pair; falling off the front means o precedes every symbol.
func FindBracket(offsets []int, o, sourceLen int) (prev, next int) {
	n := len(offsets)
	if n == 0 {
		return -1, -1
	}

	idx := 0
	if sourceLen > 0 {
		idx = int(math.Round(float64(o) / float64(sourceLen) * float64(n)))
	}
	idx = min(max(idx, 0), n-1)

	for idx >= 0 && idx < n {
		if offsets[idx] < o && (idx+1 == n || offsets[idx+1] >= o) {
			if idx+1 == n {
				return idx, -1
			}
			return idx, idx + 1
		}
		if offsets[idx] >= o {
			idx--
		} else {
			idx++
		}
	}
	return -1, 0
}

func isGapSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// IsDoc reports whether the comment is a /** block.
func (c *Comment) IsDoc() bool {
	return strings.HasPrefix(c.Text, "/**") && !strings.HasPrefix(c.Text, "/**/")
}

// Body returns the comment text without comment markers and leading
// asterisks, one line per source line.
func (c *Comment) Body() string {
	var lines []string
	for _, line := range strings.Split(c.Text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "//") {
			line = strings.TrimPrefix(line, "//")
		} else {
			line = strings.TrimPrefix(line, "/*")
			line = strings.TrimSuffix(line, "*/")
			line = strings.TrimLeft(line, "*")
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// DocFor returns the comment immediately preceding id when nothing but that
// comment lies between id and its previous symbol.
func (g *Graph) DocFor(id NodeID) (*Comment, bool) {
	cid := g.Node(id).PrevComment
	if cid == NoComment {
		return nil, false
	}
	c := g.Comment(cid)
	if c.NextSibling != id {
		return nil, false
	}
	return c, true
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jgillick/jwalk/internal/graph"
)

// Inspect report sections, in print order.
const (
	SectionVariable = "variable"
	SectionObject   = "object"
	SectionFunction = "function"
)

var sectionTitles = map[string]string{
	SectionVariable: "Variables",
	SectionObject:   "Objects",
	SectionFunction: "Functions",
}

// InspectRow is one line of the inspect report.
type InspectRow struct {
	Section string `json:"section"`
	Name    string `json:"name"`
	Line    int    `json:"line"`
	Notes   string `json:"notes,omitempty"`
	File    string `json:"file"`
}

// InspectOptions controls BuildInspectRows.
type InspectOptions struct {
	// All includes functions and objects that are not reachable from the
	// global scope ("cloaked").
	All bool
}

// BuildInspectRows lists the global variables, objects and functions of sf.
// Variables come first, then objects (leaf objects by their full chain),
// then functions with their constructor, method and cloaked notes.
func BuildInspectRows(sf *graph.ScriptFile, opts InspectOptions) []InspectRow {
	ins := &inspector{g: sf.Graph, file: sf.Path, all: opts.All}
	top := sf.Graph.OrderedChildren(sf.Root)

	for _, id := range top {
		n := ins.g.Node(id)
		if n.Kind != graph.KindVariable {
			continue
		}
		notes := ""
		if n.ImplicitGlobal {
			notes = "implicit global"
		}
		ins.add(SectionVariable, n.Name, n.Pos.Line, notes)
	}
	for _, id := range top {
		if ins.g.Node(id).Kind == graph.KindObject {
			ins.object(id)
		}
	}
	for _, id := range top {
		if ins.g.Node(id).Kind.IsCallable() {
			ins.function(id)
		}
		ins.nested(id)
	}
	return ins.rows
}

type inspector struct {
	g    *graph.Graph
	file string
	all  bool
	rows []InspectRow
}

func (ins *inspector) add(section, name string, line int, notes string) {
	ins.rows = append(ins.rows, InspectRow{Section: section, Name: name, Line: line, Notes: notes, File: ins.file})
}

// cloaked reports whether id cannot be reached from the global scope.
func (ins *inspector) cloaked(id graph.NodeID) bool {
	n := ins.g.Node(id)
	if n.Private {
		return true
	}
	if n.Parent == graph.NoNode || n.Parent == graph.RootID {
		return false
	}
	p := ins.g.Node(n.Parent)
	return p.Anonymous || (p.Kind == graph.KindFunction && !p.Constructor)
}

func (ins *inspector) function(id graph.NodeID) {
	n := ins.g.Node(id)
	if n.Anonymous {
		return
	}
	var notes []string
	parent := n.Parent
	if n.Constructor {
		note := "constructor"
		if parent != graph.RootID && n.Kind != graph.KindMethod {
			note += fmt.Sprintf(" in '%s'", ins.g.QualifiedName(parent))
		}
		notes = append(notes, note)
	}
	if n.Kind == graph.KindMethod {
		notes = append(notes, fmt.Sprintf("method of '%s'", ins.g.QualifiedName(parent)))
	}
	if ins.cloaked(id) {
		if !ins.all {
			return
		}
		note := "cloaked"
		if p := ins.g.Node(parent); p.Kind == graph.KindFunction && !p.Constructor && !p.Anonymous {
			note += fmt.Sprintf(" in '%s'", ins.g.QualifiedName(parent))
		}
		notes = append(notes, note)
	}
	ins.add(SectionFunction, n.Name, n.Pos.Line, strings.Join(notes, ", "))
}

// nested reports the functions held by id. Anonymous functions are only
// entered at the top level, objects and constructors at any depth.
func (ins *inspector) nested(id graph.NodeID) {
	n := ins.g.Node(id)
	if n.Anonymous && n.Parent != graph.RootID {
		return
	}
	for _, c := range ins.g.OrderedChildren(id) {
		cn := ins.g.Node(c)
		switch {
		case cn.Kind.IsCallable():
			ins.function(c)
		case cn.Constructor || cn.Kind == graph.KindObject:
			ins.nested(c)
		}
	}
}

// object reports leaf objects under id by their qualified name.
func (ins *inspector) object(id graph.NodeID) {
	leaf := true
	for _, c := range ins.g.OrderedChildren(id) {
		if ins.g.Node(c).Kind == graph.KindObject {
			leaf = false
			ins.object(c)
		}
	}
	if !leaf {
		return
	}
	notes := ""
	if ins.cloaked(id) {
		if !ins.all {
			return
		}
		notes = "cloaked"
	}
	ins.add(SectionObject, ins.g.QualifiedName(id), ins.g.Node(id).Pos.Line, notes)
}

// WriteCSV writes rows as CSV with a Type,Name,Notes,Line,File header.
func WriteCSV(w io.Writer, rows []InspectRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Type", "Name", "Notes", "Line", "File"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Section, r.Name, r.Notes, strconv.Itoa(r.Line), r.File}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable writes rows as one bordered table per section and file. Color
// enables header styling.
func WriteTable(w io.Writer, rows []InspectRow, color bool) error {
	p := painter(color)
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	if !color {
		header = cell
	}

	var b strings.Builder
	file := ""
	for _, group := range groupRows(rows) {
		if group.file != file {
			file = group.file
			fmt.Fprintf(&b, "\nInspecting: %s\n", p.paint(nameStyle, file))
		}
		fmt.Fprintf(&b, "\n%s\n", p.paint(nameStyle, sectionTitles[group.section]))

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("Name", "Line", "Notes").
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return header
				}
				return cell
			})
		for _, r := range group.rows {
			notes := r.Notes
			if strings.Contains(notes, "implicit global") {
				notes = p.paint(noteStyle, notes)
			}
			t.Row(r.Name, strconv.Itoa(r.Line), notes)
		}
		b.WriteString(t.String())
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type rowGroup struct {
	file    string
	section string
	rows    []InspectRow
}

// groupRows splits consecutive rows by file and section.
func groupRows(rows []InspectRow) []rowGroup {
	var groups []rowGroup
	for _, r := range rows {
		if n := len(groups); n > 0 && groups[n-1].file == r.File && groups[n-1].section == r.Section {
			groups[n-1].rows = append(groups[n-1].rows, r)
			continue
		}
		groups = append(groups, rowGroup{file: r.File, section: r.Section, rows: []InspectRow{r}})
	}
	return groups
}

package graph

import (
	"encoding/json"
	"math/bits"
)

// literalOrder fixes the bit assigned to each literal kind.
var literalOrder = []LiteralKind{
	LiteralString,
	LiteralNumber,
	LiteralBoolean,
	LiteralNull,
	LiteralThis,
	LiteralRegExp,
	LiteralObject,
	LiteralUnknown,
}

// LiteralSet is the deduplicated set of literal kinds observed for a symbol.
type LiteralSet uint16

func literalBit(k LiteralKind) LiteralSet {
	for i, lk := range literalOrder {
		if lk == k {
			return 1 << i
		}
	}
	return 0
}

// Add records an observation of k.
func (s LiteralSet) Add(k LiteralKind) LiteralSet {
	return s | literalBit(k)
}

// Has reports whether k was observed.
func (s LiteralSet) Has(k LiteralKind) bool {
	b := literalBit(k)
	return b != 0 && s&b != 0
}

// Len returns the number of distinct kinds observed.
func (s LiteralSet) Len() int {
	return bits.OnesCount16(uint16(s))
}

// Kinds lists the observed kinds in a fixed order.
func (s LiteralSet) Kinds() []LiteralKind {
	var out []LiteralKind
	for i, lk := range literalOrder {
		if s&(1<<i) != 0 {
			out = append(out, lk)
		}
	}
	return out
}

// Inferred returns the single observed kind, or LiteralUnknown when zero or
// several kinds were observed.
func (s LiteralSet) Inferred() LiteralKind {
	if s.Len() != 1 {
		return LiteralUnknown
	}
	return s.Kinds()[0]
}

func (s LiteralSet) MarshalJSON() ([]byte, error) {
	kinds := s.Kinds()
	if kinds == nil {
		kinds = []LiteralKind{}
	}
	return json.Marshal(kinds)
}

func (s *LiteralSet) UnmarshalJSON(data []byte) error {
	var kinds []LiteralKind
	if err := json.Unmarshal(data, &kinds); err != nil {
		return err
	}
	var out LiteralSet
	for _, k := range kinds {
		out = out.Add(k)
	}
	*s = out
	return nil
}

// AddLiteral records a literal-kind observation on a node.
func (g *Graph) AddLiteral(id NodeID, k LiteralKind) {
	n := g.Node(id)
	n.Literals = n.Literals.Add(k)
}

// InferredKind returns the node's single observed literal kind or unknown.
func (n *Node) InferredKind() LiteralKind {
	return n.Literals.Inferred()
}

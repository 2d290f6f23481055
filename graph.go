package ecs

import (
	"sort"
	"strconv"
	"strings"

	"github.com/TheBitDrifter/mask"
)

// archetypeNode is one node of the archetype graph: the sorted column set it
// represents, a bitset for O(1) containment, and the memoized with/without
// edges to adjacent archetypes.
type archetypeNode struct {
	id           ArchetypeId
	columns      []ColumnId // sorted ascending; defines the archetype's identity
	bits         mask.Mask
	withEdges    map[ColumnId]ArchetypeId
	withoutEdges map[ColumnId]ArchetypeId
}

// ArchetypeGraph is a memoized, monotonically growing directed graph over
// archetypes whose edges are add-column/remove-column transitions. Nodes are
// tenured: once created, an archetype id is valid for the life of the graph.
type ArchetypeGraph struct {
	nodes []*archetypeNode
	bySet map[string]ArchetypeId
}

// NewArchetypeGraph creates a graph containing only the Empty archetype.
func NewArchetypeGraph() *ArchetypeGraph {
	g := &ArchetypeGraph{
		bySet: make(map[string]ArchetypeId),
	}
	empty := &archetypeNode{
		id:           EmptyArchetype,
		withEdges:    make(map[ColumnId]ArchetypeId),
		withoutEdges: make(map[ColumnId]ArchetypeId),
	}
	g.nodes = append(g.nodes, empty)
	g.bySet[""] = EmptyArchetype
	return g
}

func setKey(columns []ColumnId) string {
	var b strings.Builder
	for i, c := range columns {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(c), 10))
	}
	return b.String()
}

func (g *ArchetypeGraph) node(arch ArchetypeId) *archetypeNode {
	return g.nodes[arch]
}

// Contains reports whether arch's column set includes col, via the node's
// bitset rather than a scan of its sorted column slice.
func (g *ArchetypeGraph) Contains(arch ArchetypeId, col ColumnId) bool {
	return g.node(arch).bits.ContainsAll(singleBit(col))
}

func singleBit(col ColumnId) mask.Mask {
	var m mask.Mask
	m.Mark(uint32(col))
	return m
}

// With returns the archetype equal to arch ∪ {col}, creating it if needed.
func (g *ArchetypeGraph) With(arch ArchetypeId, col ColumnId) ArchetypeId {
	n := g.node(arch)
	if id, ok := n.withEdges[col]; ok {
		return id
	}
	if g.Contains(arch, col) {
		n.withEdges[col] = arch
		return arch
	}
	newColumns := insertSorted(n.columns, col)
	id := g.getOrCreate(newColumns)
	n.withEdges[col] = id
	g.node(id).withoutEdges[col] = arch
	return id
}

// Without returns the archetype equal to arch \ {col}, creating it if
// needed.
func (g *ArchetypeGraph) Without(arch ArchetypeId, col ColumnId) ArchetypeId {
	n := g.node(arch)
	if id, ok := n.withoutEdges[col]; ok {
		return id
	}
	if !g.Contains(arch, col) {
		n.withoutEdges[col] = arch
		return arch
	}
	newColumns := removeSorted(n.columns, col)
	id := g.getOrCreate(newColumns)
	n.withoutEdges[col] = id
	g.node(id).withEdges[col] = arch
	return id
}

func (g *ArchetypeGraph) getOrCreate(columns []ColumnId) ArchetypeId {
	key := setKey(columns)
	if id, ok := g.bySet[key]; ok {
		return id
	}
	id := ArchetypeId(len(g.nodes))
	n := &archetypeNode{
		id:           id,
		columns:      columns,
		withEdges:    make(map[ColumnId]ArchetypeId),
		withoutEdges: make(map[ColumnId]ArchetypeId),
	}
	for _, c := range columns {
		n.bits.Mark(uint32(c))
	}
	g.nodes = append(g.nodes, n)
	g.bySet[key] = id
	return id
}

// First returns the first column of arch in ascending ColumnId order, or
// InvalidColumn if arch is Empty.
func (g *ArchetypeGraph) First(arch ArchetypeId) ColumnId {
	n := g.node(arch)
	if len(n.columns) == 0 {
		return InvalidColumn
	}
	return n.columns[0]
}

// Next returns the column after col in arch's stable order, or
// InvalidColumn if col is the last (or absent).
func (g *ArchetypeGraph) Next(arch ArchetypeId, col ColumnId) ColumnId {
	n := g.node(arch)
	for i, c := range n.columns {
		if c == col {
			if i+1 < len(n.columns) {
				return n.columns[i+1]
			}
			return InvalidColumn
		}
	}
	return InvalidColumn
}

// Columns returns the full column set of arch.
func (g *ArchetypeGraph) Columns(arch ArchetypeId) []ColumnId {
	return g.node(arch).columns
}

// Count returns the number of archetypes ever created, usable as a Collect
// cursor.
func (g *ArchetypeGraph) Count() int {
	return len(g.nodes)
}

// Collect appends to out every archetype created at or after cursor that is
// a superset of base's column set, and returns the updated slice plus the
// new cursor.
func (g *ArchetypeGraph) Collect(base ArchetypeId, out []ArchetypeId, cursor int) ([]ArchetypeId, int) {
	baseColumns := g.node(base).columns
	for i := cursor; i < len(g.nodes); i++ {
		if g.isSuperset(ArchetypeId(i), baseColumns) {
			out = append(out, ArchetypeId(i))
		}
	}
	return out, len(g.nodes)
}

func (g *ArchetypeGraph) isSuperset(arch ArchetypeId, columns []ColumnId) bool {
	for _, c := range columns {
		if !g.Contains(arch, c) {
			return false
		}
	}
	return true
}

func insertSorted(columns []ColumnId, col ColumnId) []ColumnId {
	i := sort.Search(len(columns), func(i int) bool { return columns[i] >= col })
	out := make([]ColumnId, len(columns)+1)
	copy(out, columns[:i])
	out[i] = col
	copy(out[i+1:], columns[i:])
	return out
}

func removeSorted(columns []ColumnId, col ColumnId) []ColumnId {
	i := sort.Search(len(columns), func(i int) bool { return columns[i] >= col })
	if i >= len(columns) || columns[i] != col {
		return columns
	}
	out := make([]ColumnId, len(columns)-1)
	copy(out, columns[:i])
	copy(out[i:], columns[i+1:])
	return out
}

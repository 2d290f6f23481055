package ecs

import "math"

// DataTypeId is a monotonic id assigned to a component or relation type at
// registration time. It is stable for the lifetime of the process.
type DataTypeId uint32

// ColumnId identifies a dense-table column. Columns are derived 1:1 from a
// component's DataTypeId; relations never produce columns.
type ColumnId uint32

// InvalidColumn is the sentinel ColumnId no component maps to (columnFor
// starts at 1); ArchetypeGraph.First/Next return it when there is no column.
const InvalidColumn ColumnId = 0

func columnFor(id DataTypeId) ColumnId {
	return ColumnId(id) + 1
}

// ArchetypeId denotes a set of columns. Two distinct archetype ids never
// represent the same set.
type ArchetypeId int32

const (
	// InvalidArchetype marks an entity index that has been reserved but not
	// yet committed with Create/CreateAt.
	InvalidArchetype ArchetypeId = -1
	// EmptyArchetype is the archetype with no columns. Every live entity
	// starts here.
	EmptyArchetype ArchetypeId = 0
)

// nullIndex is the sentinel index of the null entity.
const nullIndex uint32 = math.MaxUint32

// Entity is a dense (index, generation) handle. index is recycled across
// generations; generation bumps on every destroy of that index.
type Entity struct {
	Index      uint32
	Generation uint32
}

// NullEntity is the zero-value-equivalent invalid entity handle.
var NullEntity = Entity{Index: nullIndex, Generation: 0}

// IsNull reports whether e is the null entity handle.
func (e Entity) IsNull() bool {
	return e.Index == nullIndex
}

// Kind classifies a registered DataTypeId as a component or a relation; a
// type is never both.
type Kind uint8

const (
	KindComponent Kind = iota
	KindRelation
)

// Traversal controls the iteration order of a tree-relation link in a query.
type Traversal uint8

const (
	// TraversalNone applies no depth ordering.
	TraversalNone Traversal = iota
	// TraversalUp visits deeper rows (closer to leaves) before shallower ones.
	TraversalUp
	// TraversalDown visits shallower rows (closer to roots) before deeper ones.
	TraversalDown
)

// SymmetricTransform selects how endpoints are rewritten when sparse rows are
// bulk-migrated between tables.
type SymmetricTransform uint8

const (
	// TransformNone copies endpoints verbatim.
	TransformNone SymmetricTransform = iota
	// TransformSwap writes (to, from) in the destination table.
	TransformSwap
	// TransformSwapIfGreater swaps endpoints only when from > to after
	// migration, preserving the symmetric canonicalization invariant.
	TransformSwapIfGreater
)

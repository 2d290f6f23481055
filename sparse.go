package ecs

import "github.com/kamstrup/intmap"

// sparseRow is one edge of a relation: its endpoints, its payload, and the
// intrusive singly-linked-list pointers used to enumerate rows by endpoint.
// -1 means "no further row", spelled the idiomatic Go way since these
// indices never escape the package.
type sparseRow struct {
	from, to   uint32
	payload    any
	nextFrom   int
	nextTo     int
}

// SparseTable stores every edge of one relation type between entities of
// one specific (fromArch, toArch) pair at one specific tree depth. Non-tree
// relations always use depth 0.
type SparseTable struct {
	relType          DataTypeId
	fromArch, toArch ArchetypeId
	depth            uint32

	rows  []sparseRow
	rowOf map[uint64]int

	firstFrom *intmap.Map[uint32, int]
	firstTo   *intmap.Map[uint32, int]
}

func pairKey(from, to uint32) uint64 {
	return uint64(from)<<32 | uint64(to)
}

func newSparseTable(relType DataTypeId, fromArch, toArch ArchetypeId, depth uint32) *SparseTable {
	return &SparseTable{
		relType:   relType,
		fromArch:  fromArch,
		toArch:    toArch,
		depth:     depth,
		rowOf:     make(map[uint64]int),
		firstFrom: intmap.New[uint32, int](8),
		firstTo:   intmap.New[uint32, int](8),
	}
}

// Size returns the number of edges currently stored.
func (t *SparseTable) Size() int { return len(t.rows) }

// Row returns the row index storing the edge (from, to), if any.
func (t *SparseTable) Row(from, to uint32) (int, bool) {
	row, ok := t.rowOf[pairKey(from, to)]
	return row, ok
}

// Indices returns the endpoints stored at row.
func (t *SparseTable) Indices(row int) (from, to uint32) {
	r := t.rows[row]
	return r.from, r.to
}

// At returns the payload stored at row.
func (t *SparseTable) At(row int) any {
	return t.rows[row].payload
}

// SetPayload overwrites the payload stored at row.
func (t *SparseTable) SetPayload(row int, payload any) {
	t.rows[row].payload = payload
}

// Insert appends a new edge, or drop-and-move-assigns over the existing one
// if (from, to) is already present.
func (t *SparseTable) Insert(from, to uint32, payload any) int {
	if row, ok := t.Row(from, to); ok {
		t.rows[row].payload = payload
		return row
	}

	row := len(t.rows)
	prevFrom := -1
	if v, ok := t.firstFrom.Get(from); ok {
		prevFrom = v
	}
	prevTo := -1
	if v, ok := t.firstTo.Get(to); ok {
		prevTo = v
	}

	t.rows = append(t.rows, sparseRow{from: from, to: to, payload: payload, nextFrom: prevFrom, nextTo: prevTo})
	t.firstFrom.Put(from, row)
	t.firstTo.Put(to, row)
	t.rowOf[pairKey(from, to)] = row
	return row
}

// Erase removes the edge (from, to) if present, reporting whether it was.
func (t *SparseTable) Erase(from, to uint32) bool {
	row, ok := t.Row(from, to)
	if !ok {
		return false
	}
	t.eraseRow(row)
	return true
}

func (t *SparseTable) eraseRow(row int) {
	r := t.rows[row]
	t.unlinkFrom(row)
	t.unlinkTo(row)
	delete(t.rowOf, pairKey(r.from, r.to))

	last := len(t.rows) - 1
	if row != last {
		moved := t.rows[last]
		t.relinkFrom(last, row, moved.from)
		t.relinkTo(last, row, moved.to)
		t.rows[row] = moved
		t.rowOf[pairKey(moved.from, moved.to)] = row
	}
	t.rows = t.rows[:last]
}

func (t *SparseTable) unlinkFrom(row int) {
	from := t.rows[row].from
	head, ok := t.firstFrom.Get(from)
	if !ok {
		return
	}
	if head == row {
		if n := t.rows[row].nextFrom; n == -1 {
			t.firstFrom.Del(from)
		} else {
			t.firstFrom.Put(from, n)
		}
		return
	}
	prev := head
	for prev != -1 {
		next := t.rows[prev].nextFrom
		if next == row {
			t.rows[prev].nextFrom = t.rows[row].nextFrom
			return
		}
		prev = next
	}
}

func (t *SparseTable) unlinkTo(row int) {
	to := t.rows[row].to
	head, ok := t.firstTo.Get(to)
	if !ok {
		return
	}
	if head == row {
		if n := t.rows[row].nextTo; n == -1 {
			t.firstTo.Del(to)
		} else {
			t.firstTo.Put(to, n)
		}
		return
	}
	prev := head
	for prev != -1 {
		next := t.rows[prev].nextTo
		if next == row {
			t.rows[prev].nextTo = t.rows[row].nextTo
			return
		}
		prev = next
	}
}

func (t *SparseTable) relinkFrom(oldIndex, newIndex int, from uint32) {
	head, ok := t.firstFrom.Get(from)
	if !ok {
		return
	}
	if head == oldIndex {
		t.firstFrom.Put(from, newIndex)
		return
	}
	prev := head
	for prev != -1 {
		next := t.rows[prev].nextFrom
		if next == oldIndex {
			t.rows[prev].nextFrom = newIndex
			return
		}
		prev = next
	}
}

func (t *SparseTable) relinkTo(oldIndex, newIndex int, to uint32) {
	head, ok := t.firstTo.Get(to)
	if !ok {
		return
	}
	if head == oldIndex {
		t.firstTo.Put(to, newIndex)
		return
	}
	prev := head
	for prev != -1 {
		next := t.rows[prev].nextTo
		if next == oldIndex {
			t.rows[prev].nextTo = newIndex
			return
		}
		prev = next
	}
}

// FirstFrom returns the first row whose from endpoint is index.
func (t *SparseTable) FirstFrom(index uint32) (int, bool) {
	return t.firstFrom.Get(index)
}

// NextFrom returns the next row in row's from-chain.
func (t *SparseTable) NextFrom(row int) (int, bool) {
	n := t.rows[row].nextFrom
	if n == -1 {
		return 0, false
	}
	return n, true
}

// FirstTo returns the first row whose to endpoint is index.
func (t *SparseTable) FirstTo(index uint32) (int, bool) {
	return t.firstTo.Get(index)
}

// NextTo returns the next row in row's to-chain.
func (t *SparseTable) NextTo(row int) (int, bool) {
	n := t.rows[row].nextTo
	if n == -1 {
		return 0, false
	}
	return n, true
}

// EraseFrom erases every row whose from endpoint is index, returning how
// many were removed.
func (t *SparseTable) EraseFrom(index uint32) int {
	pairs := t.collectFrom(index)
	for _, p := range pairs {
		t.Erase(p[0], p[1])
	}
	return len(pairs)
}

// EraseTo erases every row whose to endpoint is index, returning how many
// were removed.
func (t *SparseTable) EraseTo(index uint32) int {
	pairs := t.collectTo(index)
	for _, p := range pairs {
		t.Erase(p[0], p[1])
	}
	return len(pairs)
}

func (t *SparseTable) collectFrom(index uint32) [][2]uint32 {
	var pairs [][2]uint32
	row, ok := t.firstFrom.Get(index)
	for ok {
		r := t.rows[row]
		pairs = append(pairs, [2]uint32{r.from, r.to})
		row, ok = t.NextFrom(row)
	}
	return pairs
}

func (t *SparseTable) collectTo(index uint32) [][2]uint32 {
	var pairs [][2]uint32
	row, ok := t.firstTo.Get(index)
	for ok {
		r := t.rows[row]
		pairs = append(pairs, [2]uint32{r.from, r.to})
		row, ok = t.NextTo(row)
	}
	return pairs
}

func applyTransform(tr SymmetricTransform, from, to uint32) (uint32, uint32) {
	switch tr {
	case TransformSwap:
		return to, from
	case TransformSwapIfGreater:
		if from > to {
			return to, from
		}
		return from, to
	default:
		return from, to
	}
}

// MoveFromEndpoint bulk-moves every row whose from endpoint is index into
// dst, applying transform to the endpoints.
func (t *SparseTable) MoveFromEndpoint(index uint32, dst *SparseTable, transform SymmetricTransform) int {
	rows := t.snapshotFrom(index)
	for _, r := range rows {
		nf, nt := applyTransform(transform, r.from, r.to)
		dst.Insert(nf, nt, r.payload)
		t.Erase(r.from, r.to)
	}
	return len(rows)
}

// MoveToEndpoint bulk-moves every row whose to endpoint is index into dst,
// applying transform to the endpoints.
func (t *SparseTable) MoveToEndpoint(index uint32, dst *SparseTable, transform SymmetricTransform) int {
	rows := t.snapshotTo(index)
	for _, r := range rows {
		nf, nt := applyTransform(transform, r.from, r.to)
		dst.Insert(nf, nt, r.payload)
		t.Erase(r.from, r.to)
	}
	return len(rows)
}

type sparseRowValue struct {
	from, to uint32
	payload  any
}

func (t *SparseTable) snapshotFrom(index uint32) []sparseRowValue {
	var out []sparseRowValue
	row, ok := t.firstFrom.Get(index)
	for ok {
		r := t.rows[row]
		out = append(out, sparseRowValue{r.from, r.to, r.payload})
		row, ok = t.NextFrom(row)
	}
	return out
}

func (t *SparseTable) snapshotTo(index uint32) []sparseRowValue {
	var out []sparseRowValue
	row, ok := t.firstTo.Get(index)
	for ok {
		r := t.rows[row]
		out = append(out, sparseRowValue{r.from, r.to, r.payload})
		row, ok = t.NextTo(row)
	}
	return out
}

// sparseKey identifies a sparse table by a (relation, from archetype, to
// archetype, depth) tuple.
type sparseKey struct {
	rel        DataTypeId
	from, to   ArchetypeId
	depth      uint32
}

// SparseRegistry maps every (relation, from archetype, to archetype, depth)
// tuple to its SparseTable, tenured for the registry's lifetime, plus
// per-archetype membership sets for O(1)-average "which tables touch this
// archetype" lookups.
type SparseRegistry struct {
	tables    map[sparseKey]*SparseTable
	order     []sparseKey
	fromIndex map[DataTypeId]map[ArchetypeId][]*SparseTable
	toIndex   map[DataTypeId]map[ArchetypeId][]*SparseTable
}

// NewSparseRegistry creates an empty sparse relation table registry.
func NewSparseRegistry() *SparseRegistry {
	return &SparseRegistry{
		tables:    make(map[sparseKey]*SparseTable),
		fromIndex: make(map[DataTypeId]map[ArchetypeId][]*SparseTable),
		toIndex:   make(map[DataTypeId]map[ArchetypeId][]*SparseTable),
	}
}

// TableFor gets or creates the table for (rel, from, to, depth).
func (s *SparseRegistry) TableFor(rel DataTypeId, from, to ArchetypeId, depth uint32) *SparseTable {
	key := sparseKey{rel, from, to, depth}
	if t, ok := s.tables[key]; ok {
		return t
	}
	t := newSparseTable(rel, from, to, depth)
	s.tables[key] = t
	s.order = append(s.order, key)

	if s.fromIndex[rel] == nil {
		s.fromIndex[rel] = make(map[ArchetypeId][]*SparseTable)
	}
	s.fromIndex[rel][from] = append(s.fromIndex[rel][from], t)

	if s.toIndex[rel] == nil {
		s.toIndex[rel] = make(map[ArchetypeId][]*SparseTable)
	}
	s.toIndex[rel][to] = append(s.toIndex[rel][to], t)

	return t
}

// Existing returns the table for (rel, from, to, depth) only if it already
// exists.
func (s *SparseRegistry) Existing(rel DataTypeId, from, to ArchetypeId, depth uint32) (*SparseTable, bool) {
	t, ok := s.tables[sparseKey{rel, from, to, depth}]
	return t, ok
}

// FindRow locates the unique row storing the edge (fromIdx, toIdx) of
// relation rel, trying the reverse (toIdx, fromIdx) storage too when the
// relation is symmetric (canonicalization may have stored it there). Used by
// View.Pin to jump straight to a fully pinned link instead of scanning.
func (s *SparseRegistry) FindRow(rel DataTypeId, fromIdx uint32, fromArch ArchetypeId, toIdx uint32, toArch ArchetypeId, symmetric bool) (*SparseTable, int, bool) {
	for _, t := range s.FromTables(rel, fromArch) {
		if t.toArch != toArch {
			continue
		}
		if row, ok := t.Row(fromIdx, toIdx); ok {
			return t, row, true
		}
	}
	if !symmetric {
		return nil, 0, false
	}
	for _, t := range s.FromTables(rel, toArch) {
		if t.toArch != fromArch {
			continue
		}
		if row, ok := t.Row(toIdx, fromIdx); ok {
			return t, row, true
		}
	}
	return nil, 0, false
}

// FromTables returns every table of relation rel whose fromArch is arch.
func (s *SparseRegistry) FromTables(rel DataTypeId, arch ArchetypeId) []*SparseTable {
	return s.fromIndex[rel][arch]
}

// ToTables returns every table of relation rel whose toArch is arch.
func (s *SparseRegistry) ToTables(rel DataTypeId, arch ArchetypeId) []*SparseTable {
	return s.toIndex[rel][arch]
}

// Count returns the number of sparse tables ever created, usable as an
// incremental-scan cursor (mirrors ArchetypeGraph.Count).
func (s *SparseRegistry) Count() int { return len(s.order) }

// TableAt returns the table created at creation-order position i.
func (s *SparseRegistry) TableAt(i int) *SparseTable {
	return s.tables[s.order[i]]
}

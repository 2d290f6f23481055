package ecs

import "math"

// Relate establishes a rel edge from -> to carrying value. For tree
// relations it replaces from's existing parent edge (if any), rejects edges
// that would close a cycle, and recomputes depth. Self-edges are forbidden
// on tree relations even when the relation is also symmetric.
func (r RelationType[T]) Relate(w *World, from, to Entity, value T) error {
	return w.relate(from, to, r.id, r.name, r.symmetric, r.tree, value)
}

// Unrelate removes the rel edge between from and to if present, reporting
// whether an edge was removed. For tree relations, the child falls back to
// depth zero and its descendants' depths are recomputed from it.
func (r RelationType[T]) Unrelate(w *World, from, to Entity) bool {
	return w.unrelate(from, to, r.id, r.tree)
}

// Get returns a pointer to a copy of the payload of the relation link at
// the given query link index; writing through it does not change the
// stored edge.
func (r RelationType[T]) Get(m Match, link int) *T {
	v := m.linkPayload(link).(T)
	return &v
}

// Ancestors returns e's chain of parents under r, closest parent first, for
// tree relations. Supplemented from original_source/core/src/ecs/world.cpp's
// parent-walk helper, which the distilled spec dropped.
func (r RelationType[T]) Ancestors(w *World, e Entity) []Entity {
	return w.ancestors(r.id, e)
}

// Descendants returns every descendant of e under r, breadth unspecified.
func (r RelationType[T]) Descendants(w *World, e Entity) []Entity {
	return w.descendants(r.id, e)
}

func (w *World) relate(from, to Entity, rel DataTypeId, name string, symmetric, tree bool, value any) error {
	w.requireUnlocked()
	if !w.entities.Alive(from) {
		abort(DeadEntityError{Entity: from})
	}
	if !w.entities.Alive(to) {
		abort(DeadEntityError{Entity: to})
	}
	if tree && from.Index == to.Index {
		return SelfRelationError{Relation: name, Entity: from}
	}

	fromIdx, toIdx := from.Index, to.Index
	if symmetric && fromIdx > toIdx {
		fromIdx, toIdx = toIdx, fromIdx
	}
	fromArch := w.entities.Archetype(fromIdx)
	toArch := w.entities.Archetype(toIdx)

	if !tree {
		t := w.sparse.TableFor(rel, fromArch, toArch, 0)
		t.Insert(fromIdx, toIdx, value)
		return nil
	}

	// Tree relation: fromIdx is the child, toIdx is the parent. A child
	// already parented elsewhere is auto-unrelated from its old parent
	// before the new edge is considered, rather than rejected.
	if existing, row, ok := w.findOutgoing(rel, fromIdx, fromArch); ok {
		_, existingParent := existing.Indices(row)
		if existingParent == toIdx {
			existing.SetPayload(row, value)
			return nil
		}
		existing.Erase(fromIdx, existingParent)
		w.setDepth(rel, fromIdx, 0)
		w.propagateDepth(rel, fromIdx, fromArch, 0)
	}

	cur, curArch := toIdx, toArch
	for {
		if cur == fromIdx {
			return TreeCycleError{Relation: name, From: from, To: to}
		}
		t, row, ok := w.findOutgoing(rel, cur, curArch)
		if !ok {
			break
		}
		_, parent := t.Indices(row)
		cur, curArch = parent, w.entities.Archetype(parent)
	}

	parentDepth := w.depthOf(rel, toIdx)
	if parentDepth == math.MaxUint32 {
		abort(DepthSaturatedError{Relation: name})
	}
	childDepth := parentDepth + 1

	dst := w.sparse.TableFor(rel, fromArch, toArch, childDepth)
	dst.Insert(fromIdx, toIdx, value)
	w.setDepth(rel, fromIdx, childDepth)
	w.propagateDepth(rel, fromIdx, fromArch, childDepth)
	return nil
}

func (w *World) unrelate(from, to Entity, rel DataTypeId, tree bool) bool {
	w.requireUnlocked()
	fromIdx, toIdx := from.Index, to.Index
	fromArch := w.entities.Archetype(fromIdx)
	toArch := w.entities.Archetype(toIdx)

	for _, t := range w.sparse.FromTables(rel, fromArch) {
		if t.toArch != toArch {
			continue
		}
		if t.Erase(fromIdx, toIdx) {
			if tree {
				w.setDepth(rel, fromIdx, 0)
				w.propagateDepth(rel, fromIdx, fromArch, 0)
			}
			return true
		}
	}

	// Symmetric edges may have been canonicalized under the swapped
	// endpoints.
	for _, t := range w.sparse.FromTables(rel, toArch) {
		if t.toArch != fromArch {
			continue
		}
		if t.Erase(toIdx, fromIdx) {
			return true
		}
	}
	return false
}

func (w *World) findOutgoing(rel DataTypeId, fromIdx uint32, fromArch ArchetypeId) (*SparseTable, int, bool) {
	for _, t := range w.sparse.FromTables(rel, fromArch) {
		if row, ok := t.FirstFrom(fromIdx); ok {
			return t, row, true
		}
	}
	return nil, 0, false
}

func (w *World) depthOf(rel DataTypeId, idx uint32) uint32 {
	if m, ok := w.depths[rel]; ok {
		return m[idx]
	}
	return 0
}

func (w *World) setDepth(rel DataTypeId, idx uint32, depth uint32) {
	m, ok := w.depths[rel]
	if !ok {
		m = make(map[uint32]uint32)
		w.depths[rel] = m
	}
	if depth == 0 {
		delete(m, idx)
		return
	}
	m[idx] = depth
}

// propagateDepth re-keys every descendant of idx (under rel) to reflect
// idx's new depth, recursing down the subtree. It is a no-op below the
// first entity whose stored depth already matches, since nothing under an
// unchanged entity can itself be stale.
func (w *World) propagateDepth(rel DataTypeId, idx uint32, arch ArchetypeId, depth uint32) {
	for _, t := range w.sparse.ToTables(rel, arch) {
		rows := t.snapshotTo(idx)
		for _, r := range rows {
			childDepth := depth + 1
			if w.depthOf(rel, r.from) == childDepth {
				continue
			}
			childArch := w.entities.Archetype(r.from)
			dst := w.sparse.TableFor(rel, childArch, arch, childDepth)
			if dst != t {
				dst.Insert(r.from, r.to, r.payload)
				t.Erase(r.from, r.to)
			}
			w.setDepth(rel, r.from, childDepth)
			w.propagateDepth(rel, r.from, childArch, childDepth)
		}
	}
}

// moveSparse relocates every sparse row touching e from tables keyed by
// oldArch to tables keyed by newArch, on either endpoint. Each row is
// relabeled individually rather than bulk-moved into one fixed destination
// table: a symmetric relation's canonical "smaller index goes in from"
// invariant depends on the *other* endpoint's index, which varies row by
// row, so two rows out of the same source table can land in differently
// labeled destination tables (one keeping (newArch, partnerArch), the other
// swapped to (partnerArch, newArch)). A naive single destination per table
// mislabels whichever rows swap.
func (w *World) moveSparse(e Entity, oldArch, newArch ArchetypeId) {
	if oldArch == newArch {
		return
	}
	idx := e.Index

	for _, rel := range w.registry.Relations() {
		info := w.registry.Info(rel)

		for _, t := range snapshotTables(w.sparse.FromTables(rel, oldArch)) {
			w.relocateFromEndpoint(rel, info.Symmetric, idx, newArch, t)
		}
		for _, t := range snapshotTables(w.sparse.ToTables(rel, oldArch)) {
			w.relocateToEndpoint(rel, info.Symmetric, idx, newArch, t)
		}
	}
}

// relocateFromEndpoint moves every row of t whose from endpoint is idx into
// the table correctly labeled for idx's new archetype. A self-edge (the
// partner is idx itself) carries both endpoints to newArch at once.
func (w *World) relocateFromEndpoint(rel DataTypeId, symmetric bool, idx uint32, newArch ArchetypeId, t *SparseTable) {
	for _, r := range t.snapshotFrom(idx) {
		partnerArch := t.toArch
		selfEdge := r.to == idx
		if selfEdge {
			partnerArch = newArch
		}

		nf, nt := idx, r.to
		dstFrom, dstTo := newArch, partnerArch
		if symmetric && !selfEdge && idx > r.to {
			nf, nt = r.to, idx
			dstFrom, dstTo = partnerArch, newArch
		}

		dst := w.sparse.TableFor(rel, dstFrom, dstTo, t.depth)
		dst.Insert(nf, nt, r.payload)
		t.Erase(r.from, r.to)
	}
}

// relocateToEndpoint moves every row of t whose to endpoint is idx into the
// table correctly labeled for idx's new archetype. Self-edges are skipped:
// they share a table with fromArch == toArch == oldArch, so
// relocateFromEndpoint already carried them to newArch.
func (w *World) relocateToEndpoint(rel DataTypeId, symmetric bool, idx uint32, newArch ArchetypeId, t *SparseTable) {
	for _, r := range t.snapshotTo(idx) {
		if r.from == idx {
			continue
		}
		partnerArch := t.fromArch

		nf, nt := r.from, idx
		dstFrom, dstTo := partnerArch, newArch
		if symmetric && r.from > idx {
			nf, nt = idx, r.from
			dstFrom, dstTo = newArch, partnerArch
		}

		dst := w.sparse.TableFor(rel, dstFrom, dstTo, t.depth)
		dst.Insert(nf, nt, r.payload)
		t.Erase(r.from, r.to)
	}
}

func snapshotTables(tables []*SparseTable) []*SparseTable {
	out := make([]*SparseTable, len(tables))
	copy(out, tables)
	return out
}

// clearRelations erases every relation edge touching e (either endpoint)
// across every registered relation type, propagating tree depth to any
// orphaned children.
func (w *World) clearRelations(e Entity, arch ArchetypeId) {
	idx := e.Index
	for _, rel := range w.registry.Relations() {
		info := w.registry.Info(rel)

		for _, t := range snapshotTables(w.sparse.ToTables(rel, arch)) {
			rows := t.snapshotTo(idx)
			for _, r := range rows {
				t.Erase(r.from, r.to)
				if info.Tree {
					childArch := w.entities.Archetype(r.from)
					w.setDepth(rel, r.from, 0)
					w.propagateDepth(rel, r.from, childArch, 0)
				}
			}
		}
		for _, t := range snapshotTables(w.sparse.FromTables(rel, arch)) {
			t.EraseFrom(idx)
		}

		if m, ok := w.depths[rel]; ok {
			delete(m, idx)
		}
	}
}

func (w *World) ancestors(rel DataTypeId, e Entity) []Entity {
	var out []Entity
	cur := e.Index
	curArch := w.entities.Archetype(cur)
	for {
		t, row, ok := w.findOutgoing(rel, cur, curArch)
		if !ok {
			break
		}
		_, parent := t.Indices(row)
		out = append(out, w.entities.Handle(parent))
		cur, curArch = parent, w.entities.Archetype(parent)
	}
	return out
}

func (w *World) descendants(rel DataTypeId, e Entity) []Entity {
	var out []Entity
	var walk func(idx uint32, arch ArchetypeId)
	walk = func(idx uint32, arch ArchetypeId) {
		for _, t := range w.sparse.ToTables(rel, arch) {
			row, ok := t.FirstTo(idx)
			for ok {
				childIdx, _ := t.Indices(row)
				out = append(out, w.entities.Handle(childIdx))
				walk(childIdx, w.entities.Archetype(childIdx))
				row, ok = t.NextTo(row)
			}
		}
	}
	walk(e.Index, w.entities.Archetype(e.Index))
	return out
}

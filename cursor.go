package ecs

import (
	"iter"
	"sort"
)

// matchTarget is one query target's resolved position: the dense table it
// lives in and its row within that table.
type matchTarget struct {
	table  *DenseTable
	row    int
	entity Entity
}

// matchLink is one resolved relation link's storage location, letting
// RelationType[T].Get read the payload that produced the link's target.
type matchLink struct {
	table *SparseTable
	row   int
}

// Match is a single result yielded by View.All: one primary entity and, for
// every relation link the filter carries, the entity it resolved to.
// Component values are read off a Match through ComponentType[T].Get /
// TryGet; relation payloads through RelationType[T].Get, indexed by the
// order the filter's Relate calls were made.
type Match struct {
	targets []matchTarget
	links   []matchLink
}

// Entity returns the entity bound to the given target slot.
func (m Match) Entity(target int) Entity {
	return m.targets[target].entity
}

func (m Match) column(target int, col ColumnId) column {
	c, ok := m.targets[target].table.Column(col)
	if !ok {
		abort(StructuralViolationError{Detail: "query match target does not carry the requested component"})
	}
	return c
}

func (m Match) tryColumn(target int, col ColumnId) (column, bool) {
	return m.targets[target].table.Column(col)
}

func (m Match) row(target int) int {
	return m.targets[target].row
}

func (m Match) linkPayload(link int) any {
	l := m.links[link]
	return l.table.At(l.row)
}

// View is a live, re-iterable handle on a compiled QueryFilter bound to a
// specific world.
type View struct {
	world  *World
	filter *QueryFilter
	pins   map[int]Entity
}

// Query binds filter to w and returns a View for iterating matches; the
// filter is refreshed against w's archetype graph each time the View's All
// iterator runs. The returned View is cheap to discard; the
// filter itself is what is worth keeping and reusing across calls.
func (w *World) Query(filter *QueryFilter) *View {
	return &View{world: w, filter: filter}
}

// Pin constrains target to resolve to exactly e, instead of ranging over
// every candidate. Pinning a dead entity makes the view yield zero matches.
// Pinning both endpoints of a link lets iteration jump straight to the
// link's unique row rather than scanning the link's tables.
func (v *View) Pin(target int, e Entity) *View {
	if v.pins == nil {
		v.pins = make(map[int]Entity)
	}
	v.pins[target] = e
	return v
}

// queryLockBit is the reader lock bit every live View.All iteration holds.
const queryLockBit = 31

// All returns an iterator over every match currently satisfying the view's
// filter. The world is locked against structural mutation for the duration
// of iteration; use a CommandBuffer to queue mutations discovered while
// iterating.
func (v *View) All() iter.Seq[Match] {
	return func(yield func(Match) bool) {
		v.filter.refresh(v.world.graph)

		v.world.AddLock(queryLockBit)
		defer v.world.RemoveLock(queryLockBit)

		maxTarget := 0
		for _, l := range v.filter.links {
			if l.to > maxTarget {
				maxTarget = l.to
			}
		}
		targets := make([]matchTarget, maxTarget+1)

		if pinned, ok := v.pins[0]; ok {
			primary, ok := v.resolvePinnedPrimary(pinned)
			if !ok {
				return
			}
			targets[0] = primary
			if len(v.filter.links) == 0 {
				yield(Match{targets: append([]matchTarget(nil), targets[:1]...)})
				return
			}
			v.resolveLinks(targets, nil, 0, yield)
			return
		}

		for _, arch := range v.filter.matched {
			table, ok := v.world.dense.Existing(arch)
			if !ok {
				continue
			}
			for row := 0; row < table.Size(); row++ {
				targets[0] = matchTarget{
					table:  table,
					row:    row,
					entity: v.world.entities.Handle(table.Entity(row)),
				}

				if len(v.filter.links) == 0 {
					if !yield(Match{targets: append([]matchTarget(nil), targets[:1]...)}) {
						return
					}
					continue
				}

				if !v.resolveLinks(targets, nil, 0, yield) {
					return
				}
			}
		}
	}
}

func (v *View) resolvePinnedPrimary(e Entity) (matchTarget, bool) {
	if !v.world.entities.Alive(e) {
		return matchTarget{}, false
	}
	arch := v.world.entities.Archetype(e.Index)
	if !v.filter.archetypeMatches(v.world.graph, arch) {
		return matchTarget{}, false
	}
	table, ok := v.world.dense.Existing(arch)
	if !ok {
		return matchTarget{}, false
	}
	row, ok := table.Row(e.Index)
	if !ok {
		return matchTarget{}, false
	}
	return matchTarget{table: table, row: row, entity: e}, true
}

// resolveLinks walks filter.links[linkIdx:] depth-first, extending targets
// and links one link at a time, and yields a Match once every link has
// resolved. It returns false as soon as yield signals iteration should stop;
// a pinned target that cannot be resolved only skips the current branch.
func (v *View) resolveLinks(targets []matchTarget, links []matchLink, linkIdx int, yield func(Match) bool) bool {
	if linkIdx == len(v.filter.links) {
		return yield(Match{
			targets: append([]matchTarget(nil), targets...),
			links:   append([]matchLink(nil), links...),
		})
	}

	link := v.filter.links[linkIdx]
	from := targets[link.from]

	if pinned, ok := v.pins[link.to]; ok {
		target, pinnedLink, ok := v.resolvePinnedLink(link, from, pinned)
		if !ok {
			return true
		}
		targets[link.to] = target
		extended := append(links, matchLink{table: pinnedLink.table, row: pinnedLink.row})
		return v.resolveLinks(targets, extended, linkIdx+1, yield)
	}

	return v.iterateLinked(link, from, func(to matchTarget, t *SparseTable, row int) bool {
		targets[link.to] = to
		extended := append(links, matchLink{table: t, row: row})
		return v.resolveLinks(targets, extended, linkIdx+1, yield)
	})
}

type pinnedRow struct {
	table *SparseTable
	row   int
}

func (v *View) resolvePinnedLink(link linkSpec, from matchTarget, pinned Entity) (matchTarget, pinnedRow, bool) {
	if !v.world.entities.Alive(pinned) {
		return matchTarget{}, pinnedRow{}, false
	}
	toArch := v.world.entities.Archetype(pinned.Index)
	t, row, ok := v.world.sparse.FindRow(link.rel.ID(), from.entity.Index, from.table.archetype, pinned.Index, toArch, link.rel.Symmetric())
	if !ok {
		return matchTarget{}, pinnedRow{}, false
	}
	toTable, ok := v.world.dense.Existing(toArch)
	if !ok {
		return matchTarget{}, pinnedRow{}, false
	}
	toRow, ok := toTable.Row(pinned.Index)
	if !ok {
		return matchTarget{}, pinnedRow{}, false
	}
	return matchTarget{table: toTable, row: toRow, entity: pinned}, pinnedRow{table: t, row: row}, true
}

// iterateLinked walks every row of link reachable from the from endpoint,
// calling each for every candidate target it resolves to a live dense row.
// It scans both the tables rooted at from's archetype (the ordinary
// direction) and, for symmetric relations, the tables where from's
// archetype is the to side, since canonicalization can store either
// endpoint as "from". Self-edges would otherwise surface twice, once per
// direction, so the reverse scan skips any row whose endpoints are equal.
func (v *View) iterateLinked(link linkSpec, from matchTarget, each func(matchTarget, *SparseTable, int) bool) bool {
	relID := link.rel.ID()
	fromArch := from.table.archetype
	fromIdx := from.entity.Index

	forward := append([]*SparseTable(nil), v.world.sparse.FromTables(relID, fromArch)...)
	var reverse []*SparseTable
	if link.rel.Symmetric() {
		reverse = append([]*SparseTable(nil), v.world.sparse.ToTables(relID, fromArch)...)
	}
	sortLinkTables(forward, link.traversal)
	sortLinkTables(reverse, link.traversal)

	for _, t := range forward {
		row, ok := t.FirstFrom(fromIdx)
		for ok {
			_, toIdx := t.Indices(row)
			if !v.yieldLinkedRow(t, row, toIdx, each) {
				return false
			}
			row, ok = t.NextFrom(row)
		}
	}

	for _, t := range reverse {
		row, ok := t.FirstTo(fromIdx)
		for ok {
			fromEnd, toEnd := t.Indices(row)
			if fromEnd != toEnd { // self-edges already surfaced by the forward scan
				if !v.yieldLinkedRow(t, row, fromEnd, each) {
					return false
				}
			}
			row, ok = t.NextTo(row)
		}
	}
	return true
}

func sortLinkTables(tables []*SparseTable, traversal Traversal) {
	switch traversal {
	case TraversalDown:
		sort.Slice(tables, func(i, j int) bool { return tables[i].depth < tables[j].depth })
	case TraversalUp:
		sort.Slice(tables, func(i, j int) bool { return tables[i].depth > tables[j].depth })
	}
}

func (v *View) yieldLinkedRow(t *SparseTable, row int, otherIdx uint32, each func(matchTarget, *SparseTable, int) bool) bool {
	otherArch := v.world.entities.Archetype(otherIdx)
	toTable, ok := v.world.dense.Existing(otherArch)
	if !ok {
		return true
	}
	toRow, ok := toTable.Row(otherIdx)
	if !ok {
		return true
	}
	target := matchTarget{table: toTable, row: toRow, entity: v.world.entities.Handle(otherIdx)}
	return each(target, t, row)
}

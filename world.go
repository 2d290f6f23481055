package ecs

import (
	"fmt"
	"strings"

	"github.com/TheBitDrifter/mask"
)

// World owns every store the core is built from: the entity pool, the
// archetype graph, the dense component tables, and the sparse relation
// tables.
type World struct {
	registry *TypeRegistry
	entities *entityPool
	graph    *ArchetypeGraph
	dense    *DenseTableRegistry
	sparse   *SparseRegistry

	// depths tracks the current tree depth of every entity under every tree
	// relation it participates in as a child; depth is part of a tree
	// relation's sparse table key.
	depths map[DataTypeId]map[uint32]uint32

	locks mask.Mask256
}

// NewWorld creates an empty world backed by registry.
func NewWorld(registry *TypeRegistry) *World {
	return &World{
		registry: registry,
		entities: newEntityPool(),
		graph:    NewArchetypeGraph(),
		dense:    NewDenseTableRegistry(registry),
		sparse:   NewSparseRegistry(),
		depths:   make(map[DataTypeId]map[uint32]uint32),
	}
}

// Locked reports whether any reader/writer lock is currently held.
func (w *World) Locked() bool {
	return !w.locks.IsEmpty()
}

// AddLock marks bit held. View.All holds queryLockBit while it iterates;
// structural mutation is forbidden while any bit is held.
func (w *World) AddLock(bit uint32) {
	w.locks.Mark(bit)
}

// RemoveLock releases bit.
func (w *World) RemoveLock(bit uint32) {
	w.locks.Unmark(bit)
}

func (w *World) requireUnlocked() {
	if w.Locked() {
		abort(LockedWorldError{})
	}
}

// Create reserves and commits a new entity into the Empty archetype.
func (w *World) Create() Entity {
	w.requireUnlocked()
	e := w.entities.Create()
	w.dense.TableFor(w.graph, EmptyArchetype).PushEntity(e.Index)
	return e
}

// Reserve allocates an entity handle without committing it. The handle
// carries no archetype and is not visible to queries until CreateAt commits
// it.
func (w *World) Reserve() Entity {
	w.requireUnlocked()
	return w.entities.Reserve()
}

// CreateAt commits a previously reserved entity into the Empty archetype.
func (w *World) CreateAt(e Entity) {
	w.requireUnlocked()
	w.entities.CreateAt(e)
	w.dense.TableFor(w.graph, EmptyArchetype).PushEntity(e.Index)
}

// Alive reports whether e refers to a live, committed entity.
func (w *World) Alive(e Entity) bool {
	return w.entities.Alive(e)
}

// Archetype returns the archetype e currently carries, aborting if e is not
// alive.
func (w *World) Archetype(e Entity) ArchetypeId {
	if !w.entities.Alive(e) {
		abort(DeadEntityError{Entity: e})
	}
	return w.entities.Archetype(e.Index)
}

// Destroy removes e: every relation edge touching it is erased first (with
// tree-depth propagation to its descendants where applicable), then its
// dense row, then its pool slot.
func (w *World) Destroy(e Entity) {
	w.requireUnlocked()
	if !w.entities.Alive(e) {
		abort(DeadEntityError{Entity: e})
	}

	arch := w.entities.Archetype(e.Index)
	w.clearRelations(e, arch)

	if t, ok := w.dense.Existing(arch); ok {
		t.SwapErase(e.Index)
	}
	w.entities.Destroy(e.Index)
}

// Describe returns a short debug string naming e's index, generation and
// the names of its archetype's columns.
func (w *World) Describe(e Entity) string {
	if !w.entities.Contains(e) {
		return "entity(dead)"
	}
	arch := w.entities.Archetype(e.Index)
	if arch == InvalidArchetype {
		return "entity(reserved)"
	}
	cols := w.graph.Columns(arch)
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		info := w.registry.Info(DataTypeId(c - 1))
		names = append(names, info.Name)
	}
	return fmt.Sprintf("entity(%d:%d)[%s]", e.Index, e.Generation, strings.Join(names, ","))
}

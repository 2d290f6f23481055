package ecs

// Add attaches value under component type c to e, moving e to the archetype
// with c's column added if it did not already carry it, or overwriting the
// existing value in place otherwise.
func (c ComponentType[T]) Add(w *World, e Entity, value T) {
	w.addComponent(e, c.column, value)
}

// Remove detaches component type c from e, moving e to the archetype with
// c's column removed. A no-op if e does not carry c.
func (c ComponentType[T]) Remove(w *World, e Entity) {
	w.removeComponent(e, c.column)
}

// Get returns a pointer to c's value for the given query target, panicking
// if target does not carry c. Use TryGet for components declared optional
// in the filter.
func (c ComponentType[T]) Get(m Match, target int) *T {
	col := m.column(target, c.column)
	return col.(*typedColumn[T]).At(m.row(target))
}

// TryGet returns c's value for target and whether it was present, for
// optional query terms.
func (c ComponentType[T]) TryGet(m Match, target int) (*T, bool) {
	col, ok := m.tryColumn(target, c.column)
	if !ok {
		return nil, false
	}
	return col.(*typedColumn[T]).At(m.row(target)), true
}

func (w *World) addComponent(e Entity, col ColumnId, value any) {
	w.requireUnlocked()
	if !w.entities.Alive(e) {
		abort(DeadEntityError{Entity: e})
	}

	idx := e.Index
	oldArch := w.entities.Archetype(idx)
	oldTable := w.dense.TableFor(w.graph, oldArch)

	if w.graph.Contains(oldArch, col) {
		row, _ := oldTable.Row(idx)
		oldTable.SetColumn(col, row, value)
		return
	}

	newArch := w.graph.With(oldArch, col)
	newTable := w.dense.TableFor(w.graph, newArch)
	oldTable.SwapMove(idx, newTable)
	newTable.PushColumn(col, value)
	w.entities.SetArchetype(idx, newArch)
	w.moveSparse(e, oldArch, newArch)
}

func (w *World) removeComponent(e Entity, col ColumnId) {
	w.requireUnlocked()
	if !w.entities.Alive(e) {
		abort(DeadEntityError{Entity: e})
	}

	idx := e.Index
	oldArch := w.entities.Archetype(idx)
	if !w.graph.Contains(oldArch, col) {
		return
	}

	oldTable := w.dense.TableFor(w.graph, oldArch)
	newArch := w.graph.Without(oldArch, col)
	newTable := w.dense.TableFor(w.graph, newArch)
	oldTable.SwapMove(idx, newTable)
	w.entities.SetArchetype(idx, newArch)
	w.moveSparse(e, oldArch, newArch)
}

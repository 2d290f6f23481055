package ecs

import "fmt"

// TypeInfo is the tuple the core consults per DataTypeId: name, kind, and
// (for relations) the symmetric/tree marks. Size/alignment/copy/move/drop
// are represented in Go by columnFactory rather than raw thunks, since the
// core never manipulates component bytes directly.
type TypeInfo struct {
	ID        DataTypeId
	Name      string
	Kind      Kind
	Symmetric bool
	Tree      bool

	column columnFactory // nil for relations
}

// TypeRegistry records every component and relation type with a numeric id.
type TypeRegistry struct {
	names *SimpleCache[TypeInfo]
}

// NewTypeRegistry creates an empty type registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{names: NewCache[TypeInfo](0)}
}

// Info returns the registered info for id, aborting if it is unregistered —
// using an unregistered type is a programmer error.
func (r *TypeRegistry) Info(id DataTypeId) TypeInfo {
	if int(id) >= r.names.Len() {
		abort(UnregisteredTypeError{ID: id})
	}
	return *r.names.GetItem(int(id))
}

func (r *TypeRegistry) requireKind(id DataTypeId, want Kind) TypeInfo {
	info := r.Info(id)
	if info.Kind != want {
		abort(WrongKindError{Name: info.Name, Wanted: want, Observed: info.Kind})
	}
	return info
}

// ComponentType is the typed handle returned by RegisterComponent. It
// doubles as a Term usable in query filters and carries the Add/Remove/Get
// methods used to mutate and read it.
type ComponentType[T any] struct {
	id     DataTypeId
	name   string
	column ColumnId
}

// ID returns the component's DataTypeId.
func (c ComponentType[T]) ID() DataTypeId { return c.id }

// Column returns the component's ColumnId.
func (c ComponentType[T]) Column() ColumnId { return c.column }

// Name returns the component's registered name.
func (c ComponentType[T]) Name() string { return c.name }

// RegisterComponent registers a new component type T under name and returns
// its typed handle. Registering the same name twice aborts.
func RegisterComponent[T any](registry *TypeRegistry, name string) ComponentType[T] {
	info := TypeInfo{Kind: KindComponent, Name: name, column: newTypedColumn[T]}
	idx, err := registry.names.Register(name, info)
	if err != nil {
		abort(fmt.Errorf("RegisterComponent(%q): %w", name, err))
	}
	id := DataTypeId(idx)
	stored := registry.names.GetItem(idx)
	stored.ID = id
	return ComponentType[T]{id: id, name: name, column: columnFor(id)}
}

// RelationType is the typed handle returned by RegisterRelation.
type RelationType[T any] struct {
	id        DataTypeId
	name      string
	symmetric bool
	tree      bool
}

// ID returns the relation's DataTypeId.
func (r RelationType[T]) ID() DataTypeId { return r.id }

// Name returns the relation's registered name.
func (r RelationType[T]) Name() string { return r.name }

// Symmetric reports whether relate(a,b) and relate(b,a) denote the same edge.
func (r RelationType[T]) Symmetric() bool { return r.symmetric }

// Tree reports whether the relation is tree-shaped (at most one outgoing
// edge per source, acyclic, depth-tracked).
func (r RelationType[T]) Tree() bool { return r.tree }

// Relations returns the DataTypeId of every relation registered so far, in
// registration order. Used by World.Destroy to sweep every relation table
// touching a departing entity.
func (r *TypeRegistry) Relations() []DataTypeId {
	var out []DataTypeId
	for i := 0; i < r.names.Len(); i++ {
		info := r.names.GetItem(i)
		if info.Kind == KindRelation {
			out = append(out, info.ID)
		}
	}
	return out
}

// RegisterRelation registers a new relation type T under name with the given
// symmetric/tree marks.
func RegisterRelation[T any](registry *TypeRegistry, name string, symmetric, tree bool) RelationType[T] {
	info := TypeInfo{Kind: KindRelation, Name: name, Symmetric: symmetric, Tree: tree}
	idx, err := registry.names.Register(name, info)
	if err != nil {
		abort(fmt.Errorf("RegisterRelation(%q): %w", name, err))
	}
	id := DataTypeId(idx)
	stored := registry.names.GetItem(idx)
	stored.ID = id
	return RelationType[T]{id: id, name: name, symmetric: symmetric, tree: tree}
}

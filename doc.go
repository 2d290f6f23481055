/*
Package ecs provides the Entity-Component-System core of a voxel game engine.

The core stores game state as entities tagged with typed components and typed
binary relations, and answers structural queries over that state. It is built
around an archetype graph, dense per-archetype component tables, sparse
relation tables indexed by endpoint archetype, and a cursor-based query
iterator.

Core Concepts:

  - Entity: a recyclable (index, generation) handle.
  - Component: a typed value attached to an entity; entities sharing the same
    component set share an Archetype.
  - Relation: a typed binary edge between two entities, optionally symmetric
    or tree-shaped.
  - Archetype: the exact set of component types an entity currently carries.
  - Query: a compiled set of terms that matches entities and related pairs.

Basic Usage:

	registry := ecs.NewTypeRegistry()
	position := ecs.RegisterComponent[Position](registry, "Position")
	velocity := ecs.RegisterComponent[Velocity](registry, "Velocity")

	world := ecs.NewWorld(registry)

	e := world.Create()
	position.Add(world, e, Position{X: 1})
	velocity.Add(world, e, Velocity{X: 1, Y: 2})

	filter := ecs.NewQueryFilter(registry)
	filter.With(position, 0)
	filter.With(velocity, 0)

	view := world.Query(filter)
	for match := range view.All() {
		pos := position.Get(match, 0)
		pos.X += velocity.Get(match, 0).X
	}

blockforge/ecs is the underlying ECS core of the blockforge voxel engine but
also works as a standalone library.
*/
package ecs

package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type qPosition struct{ X, Y float64 }
type qVelocity struct{ X, Y float64 }
type qTag struct{}
type qOwns struct{}

func TestQueryFilterWithMatchesOnlyEntitiesCarryingTheComponent(t *testing.T) {
	registry := NewTypeRegistry()
	position := RegisterComponent[qPosition](registry, "qPosition")
	velocity := RegisterComponent[qVelocity](registry, "qVelocity")
	w := NewWorld(registry)

	withBoth := w.Create()
	position.Add(w, withBoth, qPosition{X: 1})
	velocity.Add(w, withBoth, qVelocity{X: 1})

	withPositionOnly := w.Create()
	position.Add(w, withPositionOnly, qPosition{X: 2})

	filter := NewQueryFilter(registry)
	filter.With(position, 0)
	filter.With(velocity, 0)

	matched := map[Entity]bool{}
	for m := range w.Query(filter).All() {
		matched[m.Entity(0)] = true
	}

	if !matched[withBoth] {
		t.Fatalf("expected entity with both components to match")
	}
	if matched[withPositionOnly] {
		t.Fatalf("did not expect entity missing velocity to match")
	}
}

func TestQueryFilterWithoutExcludesCarriers(t *testing.T) {
	registry := NewTypeRegistry()
	position := RegisterComponent[qPosition](registry, "qPosition")
	tag := RegisterComponent[qTag](registry, "qTag")
	w := NewWorld(registry)

	tagged := w.Create()
	position.Add(w, tagged, qPosition{})
	tag.Add(w, tagged, qTag{})

	untagged := w.Create()
	position.Add(w, untagged, qPosition{})

	filter := NewQueryFilter(registry)
	filter.With(position, 0)
	filter.Without(tag, 0)

	matched := map[Entity]bool{}
	for m := range w.Query(filter).All() {
		matched[m.Entity(0)] = true
	}
	if matched[tagged] {
		t.Fatalf("did not expect the tagged entity to match a Without(tag) filter")
	}
	if !matched[untagged] {
		t.Fatalf("expected the untagged entity to match")
	}
}

func TestQueryFilterOptionalReadsWithTryGet(t *testing.T) {
	registry := NewTypeRegistry()
	position := RegisterComponent[qPosition](registry, "qPosition")
	velocity := RegisterComponent[qVelocity](registry, "qVelocity")
	w := NewWorld(registry)

	e := w.Create()
	position.Add(w, e, qPosition{X: 1})

	filter := NewQueryFilter(registry)
	filter.With(position, 0)
	filter.Optional(velocity, 0)

	var sawMissingVelocity bool
	for m := range w.Query(filter).All() {
		if m.Entity(0) != e {
			continue
		}
		if _, ok := velocity.TryGet(m, 0); !ok {
			sawMissingVelocity = true
		}
	}
	if !sawMissingVelocity {
		t.Fatalf("expected TryGet to report the optional component absent")
	}
}

func TestQueryFilterRelateYieldsLinkedPairs(t *testing.T) {
	registry := NewTypeRegistry()
	tag := RegisterComponent[qTag](registry, "qTag")
	owns := RegisterRelation[qOwns](registry, "qOwns", false, false)
	w := NewWorld(registry)

	owner := w.Create()
	tag.Add(w, owner, qTag{})
	item := w.Create()

	require.NoError(t, owns.Relate(w, owner, item, qOwns{}))

	filter := NewQueryFilter(registry)
	filter.With(tag, 0)
	filter.Relate(owns, 0, 1, TraversalNone)

	var pairs int
	for m := range w.Query(filter).All() {
		if m.Entity(0) == owner && m.Entity(1) == item {
			pairs++
		}
	}
	require.Equal(t, 1, pairs, "expected exactly 1 linked pair")
}

func TestQueryFilterRelateSymmetricFindsEdgeRegardlessOfStorageDirection(t *testing.T) {
	registry := NewTypeRegistry()
	tag := RegisterComponent[qTag](registry, "qTag")
	friend := RegisterRelation[qOwns](registry, "qFriend", true, false)
	w := NewWorld(registry)

	a := w.Create()
	b := w.Create()
	tag.Add(w, b, qTag{})

	// a.Index < b.Index, so the edge canonicalizes to from=a, to=b. A query
	// rooted at b (the tagged, "to"-stored entity) must still find it.
	require.NoError(t, friend.Relate(w, a, b, qOwns{}))

	filter := NewQueryFilter(registry)
	filter.With(tag, 0)
	filter.Relate(friend, 0, 1, TraversalNone)

	var found bool
	for m := range w.Query(filter).All() {
		if m.Entity(0) == b && m.Entity(1) == a {
			found = true
		}
	}
	require.True(t, found, "expected the symmetric edge to be found from its canonical \"to\" side")
}

func TestQueryFilterSupportsMultipleChainedLinks(t *testing.T) {
	registry := NewTypeRegistry()
	tag := RegisterComponent[qTag](registry, "qTag")
	owns := RegisterRelation[qOwns](registry, "qOwns", false, false)
	w := NewWorld(registry)

	owner := w.Create()
	tag.Add(w, owner, qTag{})
	item := w.Create()
	part := w.Create()

	require.NoError(t, owns.Relate(w, owner, item, qOwns{}))
	require.NoError(t, owns.Relate(w, item, part, qOwns{}))

	filter := NewQueryFilter(registry)
	filter.With(tag, 0)
	filter.Relate(owns, 0, 1, TraversalNone)
	filter.Relate(owns, 1, 2, TraversalNone)

	var triples int
	for m := range w.Query(filter).All() {
		if m.Entity(0) == owner && m.Entity(1) == item && m.Entity(2) == part {
			triples++
		}
	}
	require.Equal(t, 1, triples)
}

func TestQueryFilterWithAbortsOnOutOfRangeTarget(t *testing.T) {
	registry := NewTypeRegistry()
	position := RegisterComponent[qPosition](registry, "qPosition")
	filter := NewQueryFilter(registry)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected With at an out-of-range target to abort")
		}
	}()
	filter.With(position, maxTargets)
}

func TestViewPinRestrictsIterationToTheGivenEntity(t *testing.T) {
	registry := NewTypeRegistry()
	position := RegisterComponent[qPosition](registry, "qPosition")
	w := NewWorld(registry)

	a := w.Create()
	position.Add(w, a, qPosition{X: 1})
	b := w.Create()
	position.Add(w, b, qPosition{X: 2})

	filter := NewQueryFilter(registry)
	filter.With(position, 0)

	var seen []Entity
	for m := range w.Query(filter).Pin(0, a).All() {
		seen = append(seen, m.Entity(0))
	}
	require.Equal(t, []Entity{a}, seen)
}

func TestViewPinDeadEntityYieldsNoMatches(t *testing.T) {
	registry := NewTypeRegistry()
	position := RegisterComponent[qPosition](registry, "qPosition")
	w := NewWorld(registry)

	a := w.Create()
	position.Add(w, a, qPosition{X: 1})
	w.Destroy(a)

	filter := NewQueryFilter(registry)
	filter.With(position, 0)

	count := 0
	for range w.Query(filter).Pin(0, a).All() {
		count++
	}
	require.Equal(t, 0, count)
}

func TestViewPinBothLinkEndpointsJumpsDirectlyToTheRow(t *testing.T) {
	registry := NewTypeRegistry()
	tag := RegisterComponent[qTag](registry, "qTag")
	owns := RegisterRelation[qOwns](registry, "qOwns", false, false)
	w := NewWorld(registry)

	owner := w.Create()
	tag.Add(w, owner, qTag{})
	item := w.Create()
	require.NoError(t, owns.Relate(w, owner, item, qOwns{}))
	other := w.Create()

	filter := NewQueryFilter(registry)
	filter.With(tag, 0)
	filter.Relate(owns, 0, 1, TraversalNone)

	var pairs int
	for m := range w.Query(filter).Pin(0, owner).Pin(1, item).All() {
		pairs++
		require.Equal(t, owner, m.Entity(0))
		require.Equal(t, item, m.Entity(1))
	}
	require.Equal(t, 1, pairs)

	pairs = 0
	for range w.Query(filter).Pin(0, owner).Pin(1, other).All() {
		pairs++
	}
	require.Equal(t, 0, pairs, "pinning the link target to an unrelated entity should yield nothing")
}

func TestQueryFilterIncrementalRefreshSeesLaterArchetypes(t *testing.T) {
	registry := NewTypeRegistry()
	position := RegisterComponent[qPosition](registry, "qPosition")
	velocity := RegisterComponent[qVelocity](registry, "qVelocity")
	w := NewWorld(registry)

	filter := NewQueryFilter(registry)
	filter.With(position, 0)
	view := w.Query(filter)

	for range view.All() {
	}

	// {position, velocity} does not exist until after the first iteration.
	e := w.Create()
	position.Add(w, e, qPosition{X: 9})
	velocity.Add(w, e, qVelocity{X: 1})

	var found bool
	for m := range view.All() {
		if m.Entity(0) == e {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a later-created archetype to be picked up by a reused filter")
	}
}

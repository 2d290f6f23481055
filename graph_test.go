package ecs

import "testing"

func TestArchetypeGraphWithWithoutRoundTrip(t *testing.T) {
	g := NewArchetypeGraph()
	a := g.With(EmptyArchetype, 1)
	b := g.With(a, 2)

	if !g.Contains(b, 1) || !g.Contains(b, 2) {
		t.Fatalf("expected archetype %v to contain columns 1 and 2", b)
	}

	back := g.Without(b, 1)
	if g.Contains(back, 1) {
		t.Fatalf("expected column 1 to be gone after Without")
	}
	if !g.Contains(back, 2) {
		t.Fatalf("expected column 2 to remain after removing column 1")
	}

	// Removing a column and adding it straight back must return to the
	// original archetype id (memoized edges).
	if g.With(back, 1) != b {
		t.Fatalf("expected With to retrace the memoized edge back to %v", b)
	}
}

func TestArchetypeGraphSameColumnSetAnyInsertionOrderSameId(t *testing.T) {
	g := NewArchetypeGraph()

	first := g.With(g.With(EmptyArchetype, 1), 2)
	second := g.With(g.With(EmptyArchetype, 2), 1)

	if first != second {
		t.Fatalf("expected {1,2} built in either order to share one archetype id, got %v and %v", first, second)
	}
}

func TestArchetypeGraphEmptyArchetypeHasNoColumns(t *testing.T) {
	g := NewArchetypeGraph()
	if len(g.Columns(EmptyArchetype)) != 0 {
		t.Fatalf("expected Empty archetype to have zero columns")
	}
	if g.First(EmptyArchetype) != InvalidColumn {
		t.Fatalf("expected First(Empty) to be InvalidColumn")
	}
}

func TestArchetypeGraphCollectFindsSupersets(t *testing.T) {
	g := NewArchetypeGraph()
	withA := g.With(EmptyArchetype, 1)
	withAB := g.With(withA, 2)
	withC := g.With(EmptyArchetype, 3)

	var matched []ArchetypeId
	var cursor int
	matched, cursor = g.Collect(withA, matched, cursor)

	found := map[ArchetypeId]bool{}
	for _, a := range matched {
		found[a] = true
	}
	if !found[withA] || !found[withAB] {
		t.Fatalf("expected Collect(withA) to include withA and withAB, got %v", matched)
	}
	if found[withC] {
		t.Fatalf("did not expect Collect(withA) to include an unrelated archetype %v", withC)
	}
	if cursor != g.Count() {
		t.Fatalf("expected cursor to advance to the current node count")
	}

	// A second Collect call with the advanced cursor should find nothing
	// new, since no archetype was created since.
	var more []ArchetypeId
	more, _ = g.Collect(withA, more, cursor)
	if len(more) != 0 {
		t.Fatalf("expected incremental Collect to find nothing new, got %v", more)
	}
}

func TestArchetypeGraphNextWalksStableOrder(t *testing.T) {
	g := NewArchetypeGraph()
	a := g.With(g.With(g.With(EmptyArchetype, 3), 1), 2)

	cols := g.Columns(a)
	if len(cols) != 3 {
		t.Fatalf("expected 3 columns, got %v", cols)
	}
	for i := 0; i < len(cols)-1; i++ {
		if g.Next(a, cols[i]) != cols[i+1] {
			t.Fatalf("expected Next(%v) == %v, got %v", cols[i], cols[i+1], g.Next(a, cols[i]))
		}
	}
	if g.Next(a, cols[len(cols)-1]) != InvalidColumn {
		t.Fatalf("expected Next of the last column to be InvalidColumn")
	}
}

package ecs

import "testing"

func TestEntityPoolCreateAssignsEmptyArchetype(t *testing.T) {
	p := newEntityPool()
	e := p.Create()
	if !p.Alive(e) {
		t.Fatalf("expected newly created entity to be alive")
	}
	if got := p.Archetype(e.Index); got != EmptyArchetype {
		t.Fatalf("expected Empty archetype, got %v", got)
	}
}

func TestEntityPoolReserveThenCreateAt(t *testing.T) {
	p := newEntityPool()
	e := p.Reserve()
	if p.Alive(e) {
		t.Fatalf("reserved-but-uncommitted entity should not be alive")
	}
	if !p.Contains(e) {
		t.Fatalf("reserved entity should be known to the pool")
	}
	p.CreateAt(e)
	if !p.Alive(e) {
		t.Fatalf("expected entity to be alive after CreateAt")
	}
}

func TestEntityPoolDestroyRecyclesIndexWithBumpedGeneration(t *testing.T) {
	p := newEntityPool()
	e1 := p.Create()
	p.Destroy(e1.Index)

	e2 := p.Create()
	if e2.Index != e1.Index {
		t.Fatalf("expected recycled index %d, got %d", e1.Index, e2.Index)
	}
	if e2.Generation != e1.Generation+1 {
		t.Fatalf("expected generation to bump from %d to %d, got %d", e1.Generation, e1.Generation+1, e2.Generation)
	}
	if p.Alive(e1) {
		t.Fatalf("stale handle must not be alive after recycling")
	}
	if !p.Alive(e2) {
		t.Fatalf("recycled handle must be alive")
	}
}

func TestEntityPoolContainsFalseForUnknownIndex(t *testing.T) {
	p := newEntityPool()
	if p.Contains(Entity{Index: 42, Generation: 0}) {
		t.Fatalf("expected Contains to be false for a never-allocated index")
	}
}

func TestEntityPoolNullEntityIsNeverAlive(t *testing.T) {
	p := newEntityPool()
	if p.Alive(NullEntity) {
		t.Fatalf("NullEntity must never be alive")
	}
	if !NullEntity.IsNull() {
		t.Fatalf("NullEntity.IsNull() must be true")
	}
}

func TestEntityPoolCreateAtAbortsOnDoubleCommit(t *testing.T) {
	p := newEntityPool()
	e := p.Create()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected CreateAt to abort on an already-committed index")
		}
	}()
	p.CreateAt(e)
}

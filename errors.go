package ecs

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
)

// LockedWorldError is raised via abort when a structural mutation is
// attempted while the world has an active lock held by an in-flight query.
type LockedWorldError struct{}

func (e LockedWorldError) Error() string {
	return "world is currently locked by an active query"
}

// DeadEntityError reports use of an entity that is no longer alive.
type DeadEntityError struct {
	Entity Entity
}

func (e DeadEntityError) Error() string {
	return fmt.Sprintf("entity %v is not alive", e.Entity)
}

// UnregisteredTypeError reports a DataTypeId the registry has no record of.
type UnregisteredTypeError struct {
	ID DataTypeId
}

func (e UnregisteredTypeError) Error() string {
	return fmt.Sprintf("data type %d is not registered", e.ID)
}

// WrongKindError reports a type used as a component where a relation was
// required, or vice versa.
type WrongKindError struct {
	Name     string
	Wanted   Kind
	Observed Kind
}

func (e WrongKindError) Error() string {
	return fmt.Sprintf("type %q is registered as kind %d, operation requires kind %d", e.Name, e.Observed, e.Wanted)
}

// TreeCycleError reports a relate() that would create a cycle in a tree
// relation.
type TreeCycleError struct {
	Relation   string
	From, To   Entity
}

func (e TreeCycleError) Error() string {
	return fmt.Sprintf("relate(%v, %v, %s) would create a cycle", e.From, e.To, e.Relation)
}

// SelfRelationError reports an attempt to relate an entity to itself under a
// tree relation, forbidden even when the relation is also symmetric.
type SelfRelationError struct {
	Relation string
	Entity   Entity
}

func (e SelfRelationError) Error() string {
	return fmt.Sprintf("relate(%v, %v, %s): self-edges are forbidden on tree relations", e.Entity, e.Entity, e.Relation)
}

// TargetOutOfRangeError reports a query target index at or beyond the static
// maximum target count, raised by QueryFilter.With/Without/Optional/Relate.
type TargetOutOfRangeError struct {
	Target int
	Max    int
}

func (e TargetOutOfRangeError) Error() string {
	return fmt.Sprintf("query target %d exceeds maximum of %d targets", e.Target, e.Max)
}

// StructuralViolationError reports a detected symmetric/tree invariant
// violation during internal rewriting; this indicates a core bug, not a
// client error.
type StructuralViolationError struct {
	Detail string
}

func (e StructuralViolationError) Error() string {
	return fmt.Sprintf("structural invariant violated: %s", e.Detail)
}

// DepthSaturatedError reports an attempted insertion at an already-saturated
// tree depth: depth counters saturate at u32::MAX and abort rather than
// wrap on overflow.
type DepthSaturatedError struct {
	Relation string
}

func (e DepthSaturatedError) Error() string {
	return fmt.Sprintf("relation %q: tree depth saturated at maximum uint32 value", e.Relation)
}

// abort panics with a stack-traced error at programmer-error sites —
// operations on a dead entity, an unregistered type, or a detected
// structural invariant violation.
func abort(err error) {
	panic(bark.AddTrace(err))
}

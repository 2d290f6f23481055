package ecs

// DepthOverflowPolicy selects what happens when a tree relation's depth
// counter would overflow uint32. The only supported policy saturates the
// counter and aborts on the insertion that would push it past saturation;
// the field exists so a future policy can be added without changing
// callers.
type DepthOverflowPolicy uint8

const (
	// DepthOverflowSaturate clamps depth at math.MaxUint32 and aborts any
	// insertion that would need to go further.
	DepthOverflowSaturate DepthOverflowPolicy = iota
)

// RowEvents are pass-through hooks for structural row moves and erasures.
// The core stores them via Config.SetRowEvents but never calls them, so they
// have no effect on its behavior; an embedding engine (telemetry,
// render-device buffer hints, and the like) may read and use them.
type RowEvents struct {
	OnRowMoved  func(arch ArchetypeId, oldRow, newRow int)
	OnRowErased func(arch ArchetypeId, row int)
}

// Config holds process-global, non-behavioral configuration for the core.
var Config config = config{}

type config struct {
	rowEvents     RowEvents
	depthOverflow DepthOverflowPolicy
}

// SetRowEvents installs the pass-through row-event hooks.
func (c *config) SetRowEvents(e RowEvents) {
	c.rowEvents = e
}

// SetDepthOverflowPolicy sets the tree-relation depth overflow policy.
func (c *config) SetDepthOverflowPolicy(p DepthOverflowPolicy) {
	c.depthOverflow = p
}

package ecs

// factory is a single discoverable entry point bundling the package's
// top-level constructors, for callers that prefer it over calling the free
// functions directly.
type factory struct{}

// Factory is the global factory instance.
var Factory factory

// NewTypeRegistry creates an empty type registry.
func (f factory) NewTypeRegistry() *TypeRegistry { return NewTypeRegistry() }

// NewWorld creates an empty world backed by registry.
func (f factory) NewWorld(registry *TypeRegistry) *World { return NewWorld(registry) }

// NewQueryFilter creates an empty filter bound to registry.
func (f factory) NewQueryFilter(registry *TypeRegistry) *QueryFilter { return NewQueryFilter(registry) }

// NewCommandBuffer creates an empty command buffer.
func (f factory) NewCommandBuffer() *CommandBuffer { return NewCommandBuffer() }

package component

// ResourceType names a carryable resource kind. Kept as a string so saves
// and storage contents stay readable and table-driven types need no registry.
type ResourceType string

// Resource is a loose item dropped by mining. It falls under gravity until
// grounded; the false→true grounding transition is the sole trigger for
// Collect-task generation.
type Resource struct {
	Type     ResourceType `json:"type"`
	Grounded bool         `json:"grounded"`
}

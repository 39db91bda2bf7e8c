package tool

// DefaultLoaders lists the namespaces available to the planner, in the order
// they appear in the capability listing.
func DefaultLoaders() []NamespaceLoader {
	return []NamespaceLoader{
		LoadMathTools,
		LoadStringTools,
	}
}

// NewDefaultRegistry loads every built-in namespace.
func NewDefaultRegistry() *Registry {
	return Load(DefaultLoaders()...)
}

package prompt

import (
	"fmt"

	toolx "github.com/tanpawarit/tool-enhanced-reasoning/agent/tool"
)

// Builder assembles the full planner prompt for a query. The system part
// depends only on the registry, so it is rendered once.
type Builder struct {
	system string
}

func NewBuilder(set PromptSet, registry *toolx.Registry) (*Builder, error) {
	if registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	system, err := set.Render(registry.Describe(), registry.Namespaces())
	if err != nil {
		return nil, err
	}
	return &Builder{system: system}, nil
}

// Build appends the query verbatim after the system prompt.
func (b *Builder) Build(query string) string {
	return fmt.Sprintf("%s\n\nUser Query: %s\n\nResponse:", b.system, query)
}

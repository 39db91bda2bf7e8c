package executor

import contractx "github.com/tanpawarit/tool-enhanced-reasoning/agent/contract"

// Variables holds step results by name for a single plan run. Writing an
// existing name overwrites its value but keeps its original position.
type Variables struct {
	values map[string]any
	order  []string
}

func NewVariables() *Variables {
	return &Variables{values: map[string]any{}}
}

func (v *Variables) Set(name string, value any) {
	if _, exists := v.values[name]; !exists {
		v.order = append(v.order, name)
	}
	v.values[name] = value
}

func (v *Variables) Get(name string) (any, bool) {
	if v == nil {
		return nil, false
	}
	value, ok := v.values[name]
	return value, ok
}

func (v *Variables) Len() int {
	if v == nil {
		return 0
	}
	return len(v.order)
}

// Substitute replaces every string argument that exactly equals a stored name
// with that variable's value. Other arguments pass through unchanged, and
// nested values are never inspected.
func (v *Variables) Substitute(args []any) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		out[i] = arg
		name, ok := arg.(string)
		if !ok {
			continue
		}
		if value, found := v.Get(name); found {
			out[i] = value
		}
	}
	return out
}

// Snapshot returns the bindings in first-write order.
func (v *Variables) Snapshot() []contractx.Variable {
	if v == nil {
		return nil
	}
	out := make([]contractx.Variable, 0, len(v.order))
	for _, name := range v.order {
		out = append(out, contractx.Variable{Name: name, Value: v.values[name]})
	}
	return out
}

package tool

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/tool-enhanced-reasoning/agent/contract"
)

// Func is the body of a tool function. Arguments arrive already bound to the
// signature: optional parameters are filled with their defaults.
type Func func(args []any) (any, error)

type Param struct {
	Name    string
	Default any
}

// Signature describes the accepted arguments of a tool function: required
// parameters, then either optional parameters with defaults or one variadic
// tail.
type Signature struct {
	Params   []string
	Optional []Param
	Variadic string
}

func Fixed(params ...string) Signature {
	return Signature{Params: params}
}

func Variadic(name string) Signature {
	return Signature{Variadic: name}
}

func (s Signature) WithDefault(name string, value any) Signature {
	s.Optional = append(append([]Param(nil), s.Optional...), Param{Name: name, Default: value})
	return s
}

func (s Signature) MinArgs() int {
	return len(s.Params)
}

// MaxArgs returns -1 for variadic signatures.
func (s Signature) MaxArgs() int {
	if s.Variadic != "" {
		return -1
	}
	return len(s.Params) + len(s.Optional)
}

func (s Signature) CheckArity(n int) error {
	lo, hi := s.MinArgs(), s.MaxArgs()
	switch {
	case n < lo && hi == -1:
		return fmt.Errorf("%w: expected at least %d argument(s), got %d", contractx.ErrArity, lo, n)
	case hi == -1:
		return nil
	case lo == hi && n != lo:
		return fmt.Errorf("%w: expected %d argument(s), got %d", contractx.ErrArity, lo, n)
	case n < lo || n > hi:
		return fmt.Errorf("%w: expected %d to %d argument(s), got %d", contractx.ErrArity, lo, hi, n)
	}
	return nil
}

func (s Signature) bind(args []any) []any {
	if len(s.Optional) == 0 {
		return args
	}
	out := append([]any(nil), args...)
	for i := len(args) - len(s.Params); i < len(s.Optional); i++ {
		out = append(out, s.Optional[i].Default)
	}
	return out
}

func (s Signature) String() string {
	parts := make([]string, 0, len(s.Params)+len(s.Optional)+1)
	parts = append(parts, s.Params...)
	for _, p := range s.Optional {
		parts = append(parts, p.Name+"="+renderDefault(p.Default))
	}
	if s.Variadic != "" {
		parts = append(parts, "*"+s.Variadic)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func renderDefault(v any) string {
	switch x := v.(type) {
	case string:
		return "'" + x + "'"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

type Function struct {
	Name        string
	Description string
	Signature   Signature
	Call        Func
}

// ErrMathRange is returned when a function produces an infinite or NaN result.
var ErrMathRange = errors.New("math range error")

// Invoke validates the argument count before calling the body. Non-finite
// float results are rejected so they never reach a report.
func (f Function) Invoke(args []any) (any, error) {
	if err := f.Signature.CheckArity(len(args)); err != nil {
		return nil, err
	}
	out, err := f.Call(f.Signature.bind(args))
	if err != nil {
		return nil, err
	}
	if v, ok := out.(float64); ok && (math.IsInf(v, 0) || math.IsNaN(v)) {
		return nil, ErrMathRange
	}
	return out, nil
}

// Namespace is an ordered table of functions sharing a name prefix.
type Namespace struct {
	name  string
	funcs []Function
	index map[string]int
}

func NewNamespace(name string) *Namespace {
	return &Namespace{name: name, index: map[string]int{}}
}

func (n *Namespace) Name() string {
	return n.name
}

func (n *Namespace) Add(fn Function) error {
	name := strings.TrimSpace(fn.Name)
	if name == "" || fn.Call == nil {
		return fmt.Errorf("%w: namespace=%s has an incomplete function entry", contractx.ErrToolLoad, n.name)
	}
	if strings.HasPrefix(name, "_") {
		return fmt.Errorf("%w: function=%s is private", contractx.ErrToolLoad, name)
	}
	if _, exists := n.index[name]; exists {
		return fmt.Errorf("%w: duplicate function=%s in namespace=%s", contractx.ErrToolLoad, name, n.name)
	}
	fn.Name = name
	n.index[name] = len(n.funcs)
	n.funcs = append(n.funcs, fn)
	return nil
}

// AddAll stops at the first failing entry.
func (n *Namespace) AddAll(fns ...Function) error {
	for _, fn := range fns {
		if err := n.Add(fn); err != nil {
			return err
		}
	}
	return nil
}

func (n *Namespace) Len() int {
	return len(n.funcs)
}

// NamespaceLoader builds one namespace. Loaders run once, at registry load.
type NamespaceLoader func() (*Namespace, error)

// NotFoundError reports which part of a tool reference could not be found.
type NotFoundError struct {
	Namespace string
	Function  string
	Kind      error
}

func (e *NotFoundError) Error() string {
	if errors.Is(e.Kind, contractx.ErrNamespaceNotFound) {
		return fmt.Sprintf("tool '%s' not found", e.Namespace)
	}
	return fmt.Sprintf("function '%s' not found in %s", e.Function, e.Namespace)
}

func (e *NotFoundError) Unwrap() []error {
	return []error{e.Kind, contractx.ErrNotFound}
}

// MissingNamespace reports whether the namespace itself was absent.
func (e *NotFoundError) MissingNamespace() bool {
	return errors.Is(e.Kind, contractx.ErrNamespaceNotFound)
}

// Registry maps namespace names to function tables. It is never mutated after
// Load returns and can be shared freely.
type Registry struct {
	namespaces []*Namespace
	index      map[string]int
}

// Load runs every loader. A failing loader is logged and skipped; the
// remaining namespaces still load.
func Load(loaders ...NamespaceLoader) *Registry {
	r := &Registry{index: map[string]int{}}
	for i, loader := range loaders {
		ns, err := runLoader(loader)
		if err == nil && ns != nil {
			if _, dup := r.index[ns.name]; dup {
				err = fmt.Errorf("%w: duplicate namespace=%s", contractx.ErrToolLoad, ns.name)
			}
		}
		if err == nil && (ns == nil || strings.TrimSpace(ns.name) == "") {
			err = fmt.Errorf("%w: loader=%d returned no namespace", contractx.ErrToolLoad, i)
		}
		if err != nil {
			log.Error().Err(err).Int("loader", i).Msg("failed to load tool namespace")
			continue
		}

		r.index[ns.name] = len(r.namespaces)
		r.namespaces = append(r.namespaces, ns)
		log.Info().Str("namespace", ns.name).Int("functions", ns.Len()).Msg("loaded tool namespace")
	}
	return r
}

func runLoader(loader NamespaceLoader) (ns *Namespace, err error) {
	if loader == nil {
		return nil, fmt.Errorf("%w: nil loader", contractx.ErrToolLoad)
	}
	defer func() {
		if rec := recover(); rec != nil {
			ns, err = nil, fmt.Errorf("%w: loader panic: %v", contractx.ErrToolLoad, rec)
		}
	}()
	ns, err = loader()
	if err != nil && !errors.Is(err, contractx.ErrToolLoad) {
		err = fmt.Errorf("%w: %v", contractx.ErrToolLoad, err)
	}
	return ns, err
}

func (r *Registry) Resolve(namespace, function string) (Function, error) {
	i, ok := r.index[namespace]
	if !ok {
		return Function{}, &NotFoundError{Namespace: namespace, Function: function, Kind: contractx.ErrNamespaceNotFound}
	}
	ns := r.namespaces[i]
	j, ok := ns.index[function]
	if !ok {
		return Function{}, &NotFoundError{Namespace: namespace, Function: function, Kind: contractx.ErrFunctionNotFound}
	}
	return ns.funcs[j], nil
}

func (r *Registry) Namespaces() []string {
	out := make([]string, 0, len(r.namespaces))
	for _, ns := range r.namespaces {
		out = append(out, ns.name)
	}
	return out
}

func (r *Registry) Functions(namespace string) []string {
	i, ok := r.index[namespace]
	if !ok {
		return nil
	}
	funcs := r.namespaces[i].funcs
	out := make([]string, 0, len(funcs))
	for _, fn := range funcs {
		out = append(out, fn.Name)
	}
	return out
}

// Describe renders the capability listing injected into the planner prompt.
// Namespaces and functions appear in registration order.
func (r *Registry) Describe() string {
	var b strings.Builder
	for _, ns := range r.namespaces {
		b.WriteString("\n## ")
		b.WriteString(strings.ToUpper(ns.name))
		b.WriteString(":")
		for _, fn := range ns.funcs {
			desc := strings.TrimSpace(fn.Description)
			if desc == "" {
				desc = "No description available"
			}
			fmt.Fprintf(&b, "\n- %s%s: %s", fn.Name, fn.Signature, desc)
		}
	}
	return b.String()
}

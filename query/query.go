package query

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/zero-day-ai/lateral/chain"
)

// ErrNotBool is returned when an expression does not produce a bool.
var ErrNotBool = errors.New("filter expression must evaluate to bool")

// Filter is a compiled chain filter. It is safe for concurrent use.
type Filter struct {
	expr string
	prg  cel.Program
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("hops", cel.ListType(cel.MapType(cel.StringType, cel.StringType))),
		cel.Variable("length", cel.IntType),
		cel.Variable("exploits", cel.ListType(cel.StringType)),
		cel.Variable("systems", cel.ListType(cel.StringType)),
	)
}

// Compile parses and type-checks expr.
func Compile(expr string) (*Filter, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, iss.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: %q has type %s", ErrNotBool, expr, out)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to plan filter %q: %w", expr, err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string) *Filter {
	f, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return f
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}

// Match evaluates the filter against c.
func (f *Filter) Match(c chain.Chain) (bool, error) {
	out, _, err := f.prg.Eval(Activation(c))
	if err != nil {
		return false, fmt.Errorf("evaluating filter %q: %w", f.expr, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q returned %s", ErrNotBool, f.expr, out.Type())
	}
	return b, nil
}

// Apply returns the chains matching the filter, preserving order.
// A nil filter matches everything.
func (f *Filter) Apply(chains []chain.Chain) ([]chain.Chain, error) {
	if f == nil {
		return chains, nil
	}
	out := make([]chain.Chain, 0, len(chains))
	for i, c := range chains {
		ok, err := f.Match(c)
		if err != nil {
			return nil, fmt.Errorf("chain %d: %w", i, err)
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Activation returns the variables a filter sees for c.
func Activation(c chain.Chain) map[string]any {
	hops := make([]any, len(c))
	systems := make([]string, 0, len(c))
	for i, h := range c {
		hops[i] = map[string]string{
			"from":    h.From,
			"to":      h.To,
			"exploit": h.Exploit,
			"service": h.Service,
		}
		if !h.IsLocal() {
			systems = append(systems, h.To)
		}
	}
	return map[string]any{
		"hops":     hops,
		"length":   len(c),
		"exploits": c.Exploits(),
		"systems":  systems,
	}
}

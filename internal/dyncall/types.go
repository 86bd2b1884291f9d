package dyncall

import (
	"errors"
	"fmt"
)

// #region errors

// ErrNotIntrospectable is returned when a callable's parameter list cannot
// be reflected (opaque native funcs, arbitrary values).
var ErrNotIntrospectable = errors.New("callable is not introspectable")

// #endregion errors

// #region args

// Args is the raw positional-argument tuple of one invocation.
type Args []any

// Kwargs is the keyword-argument set of one invocation.
type Kwargs map[string]any

// Clone returns a shallow copy, safe for the caller to mutate.
func (k Kwargs) Clone() Kwargs {
	out := make(Kwargs, len(k))
	for name, v := range k {
		out[name] = v
	}
	return out
}

// #endregion args

// #region signature

// Param is a single declared parameter: a name plus an optional default.
type Param struct {
	Name       string
	Default    any
	HasDefault bool
}

// Signature is the declared parameter list of a callable: ordered names,
// which of them carry defaults, and variadic acceptance flags.
type Signature struct {
	Params     []Param
	Variadic   bool // accepts extra positional arguments
	VariadicKW bool // accepts extra keyword arguments
}

// Names returns the declared parameter names in order.
func (s Signature) Names() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

// Has reports whether name is among the declared (non-variadic) parameters.
func (s Signature) Has(name string) bool {
	for _, p := range s.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// P declares a plain parameter.
func P(name string) Param { return Param{Name: name} }

// D declares a parameter with a default value.
func D(name string, def any) Param {
	return Param{Name: name, Default: def, HasDefault: true}
}

// Sig builds a non-variadic signature from params.
func Sig(params ...Param) Signature { return Signature{Params: params} }

// #endregion signature

// #region callable

// Callable is anything invokable under the (args, kwargs) convention.
type Callable interface {
	Call(args Args, kw Kwargs) (any, error)
}

// Introspectable is a callable whose declared parameter list is available
// at runtime.
type Introspectable interface {
	Callable
	Signature() Signature
}

// Func is a plain introspectable function: the Go rendition of a dynamic
// function object. Name and Doc are identity metadata carried through
// wrapping for introspection parity.
type Func struct {
	Name string
	Doc  string
	Pkg  string // package path of the defining library, may be empty
	Sig  Signature
	Impl func(args Args, kw Kwargs) (any, error)
}

// Call invokes the function body.
func (f *Func) Call(args Args, kw Kwargs) (any, error) {
	if f.Impl == nil {
		return nil, fmt.Errorf("func %s: no implementation", f.Name)
	}
	return f.Impl(args, kw)
}

// Signature returns the declared parameter list.
func (f *Func) Signature() Signature { return f.Sig }

// BoundMethod is a Func bound to a receiver: calls prepend the receiver to
// the positional arguments.
type BoundMethod struct {
	Recv any
	Fn   *Func
}

// Call invokes the underlying function with the receiver prepended.
func (m *BoundMethod) Call(args Args, kw Kwargs) (any, error) {
	bound := make(Args, 0, len(args)+1)
	bound = append(bound, m.Recv)
	bound = append(bound, args...)
	return m.Fn.Call(bound, kw)
}

// Signature returns the underlying function's parameter list, receiver
// parameter included.
func (m *BoundMethod) Signature() Signature { return m.Fn.Sig }

// #endregion callable

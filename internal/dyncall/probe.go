package dyncall

import "fmt"

// #region probe

// SignatureOf reflects the declared parameter list of fn. Fails with
// ErrNotIntrospectable for callables that do not expose one.
func SignatureOf(fn any) (Signature, error) {
	switch v := fn.(type) {
	case Introspectable:
		return v.Signature(), nil
	case interface{ Signature() Signature }:
		return v.Signature(), nil
	default:
		return Signature{}, fmt.Errorf("reflect %T: %w", fn, ErrNotIntrospectable)
	}
}

// ParamInFunc reports whether name occurs in fn's declared (non-variadic)
// parameter list. Reflection happens at call time, nothing is cached.
func ParamInFunc(fn any, name string) (bool, error) {
	sig, err := SignatureOf(fn)
	if err != nil {
		return false, err
	}
	return sig.Has(name), nil
}

// #endregion probe

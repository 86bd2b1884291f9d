// Package adapt makes stale patches of the canonical forward method
// compatible with its current signature. A patch missing recognized
// extension parameters is wrapped so those parameters are stripped from
// incoming calls before delegation.
package adapt

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/layertrack/internal/dyncall"
	"github.com/danielpatrickdp/layertrack/internal/logging"
)

// #region extension-params

// ExtensionParams is the fixed set of optional output-control parameters a
// patch may lack without being otherwise incompatible. Process-wide
// constant, not configurable per call.
var ExtensionParams = []string{"output_hidden_states", "output_attentions", "return_dict"}

// #endregion extension-params

// #region owner

// Owner is the class or instance a patch is being assigned to.
type Owner interface {
	// OwnerName is a display name for diagnostics.
	OwnerName() string
	// OwnerPkg is the package path of the defining library.
	OwnerPkg() string
}

// Instance is an owner that is a live tracked instance; the adapter binds
// it as the first argument when delegating to a plain function patch.
type Instance interface {
	Owner
	// Self returns the instance value to bind.
	Self() any
}

// nativePrefix marks classes defined by this library; the distinction only
// changes diagnostic wording.
const nativePrefix = "github.com/danielpatrickdp/layertrack"

// #endregion owner

// #region compiled-dispatch

// compiledDispatch reports whether v is an already compiled/traced dispatch
// object, identified by type-name suffix convention. Such objects are
// opaque and must not be wrapped.
func compiledDispatch(v any) bool {
	t := reflect.TypeOf(v)
	if t == nil {
		return false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.HasSuffix(t.Name(), "StaticFunction")
}

// #endregion compiled-dispatch

// #region adapt

// Adapt decides whether value is a compatible replacement for canonical and,
// if not, returns a wrapping callable that strips the missing extension
// parameters from incoming calls. The returned missing slice names the
// stripped parameters, empty when value was returned unchanged. Compatibility
// is re-derived on every call; nothing is cached, so re-adapting an already
// adapted patch is safe.
func Adapt(canonical any, value any, owner Owner) (any, []string, error) {
	if compiledDispatch(value) {
		return value, nil, nil
	}

	patchSig, err := dyncall.SignatureOf(value)
	if err != nil {
		return nil, nil, fmt.Errorf("adapt patch for %s: %w", owner.OwnerName(), err)
	}
	canonSig, err := dyncall.SignatureOf(canonical)
	if err != nil {
		return nil, nil, fmt.Errorf("adapt canonical for %s: %w", owner.OwnerName(), err)
	}

	var missing []string
	for _, name := range ExtensionParams {
		if canonSig.Has(name) && !patchSig.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return value, nil, nil
	}

	warn(owner, missing)
	return wrap(value, missing, owner), missing, nil
}

func warn(owner Owner, missing []string) {
	if strings.HasPrefix(owner.OwnerPkg(), nativePrefix) {
		logging.L().Warn("forward patch is missing arguments; compatibility added, the patch should be updated",
			zap.String("owner", owner.OwnerName()),
			zap.Strings("missing", missing))
		return
	}
	logging.L().Warn("forward patch may conflict with patches made by this library, which have more arguments; compatibility added",
		zap.String("owner", owner.OwnerName()),
		zap.Strings("missing", missing))
}

// wrap builds the adapting callable. It preserves the patch's name and doc
// for introspection parity but declares a bare variadic signature of its
// own: a later adaptation pass over the wrapper finds no named extension
// parameters to strip and leaves it alone, so wraps never accumulate.
func wrap(value any, missing []string, owner Owner) *dyncall.Func {
	name, doc, pkg := identity(value)
	fn, plain := value.(*dyncall.Func)
	inst, isInstance := owner.(Instance)
	bind := plain && isInstance && inst.Self() != nil

	return &dyncall.Func{
		Name: name,
		Doc:  doc,
		Pkg:  pkg,
		Sig:  dyncall.Signature{Variadic: true, VariadicKW: true},
		Impl: func(args dyncall.Args, kw dyncall.Kwargs) (any, error) {
			if len(kw) > 0 {
				kw = kw.Clone()
				for _, m := range missing {
					delete(kw, m)
				}
			}
			if bind {
				bound := make(dyncall.Args, 0, len(args)+1)
				bound = append(bound, inst.Self())
				bound = append(bound, args...)
				return fn.Call(bound, kw)
			}
			call, ok := value.(dyncall.Callable)
			if !ok {
				return nil, fmt.Errorf("patch %s is not callable", name)
			}
			return call.Call(args, kw)
		},
	}
}

func identity(value any) (name, doc, pkg string) {
	if fn, ok := value.(*dyncall.Func); ok {
		return fn.Name, fn.Doc, fn.Pkg
	}
	if m, ok := value.(*dyncall.BoundMethod); ok {
		return m.Fn.Name, m.Fn.Doc, m.Fn.Pkg
	}
	return fmt.Sprintf("%T", value), "", ""
}

// #endregion adapt

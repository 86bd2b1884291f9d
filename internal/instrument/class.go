// Package instrument wraps class construction with configuration tracking
// and routes patches of the canonical forward method through signature
// adaptation. Classes opt in through an explicit Instrument call at the
// definition site; patches go through the SetMethod entry points rather
// than implicit attribute interception.
package instrument

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/layertrack/internal/adapt"
	"github.com/danielpatrickdp/layertrack/internal/config"
	"github.com/danielpatrickdp/layertrack/internal/dyncall"
)

// Forward is the canonical dispatch method name. Its signature is the
// compatibility baseline for patch adaptation.
const Forward = "forward"

// ErrNoConstructor is returned when neither a class nor any of its bases
// declares a constructor.
var ErrNoConstructor = errors.New("class declares no constructor")

// #region hooks

// Hook runs immediately before or after the original constructor body. It
// receives the instance, the original constructor and the call's raw
// arguments, unmodified.
type Hook func(obj *Object, init *dyncall.Func, args dyncall.Args, kw dyncall.Kwargs)

// #endregion hooks

// #region class

// Class describes one constructible, instrumentable class: a declared
// constructor, optional pre/post construction hooks, an optional base class
// and a method table.
type Class struct {
	Name string
	Pkg  string // package path of the defining library
	Base *Class

	// Init is the class's own declared constructor. Nil means the
	// constructor is inherited and must not be re-wrapped here.
	Init *dyncall.Func

	// PreInit and PostInit are the fixed-name construction hooks,
	// recognized only when the class declares its own Init.
	PreInit  Hook
	PostInit Hook

	methods      map[string]any
	ctor         func(obj *Object, args dyncall.Args, kw dyncall.Kwargs) error
	instrumented bool
}

// OwnerName implements adapt.Owner.
func (c *Class) OwnerName() string { return c.Name }

// OwnerPkg implements adapt.Owner.
func (c *Class) OwnerPkg() string { return c.Pkg }

// Instrument replaces the class's own declared constructor with a tracking
// wrapper and returns the same class. Classes with an inherited constructor
// keep their base's wrapper, which already tracks; wrapping again would
// double-run hooks. Idempotent.
func Instrument(c *Class) *Class {
	if c.instrumented {
		return c
	}
	if c.methods == nil {
		c.methods = make(map[string]any)
	}
	if c.Init != nil {
		c.ctor = trackInit(c.Init, c.hook(func(x *Class) Hook { return x.PreInit }), c.hook(func(x *Class) Hook { return x.PostInit }))
	}
	c.instrumented = true
	return c
}

// hook resolves a fixed-name hook, walking the base chain the way dynamic
// attribute lookup would.
func (c *Class) hook(get func(*Class) Hook) Hook {
	for cur := c; cur != nil; cur = cur.Base {
		if h := get(cur); h != nil {
			return h
		}
	}
	return nil
}

// DeclareMethod stores a method on the class without adaptation. Meant for
// the class's own definition-time methods, the canonical forward included.
func (c *Class) DeclareMethod(name string, fn *dyncall.Func) {
	if c.methods == nil {
		c.methods = make(map[string]any)
	}
	c.methods[name] = fn
}

// Method resolves name on the class, walking the base chain.
func (c *Class) Method(name string) (any, bool) {
	for cur := c; cur != nil; cur = cur.Base {
		if v, ok := cur.methods[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// SetMethod assigns a method on the class itself. Assignments to the
// canonical forward name are routed through signature adaptation against
// the class's currently declared forward; everything else passes through
// unchanged. This is the explicit entry point replacing implicit
// class-attribute interception.
func (c *Class) SetMethod(name string, value any) error {
	if c.methods == nil {
		c.methods = make(map[string]any)
	}
	adapted, err := adaptForOwner(c, c, name, value)
	if err != nil {
		return err
	}
	c.methods[name] = adapted
	return nil
}

func adaptForOwner(c *Class, owner adapt.Owner, name string, value any) (any, error) {
	if name != Forward {
		return value, nil
	}
	canonical, ok := c.Method(Forward)
	if !ok {
		return value, nil
	}
	adapted, missing, err := adapt.Adapt(canonical, value, owner)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		notifyAdapted(c.Name, name, missing)
	}
	return adapted, nil
}

// #endregion class

// #region construction

// New constructs an instance: pre-hook, original constructor, post-hook,
// then configuration capture. A constructor error propagates unchanged; the
// post-hook does not run and no configuration record is attached.
func (c *Class) New(args dyncall.Args, kw dyncall.Kwargs) (*Object, error) {
	ctor := c.resolveCtor()
	if ctor == nil {
		return nil, fmt.Errorf("new %s: %w", c.Name, ErrNoConstructor)
	}
	obj := &Object{id: newID(), class: c, attrs: make(map[string]any)}
	if err := ctor(obj, args, kw); err != nil {
		return nil, fmt.Errorf("init %s: %w", c.Name, err)
	}
	return obj, nil
}

func (c *Class) resolveCtor() func(*Object, dyncall.Args, dyncall.Kwargs) error {
	for cur := c; cur != nil; cur = cur.Base {
		if cur.ctor != nil {
			return cur.ctor
		}
	}
	return nil
}

// trackInit builds the tracking constructor wrapper. The stored record
// names keyword-originated values only; positionals stay verbatim under the
// reserved init_args key, and the class name recorded is the concrete
// runtime class, not the one that declared the constructor.
func trackInit(init *dyncall.Func, pre, post Hook) func(*Object, dyncall.Args, dyncall.Kwargs) error {
	return func(obj *Object, args dyncall.Args, kw dyncall.Kwargs) error {
		if pre != nil {
			pre(obj, init, args, kw)
		}
		selfArgs := make(dyncall.Args, 0, len(args)+1)
		selfArgs = append(selfArgs, obj)
		selfArgs = append(selfArgs, args...)
		if _, err := init.Call(selfArgs, kw); err != nil {
			return err
		}
		if post != nil {
			post(obj, init, args, kw)
		}
		obj.initConfig = config.Capture(kw, args, obj.class.Name)
		notifyConstructed(obj)
		return nil
	}
}

// #endregion construction

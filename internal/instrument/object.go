package instrument

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/layertrack/internal/config"
	"github.com/danielpatrickdp/layertrack/internal/dyncall"
)

func newID() string { return uuid.New().String() }

// #region object

// Object is one constructed instance of an instrumented class.
type Object struct {
	id    string
	class *Class
	attrs map[string]any

	// initConfig is attached once, when construction completes. It stays
	// nil if the constructor fails.
	initConfig *config.Record

	// methods holds instance-level patches, shadowing the class table.
	methods map[string]any
}

// ID returns the instance identity.
func (o *Object) ID() string { return o.id }

// Class returns the concrete class of the instance.
func (o *Object) Class() *Class { return o.class }

// InitConfig returns the configuration record captured at construction,
// nil if construction has not completed.
func (o *Object) InitConfig() *config.Record { return o.initConfig }

// OwnerName implements adapt.Owner.
func (o *Object) OwnerName() string { return o.class.Name }

// OwnerPkg implements adapt.Owner.
func (o *Object) OwnerPkg() string { return o.class.Pkg }

// Self implements adapt.Instance: the adapter binds the instance as the
// first argument when delegating a plain-function patch.
func (o *Object) Self() any { return o }

// Set stores an instance attribute.
func (o *Object) Set(name string, value any) { o.attrs[name] = value }

// Attr reads an instance attribute.
func (o *Object) Attr(name string) (any, bool) {
	v, ok := o.attrs[name]
	return v, ok
}

// SetMethod assigns a method on this instance only. Forward assignments go
// through the same adaptation as class-level ones, with the instance as
// owner, so a plain-function patch gets the instance bound as its first
// argument.
func (o *Object) SetMethod(name string, value any) error {
	adapted, err := adaptForOwner(o.class, o, name, value)
	if err != nil {
		return err
	}
	if o.methods == nil {
		o.methods = make(map[string]any)
	}
	o.methods[name] = adapted
	return nil
}

// Call invokes a method by name, instance patches shadowing the class
// table. Class-resolved methods get the instance prepended to the
// positional arguments; instance-level patches are called as stored, since
// adaptation already bound the instance where that applies.
func (o *Object) Call(name string, args dyncall.Args, kw dyncall.Kwargs) (any, error) {
	if m, ok := o.methods[name]; ok {
		return callValue(o.class.Name, name, m, args, kw)
	}
	m, ok := o.class.Method(name)
	if !ok {
		return nil, fmt.Errorf("%s has no method %s", o.class.Name, name)
	}
	selfArgs := make(dyncall.Args, 0, len(args)+1)
	selfArgs = append(selfArgs, o)
	selfArgs = append(selfArgs, args...)
	return callValue(o.class.Name, name, m, selfArgs, kw)
}

func callValue(class, name string, m any, args dyncall.Args, kw dyncall.Kwargs) (any, error) {
	call, ok := m.(dyncall.Callable)
	if !ok {
		return nil, fmt.Errorf("%s.%s is not callable", class, name)
	}
	return call.Call(args, kw)
}

// #endregion object

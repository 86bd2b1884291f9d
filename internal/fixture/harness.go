package fixture

import (
	"encoding/json"
	"fmt"

	"github.com/danielpatrickdp/layertrack/internal/adapt"
	"github.com/danielpatrickdp/layertrack/internal/dyncall"
	"github.com/danielpatrickdp/layertrack/internal/instrument"
)

// #region types

// Result captures the outcome of replaying one step.
type Result struct {
	Step   int
	Action string // "construct" | "patch" | "patch_adapted" | "call"
	Class  string

	// Construct
	InstanceID string
	Config     map[string]any

	// Patch
	Missing []string

	// Call: the argument view the patch or forward body actually saw
	Received map[string]any

	Err string
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalSteps    int
	Constructions int
	Patches       int
	Adaptations   int
	Calls         int
	Failures      int
}

// #endregion types

// #region replay

// Replay builds the fixture's classes, runs every step through the real
// instrument/adapt path and reports per-step results. Step failures are
// recorded, not fatal; a malformed fixture is.
func Replay(f Fixture) ([]Result, Summary, error) {
	classes := make(map[string]*instrument.Class, len(f.Classes))
	for _, fc := range f.Classes {
		c, err := buildClass(fc, classes)
		if err != nil {
			return nil, Summary{}, err
		}
		classes[fc.Name] = c
	}

	instances := make(map[string]*instrument.Object)
	results := make([]Result, 0, len(f.Steps))
	var sum Summary
	sum.TotalSteps = len(f.Steps)

	for i, step := range f.Steps {
		var res Result
		res.Step = i
		switch {
		case step.Construct != nil:
			res = runConstruct(i, *step.Construct, classes, instances)
			sum.Constructions++
		case step.Patch != nil:
			res = runPatch(i, *step.Patch, classes)
			sum.Patches++
			if res.Action == "patch_adapted" {
				sum.Adaptations++
			}
		case step.Call != nil:
			res = runCall(i, *step.Call, instances)
			sum.Calls++
		}
		if res.Err != "" {
			sum.Failures++
		}
		results = append(results, res)
	}
	return results, sum, nil
}

func buildClass(fc FixtureClass, classes map[string]*instrument.Class) (*instrument.Class, error) {
	c := &instrument.Class{Name: fc.Name, Pkg: fc.Pkg}
	if fc.Base != "" {
		base, ok := classes[fc.Base]
		if !ok {
			return nil, fmt.Errorf("class %s: unknown base %s", fc.Name, fc.Base)
		}
		c.Base = base
	}

	// a based class with no init_params inherits its base constructor;
	// declare "init_params": [] for a zero-argument constructor of its own
	if fc.InitParams != nil || fc.Base == "" {
		params := make([]dyncall.Param, 0, len(fc.InitParams)+1)
		params = append(params, dyncall.P("self"))
		for _, fp := range fc.InitParams {
			if len(fp.Default) == 0 {
				params = append(params, dyncall.P(fp.Name))
				continue
			}
			var def any
			if err := json.Unmarshal(fp.Default, &def); err != nil {
				return nil, fmt.Errorf("class %s param %s: %w", fc.Name, fp.Name, err)
			}
			params = append(params, dyncall.D(fp.Name, def))
		}
		c.Init = &dyncall.Func{
			Name: "init",
			Pkg:  fc.Pkg,
			Sig:  dyncall.Signature{Params: params},
			Impl: func(args dyncall.Args, kw dyncall.Kwargs) (any, error) {
				obj := args[0].(*instrument.Object)
				for name, v := range kw {
					obj.Set(name, v)
				}
				return nil, nil
			},
		}
	}
	if len(fc.ForwardParams) > 0 {
		c.DeclareMethod(instrument.Forward, echoFunc("forward", fc.Pkg, fc.ForwardParams))
	}
	return instrument.Instrument(c), nil
}

// echoFunc builds a method body that reports the arguments it received,
// which is what replay inspects to see whether stripping happened.
func echoFunc(name, pkg string, paramNames []string) *dyncall.Func {
	params := make([]dyncall.Param, len(paramNames))
	for i, p := range paramNames {
		params[i] = dyncall.P(p)
	}
	return &dyncall.Func{
		Name: name,
		Pkg:  pkg,
		Sig:  dyncall.Signature{Params: params},
		Impl: func(args dyncall.Args, kw dyncall.Kwargs) (any, error) {
			received := make(map[string]any, len(kw)+1)
			for k, v := range kw {
				received[k] = v
			}
			received["positional"] = len(args)
			return received, nil
		},
	}
}

func runConstruct(step int, s ConstructStep, classes map[string]*instrument.Class, instances map[string]*instrument.Object) Result {
	res := Result{Step: step, Action: "construct", Class: s.Class}
	c, ok := classes[s.Class]
	if !ok {
		res.Err = fmt.Sprintf("unknown class %s", s.Class)
		return res
	}
	obj, err := c.New(dyncall.Args(s.Args), dyncall.Kwargs(s.Kwargs))
	if err != nil {
		res.Err = err.Error()
		return res
	}
	instances[s.Class] = obj
	res.InstanceID = obj.ID()
	res.Config = obj.InitConfig().Map()
	return res
}

func runPatch(step int, s PatchStep, classes map[string]*instrument.Class) Result {
	res := Result{Step: step, Action: "patch", Class: s.Class}
	c, ok := classes[s.Class]
	if !ok {
		res.Err = fmt.Sprintf("unknown class %s", s.Class)
		return res
	}
	patch := echoFunc("patched_forward", "fixture", s.Params)
	missing := missingExtensions(c, s.Params)
	if err := c.SetMethod(instrument.Forward, patch); err != nil {
		res.Err = err.Error()
		return res
	}
	if len(missing) > 0 {
		res.Action = "patch_adapted"
		res.Missing = missing
	}
	return res
}

// missingExtensions mirrors the adapter's decision for reporting purposes.
func missingExtensions(c *instrument.Class, patchParams []string) []string {
	canonical, ok := c.Method(instrument.Forward)
	if !ok {
		return nil
	}
	sig, err := dyncall.SignatureOf(canonical)
	if err != nil {
		return nil
	}
	declared := make(map[string]bool, len(patchParams))
	for _, p := range patchParams {
		declared[p] = true
	}
	var missing []string
	for _, name := range adapt.ExtensionParams {
		if sig.Has(name) && !declared[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

func runCall(step int, s CallStep, instances map[string]*instrument.Object) Result {
	res := Result{Step: step, Action: "call", Class: s.Class}
	obj, ok := instances[s.Class]
	if !ok {
		res.Err = fmt.Sprintf("no instance of %s", s.Class)
		return res
	}
	out, err := obj.Call(instrument.Forward, dyncall.Args(s.Args), dyncall.Kwargs(s.Kwargs))
	if err != nil {
		res.Err = err.Error()
		return res
	}
	if received, ok := out.(map[string]any); ok {
		res.Received = received
	}
	return res
}

// #endregion replay

// #region verify

// Verify checks results against the fixture's expectations and returns one
// error per mismatch.
func Verify(results []Result, expected []ExpectedResult) []error {
	var errs []error
	for _, want := range expected {
		if want.Step < 0 || want.Step >= len(results) {
			errs = append(errs, fmt.Errorf("expected step %d out of range", want.Step))
			continue
		}
		got := results[want.Step]
		if got.Action != want.Action {
			errs = append(errs, fmt.Errorf("step %d: action %q, want %q", want.Step, got.Action, want.Action))
		}
		if want.Action == "patch_adapted" && !sameStrings(got.Missing, want.Missing) {
			errs = append(errs, fmt.Errorf("step %d: missing %v, want %v", want.Step, got.Missing, want.Missing))
		}
	}
	return errs
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// #endregion verify

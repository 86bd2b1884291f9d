package adapt

import (
	"errors"
	"reflect"
	"testing"

	"github.com/danielpatrickdp/layertrack/internal/dyncall"
)

type fakeOwner struct {
	name string
	pkg  string
}

func (o fakeOwner) OwnerName() string { return o.name }
func (o fakeOwner) OwnerPkg() string  { return o.pkg }

type fakeInstance struct {
	fakeOwner
	self any
}

func (o fakeInstance) Self() any { return o.self }

// canonical forward(self, x, output_attentions=False, return_dict=False)
func canonicalForward() *dyncall.Func {
	return &dyncall.Func{
		Name: "forward",
		Sig: dyncall.Sig(
			dyncall.P("self"),
			dyncall.P("x"),
			dyncall.D("output_attentions", false),
			dyncall.D("return_dict", false),
		),
	}
}

// patch recording the kwargs it was actually invoked with
func recordingPatch(params []string, seen *dyncall.Kwargs, args *dyncall.Args) *dyncall.Func {
	ps := make([]dyncall.Param, len(params))
	for i, p := range params {
		ps[i] = dyncall.P(p)
	}
	return &dyncall.Func{
		Name: "patched_forward",
		Doc:  "compression patch",
		Sig:  dyncall.Signature{Params: ps},
		Impl: func(a dyncall.Args, kw dyncall.Kwargs) (any, error) {
			*seen = kw
			*args = a
			return "patched", nil
		},
	}
}

func TestAdapt_SupersetUnchanged(t *testing.T) {
	patch := recordingPatch([]string{"self", "x", "output_attentions", "return_dict", "output_hidden_states"}, new(dyncall.Kwargs), new(dyncall.Args))

	got, missing, err := Adapt(canonicalForward(), patch, fakeOwner{name: "BertModel"})
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	if got != any(patch) {
		t.Fatal("superset patch must be returned unchanged")
	}
	if missing != nil {
		t.Fatalf("missing = %v, want none", missing)
	}
}

func TestAdapt_MissingOneStripsIt(t *testing.T) {
	var seenKw dyncall.Kwargs
	var seenArgs dyncall.Args
	patch := recordingPatch([]string{"self", "x"}, &seenKw, &seenArgs)

	got, missing, err := Adapt(canonicalForward(), patch, fakeOwner{name: "BertModel"})
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	want := []string{"output_attentions", "return_dict"}
	if !reflect.DeepEqual(missing, want) {
		t.Fatalf("missing = %v, want %v", missing, want)
	}

	wrapped := got.(dyncall.Callable)
	instance := "instance"
	out, err := wrapped.Call(dyncall.Args{instance, 5}, dyncall.Kwargs{"output_attentions": true})
	if err != nil {
		t.Fatalf("wrapped call: %v", err)
	}
	if out != "patched" {
		t.Errorf("out = %v", out)
	}
	if _, ok := seenKw["output_attentions"]; ok {
		t.Error("output_attentions must be stripped before delegation")
	}
	if len(seenArgs) != 2 || seenArgs[1] != 5 {
		t.Errorf("patch args = %v, want [instance 5]", seenArgs)
	}
}

func TestAdapt_WithoutStrippedParamBehavesAsDirectCall(t *testing.T) {
	var seenKw dyncall.Kwargs
	patch := recordingPatch([]string{"self", "x"}, &seenKw, new(dyncall.Args))

	got, _, err := Adapt(canonicalForward(), patch, fakeOwner{name: "BertModel"})
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	out, err := got.(dyncall.Callable).Call(dyncall.Args{"instance", 5}, nil)
	if err != nil {
		t.Fatalf("wrapped call: %v", err)
	}
	if out != "patched" {
		t.Errorf("out = %v", out)
	}
	if len(seenKw) != 0 {
		t.Errorf("unexpected kwargs forwarded: %v", seenKw)
	}
}

func TestAdapt_PreservesIdentityMetadata(t *testing.T) {
	patch := recordingPatch([]string{"self", "x"}, new(dyncall.Kwargs), new(dyncall.Args))

	got, _, err := Adapt(canonicalForward(), patch, fakeOwner{name: "BertModel"})
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	fn := got.(*dyncall.Func)
	if fn.Name != "patched_forward" {
		t.Errorf("name = %q", fn.Name)
	}
	if fn.Doc != "compression patch" {
		t.Errorf("doc = %q", fn.Doc)
	}
}

func TestAdapt_RewrapDoesNotAccumulate(t *testing.T) {
	var seenKw dyncall.Kwargs
	patch := recordingPatch([]string{"self", "x"}, &seenKw, new(dyncall.Args))

	first, missing, err := Adapt(canonicalForward(), patch, fakeOwner{name: "BertModel"})
	if err != nil {
		t.Fatalf("first Adapt: %v", err)
	}
	if len(missing) == 0 {
		t.Fatal("expected adaptation on first pass")
	}

	// second assignment applies to the first wrapper; the wrapper declares
	// no named extension params, so nothing further is stripped or wrapped
	second, missing2, err := Adapt(first, first, fakeOwner{name: "BertModel"})
	if err != nil {
		t.Fatalf("second Adapt: %v", err)
	}
	if missing2 != nil {
		t.Fatalf("second missing = %v, want none", missing2)
	}
	if second != first {
		t.Fatal("re-adapting the wrapper must be identity")
	}

	_, err = second.(dyncall.Callable).Call(dyncall.Args{"instance", 5}, dyncall.Kwargs{"return_dict": true})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if _, ok := seenKw["return_dict"]; ok {
		t.Error("final call must still strip the originally missing params")
	}
}

type tracedStaticFunction struct{}

func TestAdapt_CompiledDispatchPassthrough(t *testing.T) {
	v := &tracedStaticFunction{}
	got, missing, err := Adapt(canonicalForward(), v, fakeOwner{name: "BertModel"})
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	if got != any(v) {
		t.Fatal("compiled dispatch objects must pass through unwrapped")
	}
	if missing != nil {
		t.Fatalf("missing = %v, want none", missing)
	}
}

func TestAdapt_OpaquePatch(t *testing.T) {
	_, _, err := Adapt(canonicalForward(), func() {}, fakeOwner{name: "BertModel"})
	if !errors.Is(err, dyncall.ErrNotIntrospectable) {
		t.Fatalf("expected ErrNotIntrospectable, got %v", err)
	}
}

func TestAdapt_OpaqueCanonical(t *testing.T) {
	patch := recordingPatch([]string{"self", "x"}, new(dyncall.Kwargs), new(dyncall.Args))
	_, _, err := Adapt(12345, patch, fakeOwner{name: "BertModel"})
	if !errors.Is(err, dyncall.ErrNotIntrospectable) {
		t.Fatalf("expected ErrNotIntrospectable, got %v", err)
	}
}

func TestAdapt_BindsInstanceForPlainFunction(t *testing.T) {
	var seenArgs dyncall.Args
	patch := recordingPatch([]string{"self", "x"}, new(dyncall.Kwargs), &seenArgs)

	inst := fakeInstance{fakeOwner: fakeOwner{name: "BertModel"}, self: "the-instance"}
	got, _, err := Adapt(canonicalForward(), patch, inst)
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}

	// caller does not pass the instance; the wrapper binds it
	if _, err := got.(dyncall.Callable).Call(dyncall.Args{5}, dyncall.Kwargs{"output_attentions": true}); err != nil {
		t.Fatalf("call: %v", err)
	}
	if len(seenArgs) != 2 || seenArgs[0] != "the-instance" || seenArgs[1] != 5 {
		t.Errorf("patch args = %v, want [the-instance 5]", seenArgs)
	}
}

func TestAdapt_MissingOnlyCountsCanonicalParams(t *testing.T) {
	// canonical without return_dict: its absence from the patch is fine
	canonical := &dyncall.Func{
		Name: "forward",
		Sig:  dyncall.Sig(dyncall.P("self"), dyncall.P("x"), dyncall.D("output_attentions", false)),
	}
	patch := recordingPatch([]string{"self", "x"}, new(dyncall.Kwargs), new(dyncall.Args))

	_, missing, err := Adapt(canonical, patch, fakeOwner{name: "BertModel"})
	if err != nil {
		t.Fatalf("Adapt: %v", err)
	}
	if !reflect.DeepEqual(missing, []string{"output_attentions"}) {
		t.Fatalf("missing = %v, want [output_attentions]", missing)
	}
}

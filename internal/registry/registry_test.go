package registry

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/layertrack/internal/instrument"
)

func TestLookup(t *testing.T) {
	r := New()
	roberta := &instrument.Class{Name: "RobertaModel", Pkg: "github.com/danielpatrickdp/layertrack/transformers/roberta"}
	if err := r.Register(roberta); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := r.Lookup("RobertaModel")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != roberta {
		t.Fatal("expected the registered class object")
	}
}

func TestLookup_Miss(t *testing.T) {
	r := New()
	if _, err := r.Lookup("NoSuchModel"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookup_CaseSensitive(t *testing.T) {
	r := New()
	if err := r.Register(&instrument.Class{Name: "RobertaModel"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := r.Lookup("robertamodel"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("lookup must be case-sensitive exact match, got %v", err)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r := New()
	if err := r.Register(&instrument.Class{Name: "BertModel"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&instrument.Class{Name: "BertModel"}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestRegister_EmptyName(t *testing.T) {
	r := New()
	if err := r.Register(&instrument.Class{}); err == nil {
		t.Fatal("expected empty name to fail")
	}
	if err := r.Register(nil); err == nil {
		t.Fatal("expected nil class to fail")
	}
}

func TestModelType(t *testing.T) {
	tests := []struct {
		name string
		pkg  string
		want string
	}{
		{"bert", "github.com/danielpatrickdp/layertrack/transformers/bert", "bert"},
		{"roberta-deep", "github.com/danielpatrickdp/layertrack/transformers/roberta/modeling", "roberta"},
		{"outside-namespace", "github.com/someone/else/models/bert", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &instrument.Class{Name: "X", Pkg: tt.pkg}
			if got := ModelType(c); got != tt.want {
				t.Errorf("ModelType = %q, want %q", got, tt.want)
			}
		})
	}

	if got := ModelType(nil); got != "" {
		t.Errorf("ModelType(nil) = %q, want empty", got)
	}
}

// Package config captures the effective constructor arguments of one
// construction call into an ordered configuration record.
package config

import (
	"sort"

	"github.com/danielpatrickdp/layertrack/internal/dyncall"
)

// #region reserved-keys

const (
	// KeyInitArgs holds the raw positional-argument tuple as received.
	KeyInitArgs = "init_args"
	// KeyInitClass holds the concrete runtime class name.
	KeyInitClass = "init_class"
)

// #endregion reserved-keys

// #region record

// Record is an insertion-ordered mapping from parameter name to effective
// value for one construction call. It belongs to exactly one instance and
// is created once, at the end of construction. Nothing in this package
// re-derives it later; external mutation is possible but off-contract.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores value under name. An existing name keeps its position; a new
// name is appended.
func (r *Record) Set(name string, value any) {
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = value
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Keys returns the names in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of entries, reserved keys included.
func (r *Record) Len() int { return len(r.keys) }

// Map returns a plain map copy of the record.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// InitArgs returns the raw positional tuple, nil when none was recorded.
func (r *Record) InitArgs() dyncall.Args {
	v, ok := r.values[KeyInitArgs]
	if !ok {
		return nil
	}
	args, _ := v.(dyncall.Args)
	return args
}

// InitClass returns the recorded concrete class name.
func (r *Record) InitClass() string {
	v, ok := r.values[KeyInitClass]
	if !ok {
		return ""
	}
	name, _ := v.(string)
	return name
}

// #endregion record

// #region build

// Build produces the full effective-argument record for one invocation of a
// callable with the given signature. Precedence, low to high: positional
// values zipped against declared names, declared defaults for uncovered
// parameters, then keyword arguments, which win all conflicts. Keyword
// arguments are applied in sorted name order; order among keyword-only
// additions is not part of the contract. The raw positional tuple (when
// non-empty) and the concrete class name are recorded on top under the
// reserved keys.
func Build(sig dyncall.Signature, args dyncall.Args, kw dyncall.Kwargs, class string) *Record {
	rec := NewRecord()

	// positional layer
	names := sig.Names()
	for i, v := range args {
		if i >= len(names) {
			break
		}
		rec.Set(names[i], v)
	}

	// default layer, skipping names covered positionally
	for i, p := range sig.Params {
		if !p.HasDefault || i < len(args) {
			continue
		}
		rec.Set(p.Name, p.Default)
	}

	// keyword layer wins all conflicts
	applyKeywords(rec, kw)

	if len(args) > 0 {
		rec.Set(KeyInitArgs, args)
	}
	rec.Set(KeyInitClass, class)
	return rec
}

// Capture produces the record the construction interceptor stores: keyword
// arguments only, with positionals kept verbatim under the reserved key
// rather than resolved to parameter names. Downstream consumers depend on
// the raw-positional shape, so the asymmetry with Build is kept.
func Capture(kw dyncall.Kwargs, args dyncall.Args, class string) *Record {
	rec := NewRecord()
	applyKeywords(rec, kw)
	if len(args) > 0 {
		rec.Set(KeyInitArgs, args)
	}
	rec.Set(KeyInitClass, class)
	return rec
}

func applyKeywords(rec *Record, kw dyncall.Kwargs) {
	names := make([]string, 0, len(kw))
	for name := range kw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rec.Set(name, kw[name])
	}
}

// #endregion build

// Package registry maps textual class names to registered class objects.
// Lookup is a case-sensitive exact match over the registered namespace and
// never fails hard: an unknown name yields ErrNotFound and a debug log.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/layertrack/internal/instrument"
	"github.com/danielpatrickdp/layertrack/internal/logging"
)

// ErrNotFound is the explicit not-found result of a lookup miss.
var ErrNotFound = errors.New("class not found")

// #region registry

// Registry is a namespace of exported classes.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*instrument.Class
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{classes: make(map[string]*instrument.Class)}
}

// Register adds a class under its own name. Re-registering a name fails.
func (r *Registry) Register(c *instrument.Class) error {
	if c == nil || c.Name == "" {
		return fmt.Errorf("register: class with empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.classes[c.Name]; ok {
		return fmt.Errorf("register: class %s already registered", c.Name)
	}
	r.classes[c.Name] = c
	return nil
}

// Lookup returns the class registered under name. A miss returns
// ErrNotFound and logs at debug severity; it never raises harder.
func (r *Registry) Lookup(name string) (*instrument.Class, error) {
	r.mu.RLock()
	c, ok := r.classes[name]
	r.mu.RUnlock()
	if !ok {
		logging.L().Debug("can not find model class", zap.String("name", name))
		return nil, fmt.Errorf("lookup %s: %w", name, ErrNotFound)
	}
	return c, nil
}

// Names returns the registered names, order unspecified.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	return names
}

// #endregion registry

// #region default

// Default is the process-wide namespace the convenience functions use.
var Default = New()

// Register adds a class to the default namespace.
func Register(c *instrument.Class) error { return Default.Register(c) }

// Lookup searches the default namespace.
func Lookup(name string) (*instrument.Class, error) { return Default.Lookup(name) }

// #endregion default

// #region model-type

// modelPkgMarker is the path segment model packages live under.
const modelPkgMarker = "/transformers/"

// ModelType derives the model family from the class's defining package,
// e.g. a class in .../transformers/bert/modeling yields "bert". Classes
// outside the transformers namespace yield "".
func ModelType(c *instrument.Class) string {
	if c == nil {
		return ""
	}
	_, rest, ok := strings.Cut(c.Pkg, modelPkgMarker)
	if !ok {
		return ""
	}
	family, _, _ := strings.Cut(rest, "/")
	return family
}

// #endregion model-type

package registry

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
)

//go:embed types.json
var defaultSchema []byte

// Default is the registry built from the embedded schema of Cloud.* types.
var Default = MustLoad(defaultSchema)

// Registry holds resource type definitions. It is filled once and only read
// afterwards; reads are safe from several goroutines.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*TypeDefinition
}

// New returns a new empty registry.
func New() *Registry {
	return &Registry{types: make(map[string]*TypeDefinition)}
}

// Load parses a schema document mapping type name to definition:
//
//	{"Cloud.Machine": {"properties": {"image": {}}, "required": ["image"], "oneOf": [{"required": ["flavor"]}]}}
func Load(data []byte) (*Registry, error) {
	var raw map[string]*TypeDefinition
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse type schema: %w", err)
	}
	r := New()
	for name, def := range raw {
		if def == nil {
			return nil, fmt.Errorf("type %s: definition is null", name)
		}
		def.Name = name
		if err := def.check(); err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}
		r.Register(def)
	}
	return r, nil
}

// MustLoad is like Load but panics on error. Meant for embedded schemas.
func MustLoad(data []byte) *Registry {
	r, err := Load(data)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds or replaces the definition for def.Name.
func (r *Registry) Register(def *TypeDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[def.Name] = def
}

// Get returns the definition for the resource type, or nil and false.
func (r *Registry) Get(resourceType string) (*TypeDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.types[resourceType]
	return def, ok
}

// ListSupportedTypes returns all registered resource types, sorted.
func (r *Registry) ListSupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.types))
	for t := range r.types {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

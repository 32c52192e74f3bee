// Package locator — registry.go implements the in-process module registry.
package locator

import (
	"net/http"
	"sync"
)

// Application is the callable resolved from an application locator and
// served by the engine.
type Application = http.Handler

// Namespace is the exported name set of a registered module. Values may be
// handlers, handler functions, factories, nested Namespaces, or arbitrary
// structs whose fields and methods the attribute walker can traverse.
type Namespace map[string]any

// Registry maps module paths to namespaces. Registration typically happens
// from init functions of compiled-in applications; tests use private
// registries.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Namespace
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Namespace)}
}

// Register associates a module path with a namespace, replacing any
// previous registration for the same path.
func (r *Registry) Register(module string, ns Namespace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[module] = ns
}

// Lookup returns the namespace registered under the module path.
func (r *Registry) Lookup(module string) (Namespace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ns, ok := r.modules[module]
	return ns, ok
}

// Default is the process-wide registry used by the CLI. Compiled-in
// applications register themselves here from init functions.
var Default = NewRegistry()

// Register associates a module path with a namespace in the Default
// registry.
func Register(module string, ns Namespace) {
	Default.Register(module, ns)
}

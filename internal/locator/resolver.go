// Package locator — resolver.go implements module loading and the
// restricted attribute walker.
package locator

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mmr-tortoise/gantry/internal/model"
)

// ErrModuleNotFound is wrapped by Resolve when the module path is neither
// registered nor present as a plugin file on the search path.
var ErrModuleNotFound = errors.New("module not found")

// Reason classifies why an attribute path failed to yield an application.
// The two reasons are both fatal; they exist for diagnostic clarity.
type Reason string

const (
	// NotFound indicates the attribute path named nothing, or named a nil
	// value.
	NotFound Reason = "not found"

	// NotCallable indicates the attribute path named a value that is not
	// a servable application.
	NotCallable Reason = "not callable"
)

// Error reports a failed attribute resolution within a loaded module.
type Error struct {
	// Ref is the locator that failed to resolve.
	Ref model.AppRef

	// Reason distinguishes a missing object from a non-callable one.
	Reason Reason
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	switch e.Reason {
	case NotCallable:
		return fmt.Sprintf("application object %q in module %q is not callable", e.Ref.Attr, e.Ref.Module)
	default:
		return fmt.Sprintf("failed to find application object %q in module %q", e.Ref.Attr, e.Ref.Module)
	}
}

// symbolSource resolves a top-level name of a loaded module. Registry
// namespaces and opened plugins both implement it.
type symbolSource interface {
	lookupSymbol(name string) (any, bool)
}

// lookupSymbol makes Namespace a symbolSource.
func (ns Namespace) lookupSymbol(name string) (any, bool) {
	v, ok := ns[name]
	return v, ok
}

// Resolver resolves application references against a registry and a module
// search path. The search path is an explicit value so that resolution has
// no process-global state.
type Resolver struct {
	registry   *Registry
	searchPath []string

	// openPlugin loads a plugin file as a symbol source. Overridable in
	// tests, since building real plugin binaries requires a toolchain.
	openPlugin func(path string) (symbolSource, error)
}

// NewResolver creates a Resolver over the given registry and module
// search path. The search path is consulted in order for plugin files
// when the module is not registered in-process.
func NewResolver(registry *Registry, searchPath []string) *Resolver {
	return &Resolver{
		registry:   registry,
		searchPath: searchPath,
		openPlugin: openPluginFile,
	}
}

// Resolve loads the module named by ref and walks its attribute path to
// the application callable.
//
// The attribute path is split on "."; each segment is resolved as a map
// key, an exported struct field, or a method, in that order. If the path
// ends in "()", the final value is invoked as a zero-argument call and its
// first result is used. A nil result yields Error(NotFound); a result that
// is neither an http.Handler nor a handler function yields
// Error(NotCallable). A factory returning a non-nil error propagates that
// error unchanged.
func (r *Resolver) Resolve(ref model.AppRef) (Application, error) {
	src, err := r.loadModule(ref.Module)
	if err != nil {
		return nil, err
	}

	attr, call := strings.CutSuffix(ref.Attr, "()")
	segments := strings.Split(attr, ".")

	v, ok := src.lookupSymbol(segments[0])
	if !ok {
		return nil, &Error{Ref: ref, Reason: NotFound}
	}
	for _, seg := range segments[1:] {
		v, ok = attrOf(v, seg)
		if !ok {
			return nil, &Error{Ref: ref, Reason: NotFound}
		}
	}

	if call {
		result, callable, err := callZeroArg(v)
		if err != nil {
			return nil, err
		}
		if !callable {
			return nil, &Error{Ref: ref, Reason: NotCallable}
		}
		v = result
	}

	if isNil(v) {
		return nil, &Error{Ref: ref, Reason: NotFound}
	}
	app, ok := asApplication(v)
	if !ok {
		return nil, &Error{Ref: ref, Reason: NotCallable}
	}
	return app, nil
}

// loadModule finds the module in the registry, or opens it as a plugin
// file found on the search path ("myapp.wsgi" → "myapp/wsgi.so").
func (r *Resolver) loadModule(module string) (symbolSource, error) {
	if ns, ok := r.registry.Lookup(module); ok {
		return ns, nil
	}

	rel := filepath.FromSlash(strings.ReplaceAll(module, ".", "/")) + ".so"
	for _, dir := range r.searchPath {
		path := filepath.Join(dir, rel)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		src, err := r.openPlugin(path)
		if err != nil {
			return nil, fmt.Errorf("module %q: loading %s: %w", module, path, err)
		}
		return src, nil
	}

	return nil, fmt.Errorf("module %q: %w", module, ErrModuleNotFound)
}

// attrOf resolves one attribute segment against a value: map index first,
// then exported struct field, then method.
func attrOf(v any, name string) (any, bool) {
	switch m := v.(type) {
	case Namespace:
		val, ok := m[name]
		return val, ok
	case map[string]any:
		val, ok := m[name]
		return val, ok
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}

	elem := rv
	if elem.Kind() == reflect.Pointer {
		if elem.IsNil() {
			return nil, false
		}
		elem = elem.Elem()
	}
	if elem.Kind() == reflect.Struct {
		if f := elem.FieldByName(name); f.IsValid() && f.CanInterface() {
			return f.Interface(), true
		}
	}

	// Methods with pointer receivers are only in the method set of the
	// original (possibly pointer) value.
	if m := rv.MethodByName(name); m.IsValid() {
		return m.Interface(), true
	}
	return nil, false
}

// callZeroArg invokes v as a zero-argument call. The second return is
// false when v is not callable without arguments. When the function's last
// result is a non-nil error it is returned and the call counts as failed.
func callZeroArg(v any) (any, bool, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, false, nil
	}

	t := rv.Type()
	required := t.NumIn()
	if t.IsVariadic() {
		required--
	}
	if required != 0 {
		return nil, false, nil
	}

	results := rv.Call(nil)
	if t.NumOut() == 0 {
		// Callable, but produced nothing; the caller reports NotFound.
		return nil, true, nil
	}
	if n := t.NumOut(); n >= 2 && t.Out(n-1) == reflect.TypeOf((*error)(nil)).Elem() {
		if errv := results[n-1]; !errv.IsNil() {
			return nil, true, errv.Interface().(error)
		}
	}
	return results[0].Interface(), true, nil
}

// asApplication coerces a resolved value to the Application contract.
func asApplication(v any) (Application, bool) {
	switch h := v.(type) {
	case http.Handler:
		return h, true
	case func(http.ResponseWriter, *http.Request):
		return http.HandlerFunc(h), true
	}
	return nil, false
}

// isNil reports whether v is nil, including typed nils of nilable kinds.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

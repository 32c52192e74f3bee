// Package locator — plugin.go adapts the stdlib plugin package to the
// symbolSource interface, so applications built with -buildmode=plugin can
// be served without being compiled into the gantry binary.
package locator

import (
	"plugin"
	"reflect"
)

// pluginSource wraps an opened plugin as a symbolSource.
type pluginSource struct {
	p *plugin.Plugin
}

// openPluginFile is the default Resolver.openPlugin implementation.
func openPluginFile(path string) (symbolSource, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	return pluginSource{p: p}, nil
}

// lookupSymbol resolves a top-level plugin symbol.
//
// plugin.Lookup returns a pointer to the variable for package-level vars
// (e.g. *http.Handler for "var Application http.Handler"), so one pointer
// level is removed — except for pointers to structs, where the pointer
// itself is usually the value that carries the method set.
func (s pluginSource) lookupSymbol(name string) (any, bool) {
	sym, err := s.p.Lookup(name)
	if err != nil {
		return nil, false
	}

	rv := reflect.ValueOf(sym)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Type().Elem().Kind() != reflect.Struct {
		return rv.Elem().Interface(), true
	}
	return sym, true
}

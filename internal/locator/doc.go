// Package locator resolves application references ("module[:attr]") to
// the callable the server dispatches requests to.
//
// Resolution happens in two stages:
//   - Module loading: the module path is looked up in a Registry of
//     in-process namespaces first; if absent, a compiled plugin file
//     ("myapp.wsgi" → "myapp/wsgi.so") is searched along the resolver's
//     module search path and opened via the stdlib plugin package.
//   - Attribute walking: the attribute path is split on "." and walked one
//     segment at a time over maps, struct fields, and methods. A trailing
//     "()" — and only a trailing "()" — invokes a zero-argument call.
//
// The walker is deliberately restricted: it never evaluates the attribute
// string as an expression, so CLI input cannot trigger arbitrary calls.
//
// The search path is an explicit value carried by the Resolver rather than
// process-global state, so resolution is unit-testable without side
// effects leaking between test cases.
package locator

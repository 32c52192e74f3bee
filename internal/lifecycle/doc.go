// Package lifecycle drives one server invocation from construction to
// guaranteed shutdown.
//
// The controller constructs the engine through a server.Factory, runs its
// blocking Start in a goroutine, and waits on whichever comes first: the
// interrupt context being cancelled or Start returning. On every path out
// of Run — clean return, interrupt, engine failure, even a panic
// unwinding through it — Stop is invoked exactly once.
//
// Interrupts reach the controller as context cancellation; the CLI layer
// wires signal.NotifyContext. Keeping signals out of the controller makes
// the shutdown paths testable by cancelling a context instead of
// delivering process signals.
package lifecycle

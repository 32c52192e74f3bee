// Package model defines the domain types and value objects for the
// gantry CLI.
//
// This package contains pure data structures with no side effects. All
// entities (BindTarget, AppRef) are created once per process invocation
// from CLI input and handed to the other bootstrap components; nothing is
// persisted.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
